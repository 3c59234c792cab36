package ws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

const dispatchTimeout = 15 * time.Second

// RoomDirectory is the slice of the room service the transport layer needs.
type RoomDirectory interface {
	IsParticipant(ctx context.Context, roomID, userID string) (bool, error)
	ParticipantIDs(ctx context.Context, roomID string) ([]string, error)
	RoomIDsForUser(ctx context.Context, userID string) ([]string, error)
}

// MessageSender is the slice of the messaging service the transport layer
// needs. Socket sends and REST sends converge on the same operations.
type MessageSender interface {
	SendMessage(ctx context.Context, roomID, sender, content, replyToID string) (*models.Message, error)
	MarkRead(ctx context.Context, roomID, reader string, messageIDs []string) (int64, error)
}

// Gateway routes client events to the services and broadcasts the results.
type Gateway struct {
	hub         *Hub
	broadcaster Broadcaster
	rooms       RoomDirectory
	messaging   MessageSender
}

// NewGateway wires the hub's presence and typing hooks and returns the event
// router.
func NewGateway(hub *Hub, broadcaster Broadcaster, rooms RoomDirectory, messaging MessageSender) *Gateway {
	g := &Gateway{
		hub:         hub,
		broadcaster: broadcaster,
		rooms:       rooms,
		messaging:   messaging,
	}
	hub.SetPresenceHooks(
		func(userID string) { g.broadcastPresence(userID, true) },
		func(userID string) { g.broadcastPresence(userID, false) },
	)
	hub.SetTypingExpiredHook(func(roomID, userID string) {
		g.broadcaster.ToRoom(roomID, Event{
			Type: EventUserStopTyping,
			Data: map[string]interface{}{"room_id": roomID, "user_id": userID},
		}, userID)
	})
	return g
}

// Dispatch handles one inbound frame from a client. Failures are answered
// with an error event carrying the same taxonomy kind the REST layer uses;
// nothing is silently dropped.
func (g *Gateway) Dispatch(c *Client, raw []byte) {
	var ev ClientEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		g.sendError(c, apperrors.Validation("malformed event"))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	switch ev.Type {
	case EventJoinRoom:
		g.handleJoin(ctx, c, ev.RoomID)
	case EventLeaveRoom:
		g.hub.LeaveRoom(c, ev.RoomID)
	case EventSendMessage:
		g.handleSend(ctx, c, ev)
	case EventTyping:
		g.handleTyping(c, ev.RoomID, true)
	case EventStopTyping:
		g.handleTyping(c, ev.RoomID, false)
	case EventMarkRead:
		g.handleMarkRead(ctx, c, ev)
	case EventUserStatus:
		online := true
		if ev.Online != nil {
			online = *ev.Online
		}
		g.broadcastPresence(c.UserID, online)
	case EventGetUserStatuses:
		select {
		case c.send <- Event{Type: EventUserStatuses, Data: g.hub.Statuses(ev.UserIDs)}:
		default:
		}
	default:
		g.sendError(c, apperrors.Validation("unknown event type"))
	}
}

func (g *Gateway) handleJoin(ctx context.Context, c *Client, roomID string) {
	ok, err := g.rooms.IsParticipant(ctx, roomID, c.UserID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	if !ok {
		g.sendError(c, apperrors.ErrUnauthorized)
		return
	}
	g.hub.JoinRoom(c, roomID)
}

func (g *Gateway) handleSend(ctx context.Context, c *Client, ev ClientEvent) {
	message, err := g.messaging.SendMessage(ctx, ev.RoomID, c.UserID, ev.Content, ev.ReplyToID)
	if err != nil {
		g.sendError(c, err)
		return
	}
	g.BroadcastMessage(ctx, ev.RoomID, message)
}

// BroadcastMessage relays a freshly persisted message: to the whole room
// (sender included, for multi-device consistency) and, as a notification
// event, to participants who are not live-viewing the room. The REST send
// path calls this too.
func (g *Gateway) BroadcastMessage(ctx context.Context, roomID string, message *models.Message) {
	g.broadcaster.ToRoom(roomID, Event{Type: EventNewMessage, Data: message}, "")

	participants, err := g.rooms.ParticipantIDs(ctx, roomID)
	if err != nil {
		log.Printf("Failed to resolve participants of room %s: %v", roomID, err)
		return
	}
	for _, p := range participants {
		if p == message.Sender || g.hub.IsSubscribed(p, roomID) {
			continue
		}
		g.broadcaster.ToUser(p, Event{Type: EventNotification, Data: map[string]interface{}{
			"type":       models.NotificationNewMessage,
			"room_id":    roomID,
			"message_id": message.ID.Hex(),
			"sender_id":  message.Sender,
		}})
	}
}

func (g *Gateway) handleTyping(c *Client, roomID string, typing bool) {
	if !g.hub.IsSubscribed(c.UserID, roomID) {
		g.sendError(c, apperrors.ErrUnauthorized)
		return
	}
	eventType := EventUserTyping
	if typing {
		g.hub.Typing(roomID, c.UserID)
	} else {
		g.hub.StopTyping(roomID, c.UserID)
		eventType = EventUserStopTyping
	}
	g.broadcaster.ToRoom(roomID, Event{
		Type: eventType,
		Data: map[string]interface{}{"room_id": roomID, "user_id": c.UserID},
	}, c.UserID)
}

func (g *Gateway) handleMarkRead(ctx context.Context, c *Client, ev ClientEvent) {
	count, err := g.messaging.MarkRead(ctx, ev.RoomID, c.UserID, ev.MessageIDs)
	if err != nil {
		g.sendError(c, err)
		return
	}
	g.BroadcastRead(ev.RoomID, c.UserID, ev.MessageIDs, count)
}

// BroadcastRead announces recorded read receipts to the whole room, including
// the reader's other devices. The REST mark-read path calls this too.
func (g *Gateway) BroadcastRead(roomID, reader string, messageIDs []string, count int64) {
	g.broadcaster.ToRoom(roomID, Event{Type: EventMessagesRead, Data: map[string]interface{}{
		"room_id":     roomID,
		"reader_id":   reader,
		"message_ids": messageIDs,
		"count":       count,
	}}, "")
}

// broadcastPresence announces a user's status to every room they participate
// in, not just the ones they joined over this connection.
func (g *Gateway) broadcastPresence(userID string, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()

	roomIDs, err := g.rooms.RoomIDsForUser(ctx, userID)
	if err != nil {
		log.Printf("Failed to resolve rooms for presence of %s: %v", userID, err)
		return
	}
	for _, roomID := range roomIDs {
		g.broadcaster.ToRoom(roomID, Event{
			Type: EventUserStatusUpdate,
			Data: map[string]interface{}{"user_id": userID, "online": online},
		}, userID)
	}
}

func (g *Gateway) sendError(c *Client, err error) {
	select {
	case c.send <- Event{Type: EventError, Data: map[string]interface{}{
		"kind":    apperrors.Kind(err),
		"message": err.Error(),
	}}:
	default:
	}
}
