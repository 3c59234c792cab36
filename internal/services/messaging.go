package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/registry"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/repositories"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

const notificationPreviewLength = 80

// MessagingService owns message ingestion and read state. SendMessage is the
// single named "persist + bump room + fan out notifications" operation both
// the REST path and the socket path converge on; the derived updates are
// explicit here rather than hidden in store lifecycle hooks.
type MessagingService struct {
	rooms         repositories.ChatRoomRepository
	messages      repositories.MessageRepository
	notifications repositories.NotificationRepository
	moderator     registry.Moderator
	now           func() time.Time
}

// NewMessagingService creates a new MessagingService
func NewMessagingService(
	rooms repositories.ChatRoomRepository,
	messages repositories.MessageRepository,
	notifications repositories.NotificationRepository,
	moderator registry.Moderator,
) *MessagingService {
	return &MessagingService{
		rooms:         rooms,
		messages:      messages,
		notifications: notifications,
		moderator:     moderator,
		now:           time.Now,
	}
}

// UnreadSummary is the badge view: per-room unread counts plus the total.
type UnreadSummary struct {
	Rooms map[string]int64 `json:"rooms"`
	Total int64            `json:"total"`
}

// SendMessage validates and persists a message, then best-effort advances the
// room's last-activity pointer and creates one new_message notification per
// other participant. A rejected or invalid message leaves no state behind.
// The post-insert steps are deliberately not transactional: a crash in
// between can miss a pointer bump or a notification, which is an accepted
// tradeoff for a store without cheap multi-document transactions.
func (s *MessagingService) SendMessage(ctx context.Context, roomID, sender, content, replyToID string) (*models.Message, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(sender) {
		return nil, fmt.Errorf("not a room participant: %w", apperrors.ErrUnauthorized)
	}
	if !room.IsActive {
		return nil, fmt.Errorf("room %s: %w", roomID, apperrors.ErrRoomInactive)
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("message content is empty")
	}
	if len([]rune(content)) > models.MaxMessageLength {
		return nil, apperrors.Validation("message content too long")
	}

	verdict, err := s.moderator.Check(ctx, content)
	if err != nil {
		return nil, err
	}
	if !verdict.OK {
		return nil, apperrors.ContentRejected(verdict.Reason)
	}

	var replyTo *primitive.ObjectID
	if replyToID != "" {
		target, err := s.messages.GetByID(ctx, replyToID)
		if err != nil {
			return nil, apperrors.Validation("reply target does not exist")
		}
		if target.Room != room.ID {
			return nil, apperrors.Validation("reply target belongs to another room")
		}
		replyTo = &target.ID
	}

	message := &models.Message{
		Room:    room.ID,
		Sender:  sender,
		Content: content,
		Status:  models.MessageStatusSent,
		ReplyTo: replyTo,
	}
	if err := s.messages.Insert(ctx, message); err != nil {
		return nil, err
	}

	// Best-effort from here on: the message is durable, derived state may lag.
	if err := s.rooms.SetLastMessage(ctx, room.ID, message.ID, message.CreatedAt); err != nil {
		log.Printf("Failed to bump last activity for room %s: %v", roomID, err)
	}
	s.fanOutNewMessage(ctx, room, message)

	return message, nil
}

// EditMessage replaces the content of the sender's own message. Edited content
// goes through moderation like a fresh send.
func (s *MessagingService) EditMessage(ctx context.Context, messageID, sender, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.Validation("message content is empty")
	}
	if len([]rune(content)) > models.MaxMessageLength {
		return nil, apperrors.Validation("message content too long")
	}

	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.Sender != sender {
		return nil, fmt.Errorf("only the sender may edit a message: %w", apperrors.ErrUnauthorized)
	}
	if message.IsDeleted {
		return nil, apperrors.Validation("message was deleted")
	}

	verdict, err := s.moderator.Check(ctx, content)
	if err != nil {
		return nil, err
	}
	if !verdict.OK {
		return nil, apperrors.ContentRejected(verdict.Reason)
	}

	if err := s.messages.Edit(ctx, message.ID, sender, content, s.now()); err != nil {
		return nil, err
	}
	return s.messages.GetByID(ctx, messageID)
}

// DeleteMessage soft-deletes the sender's own message, redacting its content.
func (s *MessagingService) DeleteMessage(ctx context.Context, messageID, sender string) error {
	message, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return err
	}
	if message.Sender != sender {
		return fmt.Errorf("only the sender may delete a message: %w", apperrors.ErrUnauthorized)
	}
	return s.messages.SoftDelete(ctx, message.ID, sender)
}

// MarkRead records the reader's receipt on the targeted messages. Idempotent:
// a second identical call modifies nothing. Returns the number of messages
// newly marked.
func (s *MessagingService) MarkRead(ctx context.Context, roomID, reader string, messageIDs []string) (int64, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if !room.HasParticipant(reader) {
		return 0, fmt.Errorf("not a room participant: %w", apperrors.ErrUnauthorized)
	}

	ids := make([]primitive.ObjectID, 0, len(messageIDs))
	for _, raw := range messageIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return 0, apperrors.Validation("invalid message ID format")
		}
		ids = append(ids, id)
	}

	return s.messages.MarkRead(ctx, room.ID, reader, ids, s.now())
}

// UnreadCount returns the caller's unread count for one room.
func (s *MessagingService) UnreadCount(ctx context.Context, roomID, userID string) (int64, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return 0, err
	}
	if !room.HasParticipant(userID) {
		return 0, fmt.Errorf("not a room participant: %w", apperrors.ErrUnauthorized)
	}
	return s.messages.CountUnread(ctx, room.ID, userID)
}

// UnreadCounts returns per-room unread counts across every room the user
// participates in, plus the total. Count-only, no message bodies loaded.
func (s *MessagingService) UnreadCounts(ctx context.Context, userID string) (*UnreadSummary, error) {
	rooms, err := s.rooms.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	roomIDs := make([]primitive.ObjectID, 0, len(rooms))
	for _, room := range rooms {
		roomIDs = append(roomIDs, room.ID)
	}
	counts, err := s.messages.CountUnreadByRooms(ctx, roomIDs, userID)
	if err != nil {
		return nil, err
	}

	summary := &UnreadSummary{Rooms: make(map[string]int64, len(rooms))}
	for _, room := range rooms {
		count := counts[room.ID.Hex()]
		summary.Rooms[room.ID.Hex()] = count
		summary.Total += count
	}
	return summary, nil
}

func (s *MessagingService) fanOutNewMessage(ctx context.Context, room *models.ChatRoom, message *models.Message) {
	title := "New message"
	if room.Kind == models.RoomKindProject && room.ProjectTitle != "" {
		title = "New message about " + room.ProjectTitle
	}

	preview := message.Content
	if len([]rune(preview)) > notificationPreviewLength {
		preview = string([]rune(preview)[:notificationPreviewLength]) + "…"
	}

	for _, participant := range room.Participants {
		if participant == message.Sender {
			continue
		}
		notification := &models.Notification{
			Recipient: participant,
			Sender:    message.Sender,
			Title:     title,
			Message:   preview,
			Type:      models.NotificationNewMessage,
			Related:   &models.RelatedRef{Kind: models.RelatedKindMessage, ID: message.ID.Hex()},
		}
		if err := s.notifications.CreateNotification(ctx, notification); err != nil {
			log.Printf("Failed to create notification for %s: %v", participant, err)
		}
	}
}
