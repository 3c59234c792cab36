package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/registry"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

// In-memory fakes mirroring the Mongo repositories' contracts, including the
// duplicate-key conflict on the room resolving index.

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[string]*models.ChatRoom
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[string]*models.ChatRoom)}
}

func resolvingKey(participantsKey, kind, project string) string {
	return participantsKey + "|" + kind + "|" + project
}

func (r *fakeRoomRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeRoomRepo) Insert(ctx context.Context, room *models.ChatRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resolvingKey(room.ParticipantsKey, room.Kind, room.Project)
	for _, existing := range r.rooms {
		if existing.IsActive && resolvingKey(existing.ParticipantsKey, existing.Kind, existing.Project) == key {
			return fmt.Errorf("room already exists: %w", apperrors.ErrConflict)
		}
	}
	room.ID = primitive.NewObjectID()
	room.CreatedAt = time.Now()
	room.LastActivityAt = room.CreatedAt
	room.IsActive = true
	stored := *room
	r.rooms[room.ID.Hex()] = &stored
	return nil
}

func (r *fakeRoomRepo) FindByKey(ctx context.Context, participantsKey, kind, project string) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := resolvingKey(participantsKey, kind, project)
	for _, room := range r.rooms {
		if room.IsActive && resolvingKey(room.ParticipantsKey, room.Kind, room.Project) == key {
			copied := *room
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("chat room: %w", apperrors.ErrNotFound)
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id string) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[id]; ok {
		copied := *room
		return &copied, nil
	}
	return nil, fmt.Errorf("chat room: %w", apperrors.ErrNotFound)
}

func (r *fakeRoomRepo) ListByParticipant(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rooms []models.ChatRoom
	for _, room := range r.rooms {
		if room.IsActive && room.HasParticipant(userID) {
			rooms = append(rooms, *room)
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].LastActivityAt.After(rooms[j].LastActivityAt) })
	return rooms, nil
}

func (r *fakeRoomRepo) SetLastMessage(ctx context.Context, roomID, messageID primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if room, ok := r.rooms[roomID.Hex()]; ok {
		id := messageID
		room.LastMessage = &id
		room.LastActivityAt = at
	}
	return nil
}

func (r *fakeRoomRepo) Deactivate(ctx context.Context, roomID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[roomID.Hex()]
	if !ok {
		return fmt.Errorf("chat room: %w", apperrors.ErrNotFound)
	}
	room.IsActive = false
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*models.Message
	seq      int64
}

func newFakeMessageRepo() *fakeMessageRepo { return &fakeMessageRepo{} }

func (r *fakeMessageRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeMessageRepo) Insert(ctx context.Context, message *models.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	message.ID = primitive.NewObjectID()
	r.seq++
	// strictly increasing timestamps so ordering is deterministic
	message.CreatedAt = time.Unix(0, r.seq*int64(time.Millisecond))
	if message.Status == "" {
		message.Status = models.MessageStatusSent
	}
	if message.ReadBy == nil {
		message.ReadBy = []models.ReadReceipt{}
	}
	stored := *message
	r.messages = append(r.messages, &stored)
	return nil
}

func (r *fakeMessageRepo) GetByID(ctx context.Context, id string) (*models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID.Hex() == id {
			copied := *m
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("message: %w", apperrors.ErrNotFound)
}

func (r *fakeMessageRepo) ListByRoom(ctx context.Context, roomID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var inRoom []models.Message
	for _, m := range r.messages {
		if m.Room == roomID {
			inRoom = append(inRoom, *m)
		}
	}
	sort.Slice(inRoom, func(i, j int) bool { return inRoom[i].CreatedAt.After(inRoom[j].CreatedAt) })
	if skip >= int64(len(inRoom)) {
		return nil, nil
	}
	inRoom = inRoom[skip:]
	if limit < int64(len(inRoom)) {
		inRoom = inRoom[:limit]
	}
	return inRoom, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, roomID primitive.ObjectID, reader string, messageIDs []primitive.ObjectID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	targeted := func(id primitive.ObjectID) bool {
		if len(messageIDs) == 0 {
			return true
		}
		for _, t := range messageIDs {
			if t == id {
				return true
			}
		}
		return false
	}
	var modified int64
	for _, m := range r.messages {
		if m.Room != roomID || m.Sender == reader || m.ReadByUser(reader) || !targeted(m.ID) {
			continue
		}
		m.ReadBy = append(m.ReadBy, models.ReadReceipt{Reader: reader, ReadAt: at})
		m.Status = models.MessageStatusRead
		modified++
	}
	return modified, nil
}

func (r *fakeMessageRepo) CountUnread(ctx context.Context, roomID primitive.ObjectID, userID string) (int64, error) {
	counts, err := r.CountUnreadByRooms(ctx, []primitive.ObjectID{roomID}, userID)
	if err != nil {
		return 0, err
	}
	return counts[roomID.Hex()], nil
}

func (r *fakeMessageRepo) CountUnreadByRooms(ctx context.Context, roomIDs []primitive.ObjectID, userID string) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int64, len(roomIDs))
	for _, id := range roomIDs {
		for _, m := range r.messages {
			if m.Room == id && m.Sender != userID && !m.ReadByUser(userID) {
				counts[id.Hex()]++
			}
		}
	}
	return counts, nil
}

func (r *fakeMessageRepo) Edit(ctx context.Context, messageID primitive.ObjectID, sender, content string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == messageID && m.Sender == sender && !m.IsDeleted {
			m.Content = content
			m.IsEdited = true
			edited := at
			m.EditedAt = &edited
			return nil
		}
	}
	return fmt.Errorf("message: %w", apperrors.ErrNotFound)
}

func (r *fakeMessageRepo) SoftDelete(ctx context.Context, messageID primitive.ObjectID, sender string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.ID == messageID && m.Sender == sender {
			m.Content = ""
			m.IsDeleted = true
			return nil
		}
	}
	return fmt.Errorf("message: %w", apperrors.ErrNotFound)
}

func (r *fakeMessageRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo { return &fakeNotificationRepo{} }

func (r *fakeNotificationRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeNotificationRepo) CreateNotification(ctx context.Context, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	stored := *notification
	r.notifications = append(r.notifications, &stored)
	return nil
}

func (r *fakeNotificationRepo) GetByRecipient(ctx context.Context, recipient string, page, limit int, unreadOnly bool) ([]models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []models.Notification
	for _, n := range r.notifications {
		if n.Recipient == recipient && (!unreadOnly || !n.IsRead) {
			matched = append(matched, *n)
		}
	}
	return matched, int64(len(matched)), nil
}

func (r *fakeNotificationRepo) GetUnreadCount(ctx context.Context, recipient string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id, recipient string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID.Hex() == id && n.Recipient == recipient {
			n.IsRead = true
			read := at
			n.ReadAt = &read
			return nil
		}
	}
	return fmt.Errorf("notification: %w", apperrors.ErrNotFound)
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, recipient string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.Recipient == recipient && !n.IsRead {
			n.IsRead = true
			read := at
			n.ReadAt = &read
		}
	}
	return nil
}

func (r *fakeNotificationRepo) Delete(ctx context.Context, id, recipient string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, n := range r.notifications {
		if n.ID.Hex() == id && n.Recipient == recipient {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification: %w", apperrors.ErrNotFound)
}

func (r *fakeNotificationRepo) forRecipient(recipient string) []models.Notification {
	notifications, _, _ := r.GetByRecipient(context.Background(), recipient, 1, 100, false)
	return notifications
}

// knownUsers is a directory that only recognizes a fixed set of IDs.
type knownUsers map[string]bool

func (d knownUsers) Exists(ctx context.Context, userID string) (bool, error) {
	return d[userID], nil
}

// blocklistModerator vetoes content containing a banned word.
type blocklistModerator struct{ banned string }

func (m blocklistModerator) Check(ctx context.Context, content string) (registry.Verdict, error) {
	if m.banned != "" && strings.Contains(content, m.banned) {
		return registry.Verdict{OK: false, Reason: "contains prohibited content"}, nil
	}
	return registry.Verdict{OK: true}, nil
}
