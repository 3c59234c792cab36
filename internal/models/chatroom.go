package models

import (
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Room kinds
const (
	RoomKindDirect  = "direct"
	RoomKindProject = "project"
)

// ChatRoom represents a conversation container stored in MongoDB. The
// participant set is fixed at creation time; rooms are soft-deactivated, never
// removed.
type ChatRoom struct {
	ID              primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Participants    []string            `json:"participants" bson:"participants"`
	ParticipantsKey string              `json:"-" bson:"participants_key"`
	Kind            string              `json:"kind" bson:"kind"`
	Project         string              `json:"project_id,omitempty" bson:"project,omitempty"`
	ProjectTitle    string              `json:"project_title,omitempty" bson:"project_title,omitempty"`
	LastMessage     *primitive.ObjectID `json:"last_message_id,omitempty" bson:"last_message,omitempty"`
	LastActivityAt  time.Time           `json:"last_activity_at" bson:"last_activity_at"`
	IsActive        bool                `json:"is_active" bson:"is_active"`
	CreatedAt       time.Time           `json:"created_at" bson:"created_at"`
}

// HasParticipant reports whether userID belongs to the room.
func (r *ChatRoom) HasParticipant(userID string) bool {
	for _, p := range r.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ParticipantsKey builds the order-independent key the unique room index is
// built on.
func ParticipantsKey(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	return strings.Join(sorted, "|")
}

// CreateRoomRequest defines the request body for find-or-create. With a
// project_id the result is a project room between the project's client and the
// other user; without one it is a direct room with the other user.
type CreateRoomRequest struct {
	OtherUserID string `json:"other_user_id" validate:"required"`
	ProjectID   string `json:"project_id,omitempty"`
}

// RoomSummary is the list-view shape: room plus last message preview and the
// caller's unread count.
type RoomSummary struct {
	ChatRoom
	LastMessagePreview *Message `json:"last_message,omitempty"`
	UnreadCount        int64    `json:"unread_count"`
}
