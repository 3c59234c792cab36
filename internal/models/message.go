package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxMessageLength bounds message content.
const MaxMessageLength = 2000

// Message statuses. Status is a coarse room-level projection; per-recipient
// read state lives in ReadBy. Nothing assigns delivered yet: messages move
// from sent straight to read when the first receipt lands. The value is part
// of the wire enum for clients that track per-device delivery acks.
const (
	MessageStatusSent      = "sent"
	MessageStatusDelivered = "delivered"
	MessageStatusRead      = "read"
)

// ReadReceipt records that a reader saw a message. At most one entry per
// distinct reader.
type ReadReceipt struct {
	Reader string    `json:"reader" bson:"reader"`
	ReadAt time.Time `json:"read_at" bson:"read_at"`
}

// Message represents a chat message stored in MongoDB
type Message struct {
	ID        primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Room      primitive.ObjectID  `json:"room_id" bson:"room"`
	Sender    string              `json:"sender_id" bson:"sender"`
	Content   string              `json:"content" bson:"content"`
	Status    string              `json:"status" bson:"status"`
	ReadBy    []ReadReceipt       `json:"read_by" bson:"read_by"`
	ReplyTo   *primitive.ObjectID `json:"reply_to_id,omitempty" bson:"reply_to,omitempty"`
	IsEdited  bool                `json:"is_edited" bson:"is_edited"`
	IsDeleted bool                `json:"is_deleted" bson:"is_deleted"`
	CreatedAt time.Time           `json:"created_at" bson:"created_at"`
	EditedAt  *time.Time          `json:"edited_at,omitempty" bson:"edited_at,omitempty"`
}

// ReadByUser reports whether userID already appears in the read receipts.
func (m *Message) ReadByUser(userID string) bool {
	for _, r := range m.ReadBy {
		if r.Reader == userID {
			return true
		}
	}
	return false
}

// SendMessageRequest defines the request body for sending a message
type SendMessageRequest struct {
	Content   string `json:"content" validate:"required,min=1,max=2000"`
	ReplyToID string `json:"reply_to_id,omitempty"`
}

// EditMessageRequest defines the request body for editing an existing message
type EditMessageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=2000"`
}

// MarkReadRequest defines the request body for marking messages read. An empty
// list targets every unread message in the room.
type MarkReadRequest struct {
	MessageIDs []string `json:"message_ids,omitempty"`
}
