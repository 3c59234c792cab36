package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types
const (
	NotificationNewMessage          = "new_message"
	NotificationApplicationAccepted = "application_accepted"
	NotificationApplicationRejected = "application_rejected"
	NotificationProjectCompleted    = "project_completed"
	NotificationProjectCancelled    = "project_cancelled"
	NotificationReviewReceived      = "review_received"
	NotificationSystem              = "system"
)

// RelatedRef kinds
const (
	RelatedKindMessage     = "message"
	RelatedKindApplication = "application"
	RelatedKindProject     = "project"
	RelatedKindUser        = "user"
)

// RelatedRef is a tagged back-reference to the entity that caused a
// notification. No referential integrity is enforced across collections.
type RelatedRef struct {
	Kind string `json:"kind" bson:"kind"`
	ID   string `json:"id" bson:"id"`
}

// Notification represents a user notification stored in MongoDB
type Notification struct {
	ID        primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Recipient string             `json:"recipient_id" bson:"recipient"`
	Sender    string             `json:"sender_id,omitempty" bson:"sender,omitempty"`
	Title     string             `json:"title" bson:"title"`
	Message   string             `json:"message" bson:"message"`
	Type      string             `json:"type" bson:"type"`
	Related   *RelatedRef        `json:"related,omitempty" bson:"related,omitempty"`
	IsRead    bool               `json:"is_read" bson:"is_read"`
	ReadAt    *time.Time         `json:"read_at,omitempty" bson:"read_at,omitempty"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
