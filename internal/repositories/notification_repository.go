package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	EnsureIndexes(ctx context.Context) error
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipient(ctx context.Context, recipient string, page, limit int, unreadOnly bool) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipient string) (int64, error)
	MarkAsRead(ctx context.Context, id, recipient string, at time.Time) error
	MarkAllAsRead(ctx context.Context, recipient string, at time.Time) error
	Delete(ctx context.Context, id, recipient string) error
}

// MongoNotificationRepository implements NotificationRepository for MongoDB
type MongoNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoNotificationRepository creates a new MongoNotificationRepository
func NewMongoNotificationRepository(db *mongo.Database) *MongoNotificationRepository {
	return &MongoNotificationRepository{collection: db.Collection("notifications")}
}

func (r *MongoNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "recipient", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "recipient", Value: 1},
				{Key: "is_read", Value: 1},
			},
		},
	})
	return err
}

// CreateNotification creates a new notification
func (r *MongoNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	notification.ID = primitive.NewObjectID()
	notification.CreatedAt = time.Now()
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetByRecipient returns a page of the recipient's notifications, newest first
func (r *MongoNotificationRepository) GetByRecipient(ctx context.Context, recipient string, page, limit int, unreadOnly bool) ([]models.Notification, int64, error) {
	filter := bson.M{"recipient": recipient}
	if unreadOnly {
		filter["is_read"] = false
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	skip := int64((page - 1) * limit)
	findOptions := options.Find().SetSkip(skip).SetLimit(int64(limit)).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var notifications []models.Notification
	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// GetUnreadCount returns the recipient's unread notification count
func (r *MongoNotificationRepository) GetUnreadCount(ctx context.Context, recipient string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"recipient": recipient, "is_read": false})
}

// MarkAsRead flips one notification to read, recipient-scoped
func (r *MongoNotificationRepository) MarkAsRead(ctx context.Context, id, recipient string, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", apperrors.ErrValidation)
	}

	update := bson.M{"$set": bson.M{"is_read": true, "read_at": at}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID, "recipient": recipient}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("notification: %w", apperrors.ErrNotFound)
	}
	return nil
}

// MarkAllAsRead flips all of the recipient's unread notifications
func (r *MongoNotificationRepository) MarkAllAsRead(ctx context.Context, recipient string, at time.Time) error {
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": at}}
	_, err := r.collection.UpdateMany(ctx, bson.M{"recipient": recipient, "is_read": false}, update)
	return err
}

// Delete removes one notification, recipient-scoped
func (r *MongoNotificationRepository) Delete(ctx context.Context, id, recipient string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", apperrors.ErrValidation)
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID, "recipient": recipient})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification: %w", apperrors.ErrNotFound)
	}
	return nil
}
