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

// MessageRepository defines the interface for message data operations
type MessageRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListByRoom(ctx context.Context, roomID primitive.ObjectID, skip, limit int64) ([]models.Message, error)
	MarkRead(ctx context.Context, roomID primitive.ObjectID, reader string, messageIDs []primitive.ObjectID, at time.Time) (int64, error)
	CountUnread(ctx context.Context, roomID primitive.ObjectID, userID string) (int64, error)
	CountUnreadByRooms(ctx context.Context, roomIDs []primitive.ObjectID, userID string) (map[string]int64, error)
	Edit(ctx context.Context, messageID primitive.ObjectID, sender, content string, at time.Time) error
	SoftDelete(ctx context.Context, messageID primitive.ObjectID, sender string) error
}

// MongoMessageRepository implements MessageRepository for MongoDB
type MongoMessageRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageRepository creates a new MongoMessageRepository
func NewMongoMessageRepository(db *mongo.Database) *MongoMessageRepository {
	return &MongoMessageRepository{collection: db.Collection("messages")}
}

func (r *MongoMessageRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "room", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{
				{Key: "room", Value: 1},
				{Key: "sender", Value: 1},
				{Key: "read_by.reader", Value: 1},
			},
		},
	})
	return err
}

// Insert creates a new message
func (r *MongoMessageRepository) Insert(ctx context.Context, message *models.Message) error {
	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	if message.Status == "" {
		message.Status = models.MessageStatusSent
	}
	if message.ReadBy == nil {
		message.ReadBy = []models.ReadReceipt{}
	}
	_, err := r.collection.InsertOne(ctx, message)
	return err
}

// GetByID retrieves a message by its hex ID
func (r *MongoMessageRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid message ID format: %w", apperrors.ErrValidation)
	}

	var message models.Message
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&message)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("message: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &message, nil
}

// ListByRoom retrieves a page of room history, newest first
func (r *MongoMessageRepository) ListByRoom(ctx context.Context, roomID primitive.ObjectID, skip, limit int64) ([]models.Message, error) {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"room": roomID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead appends a read receipt to every targeted message in the room that
// was authored by someone else and not yet read by the reader, and flips the
// message status to read. One UpdateMany, idempotent by construction: already
// receipted messages fall out of the filter.
func (r *MongoMessageRepository) MarkRead(ctx context.Context, roomID primitive.ObjectID, reader string, messageIDs []primitive.ObjectID, at time.Time) (int64, error) {
	filter := bson.M{
		"room":           roomID,
		"sender":         bson.M{"$ne": reader},
		"read_by.reader": bson.M{"$ne": reader},
	}
	if len(messageIDs) > 0 {
		filter["_id"] = bson.M{"$in": messageIDs}
	}

	update := bson.M{
		"$push": bson.M{"read_by": models.ReadReceipt{Reader: reader, ReadAt: at}},
		"$set":  bson.M{"status": models.MessageStatusRead},
	}

	res, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountUnread counts messages in a room the user has not read and did not send
func (r *MongoMessageRepository) CountUnread(ctx context.Context, roomID primitive.ObjectID, userID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"room":           roomID,
		"sender":         bson.M{"$ne": userID},
		"read_by.reader": bson.M{"$ne": userID},
	})
}

// CountUnreadByRooms returns per-room unread counts for the badge view. A
// count-only aggregation, no message bodies are loaded.
func (r *MongoMessageRepository) CountUnreadByRooms(ctx context.Context, roomIDs []primitive.ObjectID, userID string) (map[string]int64, error) {
	counts := make(map[string]int64, len(roomIDs))
	if len(roomIDs) == 0 {
		return counts, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"room":           bson.M{"$in": roomIDs},
			"sender":         bson.M{"$ne": userID},
			"read_by.reader": bson.M{"$ne": userID},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$room",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Room  primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err = cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.Room.Hex()] = row.Count
	}
	return counts, nil
}

// Edit replaces the content of the sender's own message
func (r *MongoMessageRepository) Edit(ctx context.Context, messageID primitive.ObjectID, sender, content string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"content":   content,
			"is_edited": true,
			"edited_at": at,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": messageID, "sender": sender, "is_deleted": false}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message: %w", apperrors.ErrNotFound)
	}
	return nil
}

// SoftDelete redacts the content of the sender's own message. No row removal.
func (r *MongoMessageRepository) SoftDelete(ctx context.Context, messageID primitive.ObjectID, sender string) error {
	update := bson.M{
		"$set": bson.M{
			"content":    "",
			"is_deleted": true,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": messageID, "sender": sender}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("message: %w", apperrors.ErrNotFound)
	}
	return nil
}
