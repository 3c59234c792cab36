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

// ChatRoomRepository defines the interface for chat room data operations
type ChatRoomRepository interface {
	EnsureIndexes(ctx context.Context) error
	Insert(ctx context.Context, room *models.ChatRoom) error
	FindByKey(ctx context.Context, participantsKey, kind, project string) (*models.ChatRoom, error)
	GetByID(ctx context.Context, id string) (*models.ChatRoom, error)
	ListByParticipant(ctx context.Context, userID string) ([]models.ChatRoom, error)
	SetLastMessage(ctx context.Context, roomID, messageID primitive.ObjectID, at time.Time) error
	Deactivate(ctx context.Context, roomID primitive.ObjectID) error
}

// MongoChatRoomRepository implements ChatRoomRepository for MongoDB
type MongoChatRoomRepository struct {
	collection *mongo.Collection
}

// NewMongoChatRoomRepository creates a new MongoChatRoomRepository
func NewMongoChatRoomRepository(db *mongo.Database) *MongoChatRoomRepository {
	return &MongoChatRoomRepository{collection: db.Collection("chatrooms")}
}

// EnsureIndexes creates the unique resolving-key index that makes concurrent
// find-or-create converge on one room, plus the list-view index.
func (r *MongoChatRoomRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "participants_key", Value: 1},
				{Key: "kind", Value: 1},
				{Key: "project", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"is_active": true}),
		},
		{
			Keys: bson.D{
				{Key: "participants", Value: 1},
				{Key: "last_activity_at", Value: -1},
			},
		},
	})
	return err
}

// Insert creates a new chat room. A duplicate-key violation of the resolving
// index is reported as apperrors.ErrConflict so callers can re-fetch.
func (r *MongoChatRoomRepository) Insert(ctx context.Context, room *models.ChatRoom) error {
	room.ID = primitive.NewObjectID()
	room.CreatedAt = time.Now()
	room.LastActivityAt = room.CreatedAt
	room.IsActive = true
	_, err := r.collection.InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("room already exists: %w", apperrors.ErrConflict)
	}
	return err
}

// FindByKey retrieves the active room for a resolving key, or ErrNotFound.
func (r *MongoChatRoomRepository) FindByKey(ctx context.Context, participantsKey, kind, project string) (*models.ChatRoom, error) {
	filter := bson.M{
		"participants_key": participantsKey,
		"kind":             kind,
		"is_active":        true,
	}
	if project != "" {
		filter["project"] = project
	}

	var room models.ChatRoom
	err := r.collection.FindOne(ctx, filter).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("chat room: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &room, nil
}

// GetByID retrieves a chat room by its hex ID
func (r *MongoChatRoomRepository) GetByID(ctx context.Context, id string) (*models.ChatRoom, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid room ID format: %w", apperrors.ErrValidation)
	}

	var room models.ChatRoom
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&room)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("chat room: %w", apperrors.ErrNotFound)
		}
		return nil, err
	}
	return &room, nil
}

// ListByParticipant retrieves a user's active rooms, most recent activity first
func (r *MongoChatRoomRepository) ListByParticipant(ctx context.Context, userID string) ([]models.ChatRoom, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "last_activity_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"participants": userID, "is_active": true}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rooms []models.ChatRoom
	if err = cursor.All(ctx, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// SetLastMessage advances the room's last-activity pointer after a send
func (r *MongoChatRoomRepository) SetLastMessage(ctx context.Context, roomID, messageID primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"last_message":     messageID,
			"last_activity_at": at,
		},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": roomID}, update)
	return err
}

// Deactivate soft-disables a room. Rooms are never hard-deleted.
func (r *MongoChatRoomRepository) Deactivate(ctx context.Context, roomID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": roomID}, bson.M{"$set": bson.M{"is_active": false}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("chat room: %w", apperrors.ErrNotFound)
	}
	return nil
}
