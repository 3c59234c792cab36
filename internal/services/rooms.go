package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/registry"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/repositories"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

// RoomService resolves and reads chat rooms. Find-or-create relies on the
// unique resolving-key index: a losing racer gets ErrConflict from the insert
// and re-fetches the winner's room, so concurrent callers converge on one room
// and the conflict never surfaces.
type RoomService struct {
	rooms     repositories.ChatRoomRepository
	messages  repositories.MessageRepository
	directory registry.UserDirectory
	projects  registry.ProjectRegistry
}

// NewRoomService creates a new RoomService
func NewRoomService(
	rooms repositories.ChatRoomRepository,
	messages repositories.MessageRepository,
	directory registry.UserDirectory,
	projects registry.ProjectRegistry,
) *RoomService {
	return &RoomService{
		rooms:     rooms,
		messages:  messages,
		directory: directory,
		projects:  projects,
	}
}

// RoomDetail is the single-room view: room, a page of history (newest first)
// and the caller's unread count.
type RoomDetail struct {
	Room        *models.ChatRoom `json:"room"`
	Messages    []models.Message `json:"messages"`
	UnreadCount int64            `json:"unread_count"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
}

// FindOrCreateDirectRoom returns the unique active direct room for the pair,
// creating it if absent.
func (s *RoomService) FindOrCreateDirectRoom(ctx context.Context, userA, userB string) (*models.ChatRoom, error) {
	if userA == userB {
		return nil, apperrors.Validation("cannot open a chat with yourself")
	}
	if err := s.requireUsers(ctx, userA, userB); err != nil {
		return nil, err
	}

	key := models.ParticipantsKey([]string{userA, userB})
	if room, err := s.rooms.FindByKey(ctx, key, models.RoomKindDirect, ""); err == nil {
		return room, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	room := &models.ChatRoom{
		Participants:    []string{userA, userB},
		ParticipantsKey: key,
		Kind:            models.RoomKindDirect,
	}
	err := s.rooms.Insert(ctx, room)
	if errors.Is(err, apperrors.ErrConflict) {
		// someone else just created it, re-fetch
		return s.rooms.FindByKey(ctx, key, models.RoomKindDirect, "")
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// FindOrCreateProjectRoom returns the unique active room for a project and its
// (client, freelancer) pair. Exactly one of the two users must be the
// project's client.
func (s *RoomService) FindOrCreateProjectRoom(ctx context.Context, projectID, userA, userB string) (*models.ChatRoom, error) {
	if userA == userB {
		return nil, apperrors.Validation("cannot open a chat with yourself")
	}
	if err := s.requireUsers(ctx, userA, userB); err != nil {
		return nil, err
	}

	project, err := s.projects.Lookup(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if (userA == project.ClientID) == (userB == project.ClientID) {
		return nil, fmt.Errorf("project room requires the project's client and a freelancer: %w", apperrors.ErrUnauthorized)
	}

	key := models.ParticipantsKey([]string{userA, userB})
	if room, err := s.rooms.FindByKey(ctx, key, models.RoomKindProject, projectID); err == nil {
		return room, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	room := &models.ChatRoom{
		Participants:    []string{userA, userB},
		ParticipantsKey: key,
		Kind:            models.RoomKindProject,
		Project:         project.ID,
		ProjectTitle:    project.Title,
	}
	err = s.rooms.Insert(ctx, room)
	if errors.Is(err, apperrors.ErrConflict) {
		return s.rooms.FindByKey(ctx, key, models.RoomKindProject, projectID)
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// ListRooms returns the caller's rooms sorted by last activity, each with its
// last message preview and unread count.
func (s *RoomService) ListRooms(ctx context.Context, userID string) ([]models.RoomSummary, error) {
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

	summaries := make([]models.RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		summary := models.RoomSummary{ChatRoom: room, UnreadCount: counts[room.ID.Hex()]}
		if room.LastMessage != nil {
			if preview, err := s.messages.GetByID(ctx, room.LastMessage.Hex()); err == nil {
				summary.LastMessagePreview = preview
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// GetRoom returns the room with a page of its history. Non-participants get
// ErrUnauthorized.
func (s *RoomService) GetRoom(ctx context.Context, roomID, userID string, page, limit int) (*RoomDetail, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, fmt.Errorf("not a room participant: %w", apperrors.ErrUnauthorized)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	messages, err := s.messages.ListByRoom(ctx, room.ID, int64((page-1)*limit), int64(limit))
	if err != nil {
		return nil, err
	}
	unread, err := s.messages.CountUnread(ctx, room.ID, userID)
	if err != nil {
		return nil, err
	}

	return &RoomDetail{
		Room:        room,
		Messages:    messages,
		UnreadCount: unread,
		Page:        page,
		Limit:       limit,
	}, nil
}

// IsParticipant reports whether userID belongs to the room. Used by the
// transport layer to gate join-room.
func (s *RoomService) IsParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false, err
	}
	return room.HasParticipant(userID), nil
}

// ParticipantIDs returns the room's participant set.
func (s *RoomService) ParticipantIDs(ctx context.Context, roomID string) ([]string, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	return room.Participants, nil
}

// RoomIDsForUser returns the IDs of every active room the user participates
// in. Presence updates fan out to these.
func (s *RoomService) RoomIDsForUser(ctx context.Context, userID string) ([]string, error) {
	rooms, err := s.rooms.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID.Hex())
	}
	return ids, nil
}

func (s *RoomService) requireUsers(ctx context.Context, userIDs ...string) error {
	for _, id := range userIDs {
		ok, err := s.directory.Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("user %s: %w", id, apperrors.ErrNotFound)
		}
	}
	return nil
}
