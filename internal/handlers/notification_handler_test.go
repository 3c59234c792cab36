package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

type memoryNotifications struct {
	notifications []*models.Notification
}

func (r *memoryNotifications) EnsureIndexes(ctx context.Context) error { return nil }

func (r *memoryNotifications) CreateNotification(ctx context.Context, n *models.Notification) error {
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	stored := *n
	r.notifications = append(r.notifications, &stored)
	return nil
}

func (r *memoryNotifications) GetByRecipient(ctx context.Context, recipient string, page, limit int, unreadOnly bool) ([]models.Notification, int64, error) {
	var matched []models.Notification
	for _, n := range r.notifications {
		if n.Recipient == recipient && (!unreadOnly || !n.IsRead) {
			matched = append(matched, *n)
		}
	}
	return matched, int64(len(matched)), nil
}

func (r *memoryNotifications) GetUnreadCount(ctx context.Context, recipient string) (int64, error) {
	var count int64
	for _, n := range r.notifications {
		if n.Recipient == recipient && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *memoryNotifications) MarkAsRead(ctx context.Context, id, recipient string, at time.Time) error {
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

func (r *memoryNotifications) MarkAllAsRead(ctx context.Context, recipient string, at time.Time) error {
	for _, n := range r.notifications {
		if n.Recipient == recipient {
			n.IsRead = true
		}
	}
	return nil
}

func (r *memoryNotifications) Delete(ctx context.Context, id, recipient string) error {
	for i, n := range r.notifications {
		if n.ID.Hex() == id && n.Recipient == recipient {
			r.notifications = append(r.notifications[:i], r.notifications[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification: %w", apperrors.ErrNotFound)
}

func seedNotification(t *testing.T, repo *memoryNotifications, recipient string) *models.Notification {
	t.Helper()
	n := &models.Notification{
		Recipient: recipient,
		Sender:    "alice",
		Title:     "New message",
		Message:   "alice: hi there",
		Type:      models.NotificationNewMessage,
	}
	require.NoError(t, repo.CreateNotification(context.Background(), n))
	return n
}

func doRequest(handler echo.HandlerFunc, method, target, userID string, params map[string]string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != "" {
		c.Set("userID", userID)
	}
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestGetNotificationsEnvelope(t *testing.T) {
	repo := &memoryNotifications{}
	seedNotification(t, repo, "bob")
	seedNotification(t, repo, "bob")
	seedNotification(t, repo, "carol")
	h := NewNotificationHandler(repo)

	rec := doRequest(h.GetNotifications, http.MethodGet, "/api/v1/notifications", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Notifications []models.Notification `json:"notifications"`
			UnreadCount   int64                 `json:"unreadCount"`
		} `json:"data"`
		Meta struct {
			CurrentPage int   `json:"currentPage"`
			TotalItems  int64 `json:"totalItems"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data.Notifications, 2)
	assert.Equal(t, int64(2), body.Data.UnreadCount)
	assert.Equal(t, 1, body.Meta.CurrentPage)
	assert.Equal(t, int64(2), body.Meta.TotalItems)
}

func TestGetNotificationsRequiresAuth(t *testing.T) {
	h := NewNotificationHandler(&memoryNotifications{})
	rec := doRequest(h.GetNotifications, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMarkAsReadScopedToRecipient(t *testing.T) {
	repo := &memoryNotifications{}
	n := seedNotification(t, repo, "bob")
	h := NewNotificationHandler(repo)

	// someone else's notification looks like it doesn't exist
	rec := doRequest(h.MarkAsRead, http.MethodPatch, "/api/v1/notifications/"+n.ID.Hex()+"/read", "carol",
		map[string]string{"id": n.ID.Hex()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(h.MarkAsRead, http.MethodPatch, "/api/v1/notifications/"+n.ID.Hex()+"/read", "bob",
		map[string]string{"id": n.ID.Hex()})
	assert.Equal(t, http.StatusOK, rec.Code)

	count, err := repo.GetUnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAllAsRead(t *testing.T) {
	repo := &memoryNotifications{}
	seedNotification(t, repo, "bob")
	seedNotification(t, repo, "bob")
	h := NewNotificationHandler(repo)

	rec := doRequest(h.MarkAllAsRead, http.MethodPatch, "/api/v1/notifications/mark-all-read", "bob", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	count, err := repo.GetUnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteNotification(t *testing.T) {
	repo := &memoryNotifications{}
	n := seedNotification(t, repo, "bob")
	h := NewNotificationHandler(repo)

	rec := doRequest(h.DeleteNotification, http.MethodDelete, "/api/v1/notifications/"+n.ID.Hex(), "bob",
		map[string]string{"id": n.ID.Hex()})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	// deleting again reports not found with the taxonomy kind
	rec = doRequest(h.DeleteNotification, http.MethodDelete, "/api/v1/notifications/"+n.ID.Hex(), "bob",
		map[string]string{"id": n.ID.Hex()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Kind)
}
