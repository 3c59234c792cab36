package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/services"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/ws"
)

// ChatRoomHandler handles room and message HTTP requests
type ChatRoomHandler struct {
	roomService      *services.RoomService
	messagingService *services.MessagingService
	gateway          *ws.Gateway
}

// NewChatRoomHandler creates a new ChatRoomHandler
func NewChatRoomHandler(roomService *services.RoomService, messagingService *services.MessagingService, gateway *ws.Gateway) *ChatRoomHandler {
	return &ChatRoomHandler{
		roomService:      roomService,
		messagingService: messagingService,
		gateway:          gateway,
	}
}

// RegisterChatRoomRoutes registers room and message routes
func (h *ChatRoomHandler) RegisterChatRoomRoutes(g *echo.Group) {
	g.POST("/chatrooms", h.FindOrCreateRoom)
	g.GET("/chatrooms", h.ListRooms)
	g.GET("/chatrooms/:room_id", h.GetRoom)
	g.POST("/chatrooms/:room_id/messages", h.SendMessage)
	g.PATCH("/chatrooms/:room_id/messages/:message_id", h.EditMessage)
	g.DELETE("/chatrooms/:room_id/messages/:message_id", h.DeleteMessage)
	g.POST("/chatrooms/:room_id/read", h.MarkRead)
	g.GET("/unread-counts", h.GetUnreadCounts)
}

// FindOrCreateRoom resolves the unique room for the caller and another user,
// optionally anchored to a project.
func (h *ChatRoomHandler) FindOrCreateRoom(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	req := new(models.CreateRoomRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	var room *models.ChatRoom
	var err error
	if req.ProjectID != "" {
		room, err = h.roomService.FindOrCreateProjectRoom(c.Request().Context(), req.ProjectID, currentUserID, req.OtherUserID)
	} else {
		room, err = h.roomService.FindOrCreateDirectRoom(c.Request().Context(), currentUserID, req.OtherUserID)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"room": room}})
}

// ListRooms returns the caller's rooms, most recent activity first
func (h *ChatRoomHandler) ListRooms(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	rooms, err := h.roomService.ListRooms(c.Request().Context(), currentUserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"rooms": rooms}})
}

// GetRoom returns room detail with paginated history, newest first
func (h *ChatRoomHandler) GetRoom(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	detail, err := h.roomService.GetRoom(c.Request().Context(), c.Param("room_id"), currentUserID, page, limit)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": detail})
}

// SendMessage is the REST fallback send path. It converges on the same
// persistence operation as the socket path and triggers the same broadcast.
func (h *ChatRoomHandler) SendMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	req := new(models.SendMessageRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	roomID := c.Param("room_id")
	message, err := h.messagingService.SendMessage(c.Request().Context(), roomID, currentUserID, req.Content, req.ReplyToID)
	if err != nil {
		return respondError(c, err)
	}

	if h.gateway != nil {
		h.gateway.BroadcastMessage(c.Request().Context(), roomID, message)
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"message": message}})
}

// EditMessage edits the caller's own message
func (h *ChatRoomHandler) EditMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	req := new(models.EditMessageRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	message, err := h.messagingService.EditMessage(c.Request().Context(), c.Param("message_id"), currentUserID, req.Content)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"message": message}})
}

// DeleteMessage soft-deletes the caller's own message
func (h *ChatRoomHandler) DeleteMessage(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	if err := h.messagingService.DeleteMessage(c.Request().Context(), c.Param("message_id"), currentUserID); err != nil {
		return respondError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// MarkRead records the caller's read receipts for a room
func (h *ChatRoomHandler) MarkRead(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	req := new(models.MarkReadRequest)
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	roomID := c.Param("room_id")
	count, err := h.messagingService.MarkRead(c.Request().Context(), roomID, currentUserID, req.MessageIDs)
	if err != nil {
		return respondError(c, err)
	}

	if h.gateway != nil {
		h.gateway.BroadcastRead(roomID, currentUserID, req.MessageIDs, count)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"marked": count}})
}

// GetUnreadCounts returns per-room and total unread counts for badge rendering
func (h *ChatRoomHandler) GetUnreadCounts(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	summary, err := h.messagingService.UnreadCounts(c.Request().Context(), currentUserID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": summary})
}
