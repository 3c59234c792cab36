package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/middleware"
	"github.com/rishuraj778292/LLMbeing-sub001/internal/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WSHandler upgrades authenticated connections into hub clients
type WSHandler struct {
	hub     *ws.Hub
	gateway *ws.Gateway
	secret  string
}

// NewWSHandler creates a new WSHandler
func NewWSHandler(hub *ws.Hub, gateway *ws.Gateway, secret string) *WSHandler {
	return &WSHandler{hub: hub, gateway: gateway, secret: secret}
}

// RegisterWSRoutes registers the websocket endpoint
func (h *WSHandler) RegisterWSRoutes(e *echo.Echo) {
	e.GET("/ws", h.HandleConnection)
}

// HandleConnection authenticates the socket token, upgrades the connection
// and starts the client's pumps. Authentication happens once, at connect.
func (h *WSHandler) HandleConnection(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing socket token")
	}

	userID, err := middleware.ParseSocketToken(token, h.secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid socket token")
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("Failed to upgrade connection for user %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(h.hub, h.gateway, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return nil
}
