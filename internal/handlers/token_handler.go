package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
)

// TokenHandler mints the short-lived socket tokens the transport layer
// authenticates with. Browsers cannot set headers on websocket connects, so
// the token travels as a query parameter and therefore stays short-lived and
// distinct from the session token.
type TokenHandler struct {
	secret string
	ttl    time.Duration
}

// NewTokenHandler creates a new TokenHandler
func NewTokenHandler(secret string, ttl time.Duration) *TokenHandler {
	return &TokenHandler{secret: secret, ttl: ttl}
}

// RegisterTokenRoutes registers the socket token route
func (h *TokenHandler) RegisterTokenRoutes(g *echo.Group) {
	g.POST("/socket-token", h.IssueSocketToken)
}

// IssueSocketToken exchanges the caller's REST session for a transport token
func (h *TokenHandler) IssueSocketToken(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	now := time.Now()
	claims := &models.JwtCustomClaims{
		UserID: currentUserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{models.AudienceSocket},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.secret))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"token":      token,
			"expires_at": now.Add(h.ttl),
		},
	})
}
