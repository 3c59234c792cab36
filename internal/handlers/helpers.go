package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/rishuraj778292/LLMbeing-sub001/pkg/apperrors"
)

// getUserIDFromContext returns the authenticated user ID set by the JWT
// middleware, or "" when unauthenticated.
func getUserIDFromContext(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

// respondError translates a taxonomy error into the JSON error body with its
// stable HTTP status.
func respondError(c echo.Context, err error) error {
	return c.JSON(apperrors.HTTPStatusFromError(err), echo.Map{
		"error": err.Error(),
		"kind":  apperrors.Kind(err),
	})
}
