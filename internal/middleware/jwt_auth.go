package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/rishuraj778292/LLMbeing-sub001/internal/models"
)

// JWTAuthMiddleware checks for a valid session JWT and extracts user claims.
func JWTAuthMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			claims, err := parseToken(parts[1], secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}
			if claimsAudience(claims) == models.AudienceSocket {
				// socket tokens are not session credentials
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set("userID", claims.UserID)
			c.Set("userRole", claims.Role)
			return next(c)
		}
	}
}

// ParseSocketToken validates the short-lived transport token exchanged at
// websocket connect time and returns the authenticated user ID.
func ParseSocketToken(tokenString, secret string) (string, error) {
	claims, err := parseToken(tokenString, secret)
	if err != nil {
		return "", err
	}
	if claimsAudience(claims) != models.AudienceSocket {
		return "", fmt.Errorf("not a socket token")
	}
	return claims.UserID, nil
}

func parseToken(tokenString, secret string) (*models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func claimsAudience(claims *models.JwtCustomClaims) string {
	if len(claims.Audience) > 0 {
		return claims.Audience[0]
	}
	return models.AudienceSession
}
