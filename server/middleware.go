package server

import (
	"net/http"
	"strings"

	"github.com/anoncampus/campusforum/internal/model"
	"github.com/labstack/echo/v4"
)

// authMiddleware validates the bearer token against the sessions table
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "authorization required"})
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "invalid authorization format"})
		}

		var sess model.Session
		err := s.db.QueryRow(`
			SELECT id, user_id, expires_at FROM sessions WHERE token = $1`,
			token,
		).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		}

		if sess.IsExpired() {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "token expired"})
		}

		c.Set("user_id", sess.UserID)
		return next(c)
	}
}
