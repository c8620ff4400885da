package server

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// sessionTTL is how long an issued token stays valid
const sessionTTL = 30 * 24 * time.Hour

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// handleToken implements the OAuth2 password grant. The form field is
// named "username" per the OAuth2 spec but carries the account email.
func (s *Server) handleToken(c echo.Context) error {
	identifier := c.FormValue("username")
	password := c.FormValue("password")
	if identifier == "" || password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "username and password required"})
	}

	var userID int64
	var passwordHash string
	err := s.db.QueryRow(`
		SELECT id, password_hash FROM users WHERE email = $1`,
		identifier,
	).Scan(&userID, &passwordHash)

	// Same response for unknown email and wrong password
	if err == sql.ErrNoRows {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
	}
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
	}

	token, err := s.createSession(userID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}

	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// createSession issues a new opaque session token for a user
func (s *Server) createSession(userID int64) (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	_, err := s.db.Exec(`
		INSERT INTO sessions (user_id, token, expires_at)
		VALUES ($1, $2, $3)`,
		userID, token, time.Now().Add(sessionTTL),
	)

	return token, err
}
