package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/anoncampus/campusforum/internal/model"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// handleCreateUser handles account registration. It never issues a
// token; the client logs in separately.
func (s *Server) handleCreateUser(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "invalid request"})
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "username, email, and password required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "Password must be at least 8 characters"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Error("bcrypt error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}

	account := model.Account{PasswordHash: string(hash)}
	err = s.db.QueryRow(`
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, created_at`,
		req.Username, req.Email, account.PasswordHash,
	).Scan(&account.ID, &account.Username, &account.Email, &account.CreatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "users_email") {
			return c.JSON(http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
		}
		if strings.Contains(err.Error(), "users_username") {
			return c.JSON(http.StatusBadRequest, map[string]string{"detail": "Username already taken"})
		}
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}

	return c.JSON(http.StatusCreated, userResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	})
}

// handleMe returns the identity behind the presented token
func (s *Server) handleMe(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	var username string
	err := s.db.QueryRow(`
		SELECT username FROM users WHERE id = $1`,
		userID,
	).Scan(&username)

	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "user not found"})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"id":       userID,
		"username": username,
	})
}
