package server

import (
	"net/http"

	"github.com/anoncampus/campusforum/internal/model"
	"github.com/labstack/echo/v4"
)

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// handleListPosts returns the public feed, newest first. The shape is
// the canonical one: author nested as {username}.
func (s *Server) handleListPosts(c echo.Context) error {
	rows, err := s.db.Query(`
		SELECT p.id, p.title, p.content, p.created_at, u.username
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC`)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.CreatedAt, &p.Author.Username); err != nil {
			c.Logger().Error("scan error:", err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		c.Logger().Error("rows error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}

	return c.JSON(http.StatusOK, posts)
}

// handleCreatePost publishes a post for the authenticated user
func (s *Server) handleCreatePost(c echo.Context) error {
	userID := c.Get("user_id").(int64)

	var req createPostRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "invalid request"})
	}
	if req.Title == "" || req.Content == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"detail": "title and content required"})
	}

	var p model.Post
	p.Title = req.Title
	p.Content = req.Content
	err := s.db.QueryRow(`
		INSERT INTO posts (title, content, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		req.Title, req.Content, userID,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}

	if err := s.db.QueryRow(`SELECT username FROM users WHERE id = $1`, userID).Scan(&p.Author.Username); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"detail": "internal error"})
	}

	return c.JSON(http.StatusCreated, p)
}
