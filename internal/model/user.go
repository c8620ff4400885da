package model

import "time"

// User is the identity record returned by the backend. It is replaced
// wholesale on each successful login or bootstrap, never patched.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Account is the server-side view of a user, including fields the
// client never sees.
type Account struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session represents an active login session on the server
type Session struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
