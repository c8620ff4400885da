package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/anoncampus/campusforum/internal/config"
)

// Store persists the bearer token across runs. It holds exactly one
// durable key; an absent file means anonymous. The manager is the
// exclusive caller, which keeps the durable copy and the client's
// authorization header moving in lockstep.
type Store struct {
	path string
}

// DefaultStorePath returns the default token path (~/.campusforum/session.json)
func DefaultStorePath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, "session.json"), nil
}

// NewStore creates a store backed by the file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// NewDefaultStore creates a store at the default path
func NewDefaultStore() (*Store, error) {
	path, err := DefaultStorePath()
	if err != nil {
		return nil, err
	}
	return NewStore(path), nil
}

type sessionFile struct {
	Token string `json:"token"`
}

// Load returns the stored token, or "" when none is stored. A missing
// or unreadable file is anonymous, not an error: the backend is the
// sole authority on token validity anyway.
func (s *Store) Load() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return ""
	}
	return f.Token
}

// Save writes the token with owner-only permissions
func (s *Store) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(sessionFile{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

// Clear removes the stored token. Clearing an empty store is a no-op.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
