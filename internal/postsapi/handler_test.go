package postsapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/anoncampus/campusforum/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "posts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	if _, err := s.db.Exec(`INSERT INTO users (id, username) VALUES (1, 'alice'), (2, 'bob')`); err != nil {
		t.Fatal(err)
	}
	_, err := s.db.Exec(`
		INSERT INTO posts (title, content, author_id, created_at) VALUES
		('first',  'oldest post', 1, '2024-01-01 10:00:00'),
		('second', 'middle post', 2, '2024-01-02 10:00:00'),
		('third',  'newest post', 1, '2024-01-03 10:00:00')`)
	if err != nil {
		t.Fatal(err)
	}
}

func TestEmptyStoreReturnsEmptyArray(t *testing.T) {
	h := NewHandler(newTestStore(t))

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestPostsOrderedNewestFirstInCanonicalShape(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)
	h := NewHandler(s)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var posts []model.Post
	if err := json.Unmarshal(rec.Body.Bytes(), &posts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(posts) != 3 {
		t.Fatalf("len = %d", len(posts))
	}
	if posts[0].Title != "third" || posts[2].Title != "first" {
		t.Errorf("order = %q, %q, %q", posts[0].Title, posts[1].Title, posts[2].Title)
	}
	if posts[0].Author.Username != "alice" || posts[1].Author.Username != "bob" {
		t.Errorf("authors = %q, %q", posts[0].Author.Username, posts[1].Author.Username)
	}
}

func TestUnknownRouteIs404PlainText(t *testing.T) {
	h := NewHandler(newTestStore(t))

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/other"},
		{http.MethodGet, "/"},
		{http.MethodPost, "/api/posts"},
		{http.MethodDelete, "/api/posts"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("%s %s: status = %d, want 404", tc.method, tc.path, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
			t.Errorf("%s %s: content type = %q, want text/plain", tc.method, tc.path, ct)
		}
	}
}

type failingStore struct{}

func (failingStore) ListPosts(context.Context) ([]model.Post, error) {
	return nil, errors.New("D1_ERROR: no such table: posts")
}

func TestStorageFailureIs500WithErrorBody(t *testing.T) {
	h := NewHandler(failingStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error == "" {
		t.Error("error message missing from 500 body")
	}
}

func TestClosedStoreSurfacesAs500(t *testing.T) {
	s := newTestStore(t)
	h := NewHandler(s)
	s.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
