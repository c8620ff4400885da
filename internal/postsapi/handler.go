package postsapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/anoncampus/campusforum/internal/logger"
	"github.com/anoncampus/campusforum/internal/model"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// PostLister is the read path the handler needs from storage
type PostLister interface {
	ListPosts(ctx context.Context) ([]model.Post, error)
}

// NewHandler builds the router for the standalone posts endpoint.
// One route, no state between requests: GET /api/posts returns the
// whole feed newest first. Storage failures become a 500 with a JSON
// {error} body; every unmatched path or method is a plain-text 404.
func NewHandler(store PostLister) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/posts", func(w http.ResponseWriter, req *http.Request) {
		posts, err := store.ListPosts(req.Context())
		if err != nil {
			logger.Error("posts query failed", logger.F("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, posts)
	})

	notFound := func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found."))
	}
	r.NotFound(notFound)
	r.MethodNotAllowed(notFound)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", logger.F("error", err))
	}
}
