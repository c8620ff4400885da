package main

import (
	"log"
	"net/http"
	"os"

	"github.com/anoncampus/campusforum/internal/postsapi"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8787"
	}

	dbPath := os.Getenv("POSTS_DB")
	if dbPath == "" {
		dbPath = "posts.db"
	}

	store, err := postsapi.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
		}
	}()

	log.Printf("posts endpoint starting on :%s (db %s)", port, dbPath)
	if err := http.ListenAndServe(":"+port, postsapi.NewHandler(store)); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
