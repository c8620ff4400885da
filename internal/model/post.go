package model

import "time"

// Author is the public slice of a post's author. Posts are anonymous
// toward other students, so only the username is ever exposed.
type Author struct {
	Username string `json:"username"`
}

// Post is a forum post in its canonical wire shape. Every producer
// (the REST backend and the standalone posts endpoint) emits this
// shape; ordering is always created_at descending.
type Post struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Author    Author    `json:"author"`
}
