package domain

import (
	"errors"
	"time"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("access forbidden")
)

// Post is a blog entry owned by exactly one user for its whole lifetime.
type Post struct {
	ID             int64     `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username,omitempty"`
	Created        time.Time `json:"created"`
}

// OwnedBy reports whether u is the author of p.
func (p *Post) OwnedBy(u *User) bool {
	return u != nil && p.AuthorID == u.ID
}
