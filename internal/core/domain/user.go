package domain

import (
	"errors"
	"time"
)

var (
	ErrDuplicateUser   = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrAuthRequired    = errors.New("authentication required")
)

// User models a registered author. Users are immutable once created.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
