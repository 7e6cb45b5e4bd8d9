package sqldb

import (
	"time"

	"github.com/quillpost/blog/internal/core/domain"
)

type userRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

type postRecord struct {
	ID       int64      `gorm:"primaryKey;autoIncrement"`
	Title    string     `gorm:"not null"`
	Body     string     `gorm:"not null"`
	AuthorID int64      `gorm:"not null;index"`
	Author   userRecord `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Created  time.Time  `gorm:"not null;index"`
}

func (postRecord) TableName() string { return "posts" }

// postRow is a post joined with its author's username.
type postRow struct {
	ID             int64
	Title          string
	Body           string
	AuthorID       int64
	AuthorUsername string
	Created        time.Time
}

func (r postRow) toDomain() *domain.Post {
	return &domain.Post{
		ID:             r.ID,
		Title:          r.Title,
		Body:           r.Body,
		AuthorID:       r.AuthorID,
		AuthorUsername: r.AuthorUsername,
		Created:        r.Created.UTC(),
	}
}
