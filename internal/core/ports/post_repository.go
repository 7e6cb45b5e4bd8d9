package ports

import (
	"context"

	"github.com/quillpost/blog/internal/core/domain"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	// List returns every post joined with its author's username, newest first.
	List(ctx context.Context) ([]*domain.Post, error)
	Create(ctx context.Context, p *domain.Post) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Post, error)
	Update(ctx context.Context, id int64, title, body string) error
	Delete(ctx context.Context, id int64) error
}
