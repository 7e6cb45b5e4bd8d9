package ports

import (
	"context"

	"github.com/quillpost/blog/internal/core/domain"
)

// PostService defines the post use cases. Mutations take the requester
// resolved for the current request; a nil requester is anonymous.
type PostService interface {
	List(ctx context.Context) ([]*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	FetchForEdit(ctx context.Context, id int64, requester *domain.User) (*domain.Post, error)
	Create(ctx context.Context, requester *domain.User, title, body string) (int64, error)
	Update(ctx context.Context, requester *domain.User, id int64, title, body string) error
	Delete(ctx context.Context, requester *domain.User, id int64) error
}
