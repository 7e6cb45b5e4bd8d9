package ports

import (
	"context"

	"github.com/quillpost/blog/internal/core/domain"
)

// UserRepository defines the credential store persistence.
// Create must report domain.ErrDuplicateUser from the storage unique constraint.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (int64, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
