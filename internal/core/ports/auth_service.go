package ports

import (
	"context"

	"github.com/quillpost/blog/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Verify(ctx context.Context, username, password string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}
