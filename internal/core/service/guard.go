package service

import (
	"context"

	"github.com/quillpost/blog/internal/core/domain"
)

// Operation is a use case executed on behalf of the requesting user.
type Operation[T any] func(ctx context.Context, user *domain.User) (T, error)

// RequireAuth wraps op so that it only runs for an authenticated user.
// An anonymous (nil) user gets domain.ErrAuthRequired and op is never invoked.
func RequireAuth[T any](op Operation[T]) Operation[T] {
	return func(ctx context.Context, user *domain.User) (T, error) {
		if user == nil {
			var zero T
			return zero, domain.ErrAuthRequired
		}
		return op(ctx, user)
	}
}
