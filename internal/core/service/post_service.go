package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillpost/blog/internal/core/domain"
	"github.com/quillpost/blog/internal/core/ports"
)

type PostService struct {
	repo   ports.PostRepository
	now    func() time.Time
	logger zerolog.Logger
}

func NewPostService(repo ports.PostRepository, logger zerolog.Logger) *PostService {
	return &PostService{repo: repo, now: time.Now, logger: logger}
}

// List returns all posts, newest first. No authentication is needed.
func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	return s.repo.List(ctx)
}

func (s *PostService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	return s.repo.FindByID(ctx, id)
}

// FetchForEdit loads a post for mutation by requester. Non-owners get
// domain.ErrForbidden; the post's existence is not hidden from them.
func (s *PostService) FetchForEdit(ctx context.Context, id int64, requester *domain.User) (*domain.Post, error) {
	return RequireAuth[*domain.Post](func(ctx context.Context, u *domain.User) (*domain.Post, error) {
		return s.fetchForEdit(ctx, id, u)
	})(ctx, requester)
}

func (s *PostService) fetchForEdit(ctx context.Context, id int64, u *domain.User) (*domain.Post, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.OwnedBy(u) {
		s.logger.Warn().Int64("post_id", id).Int64("user_id", u.ID).Msg("mutation by non-owner denied")
		return nil, domain.ErrForbidden
	}
	return p, nil
}

func (s *PostService) Create(ctx context.Context, requester *domain.User, title, body string) (int64, error) {
	return RequireAuth[int64](func(ctx context.Context, u *domain.User) (int64, error) {
		title, body, err := normalizePost(title, body)
		if err != nil {
			return 0, err
		}

		id, err := s.repo.Create(ctx, &domain.Post{
			Title:    title,
			Body:     body,
			AuthorID: u.ID,
			Created:  s.now().UTC(),
		})
		if err != nil {
			s.logger.Error().Err(err).Int64("user_id", u.ID).Msg("failed to create post")
			return 0, err
		}

		s.logger.Info().Int64("post_id", id).Int64("user_id", u.ID).Msg("post created")
		return id, nil
	})(ctx, requester)
}

func (s *PostService) Update(ctx context.Context, requester *domain.User, id int64, title, body string) error {
	_, err := RequireAuth[struct{}](func(ctx context.Context, u *domain.User) (struct{}, error) {
		if _, err := s.fetchForEdit(ctx, id, u); err != nil {
			return struct{}{}, err
		}
		title, body, err := normalizePost(title, body)
		if err != nil {
			return struct{}{}, err
		}
		if err := s.repo.Update(ctx, id, title, body); err != nil {
			return struct{}{}, err
		}

		s.logger.Info().Int64("post_id", id).Int64("user_id", u.ID).Msg("post updated")
		return struct{}{}, nil
	})(ctx, requester)
	return err
}

func (s *PostService) Delete(ctx context.Context, requester *domain.User, id int64) error {
	_, err := RequireAuth[struct{}](func(ctx context.Context, u *domain.User) (struct{}, error) {
		if _, err := s.fetchForEdit(ctx, id, u); err != nil {
			return struct{}{}, err
		}
		if err := s.repo.Delete(ctx, id); err != nil {
			return struct{}{}, err
		}

		s.logger.Info().Int64("post_id", id).Int64("user_id", u.ID).Msg("post deleted")
		return struct{}{}, nil
	})(ctx, requester)
	return err
}

// normalizePost trims both fields and rejects an empty title. The body may be empty.
func normalizePost(title, body string) (string, string, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return "", "", fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return title, body, nil
}
