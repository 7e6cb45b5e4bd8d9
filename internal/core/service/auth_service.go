package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillpost/blog/internal/core/domain"
	"github.com/quillpost/blog/internal/core/ports"
)

// AuthService implements registration and credential verification.
type AuthService struct {
	repo      ports.UserRepository
	hashCost  int
	dummyHash []byte
	logger    zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, hashCost int, logger zerolog.Logger) (*AuthService, error) {
	hashCost = clampCost(hashCost)

	// Compared against when the username is unknown so that both login
	// failures spend the same bcrypt time.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), hashCost)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}
	return &AuthService{repo: repo, hashCost: hashCost, dummyHash: dummy, logger: logger}, nil
}

// clampCost maps a configured bcrypt cost into the range bcrypt accepts.
func clampCost(cost int) int {
	switch {
	case cost <= 0:
		return bcrypt.DefaultCost
	case cost < bcrypt.MinCost:
		return bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		return bcrypt.MaxCost
	}
	return cost
}

// Register stores a new user with a bcrypt hash of the trimmed password and
// returns the new user's id.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" {
		return 0, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if password == "" {
		return 0, fmt.Errorf("%w: password is required", domain.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, fmt.Errorf("%w: password is too long", domain.ErrValidation)
		}
		return 0, fmt.Errorf("hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateUser) {
			return 0, fmt.Errorf("%w: %s", domain.ErrDuplicateUser, username)
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to create user")
		return 0, err
	}

	s.logger.Info().Int64("user_id", id).Str("username", username).Msg("user registered")
	return id, nil
}

// Verify checks a username/password pair and returns the matching user.
func (s *AuthService) Verify(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			s.logger.Debug().Str("username", username).Msg("login for unknown user")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Debug().Int64("user_id", user.ID).Msg("login with wrong password")
		return nil, domain.ErrInvalidPassword
	}
	return user, nil
}

// FindByID resolves a session-bound user id.
func (s *AuthService) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}
