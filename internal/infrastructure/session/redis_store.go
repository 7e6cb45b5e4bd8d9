package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

var errBadPayload = errors.New("session payload undecodable")

const (
	redisKeyPrefix = "session:"
	redisTimeout   = 5 * time.Second
)

// RedisStore is a gorilla sessions.Store that keeps the session payload in
// Redis and only an opaque uuid in the cookie.
// Key format: session:<uuid>
type RedisStore struct {
	client  *redis.Client
	Options *sessions.Options
}

// NewRedisStore creates a store whose records expire after the cookie MaxAge.
func NewRedisStore(client *redis.Client, opts sessions.Options) *RedisStore {
	return &RedisStore{client: client, Options: &opts}
}

// sessionPayload is the JSON document stored per session.
type sessionPayload struct {
	UserID int64 `json:"user_id,omitempty"`
}

// Get returns the session cached in the request registry, loading it on first use.
func (s *RedisStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the cookie. A missing, expired or
// undecodable record yields a fresh session; only a failing Redis call is
// reported, wrapped in ErrUnavailable.
func (s *RedisStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	c, err := r.Cookie(name)
	if err != nil || c.Value == "" {
		return session, nil
	}

	payload, err := s.load(r.Context(), c.Value)
	switch {
	case err == nil:
	case errors.Is(err, redis.Nil), errors.Is(err, errBadPayload):
		return session, nil
	default:
		return session, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	session.ID = c.Value
	session.IsNew = false
	if payload.UserID != 0 {
		session.Values[UserIDKey] = payload.UserID
	}
	return session, nil
}

// Save persists the session and writes the cookie. A negative MaxAge deletes it.
func (s *RedisStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.Revoke(r.Context(), session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	var payload sessionPayload
	if id, ok := session.Values[UserIDKey].(int64); ok {
		payload.UserID = id
	}
	if err := s.store(r.Context(), session.ID, payload, time.Duration(session.Options.MaxAge)*time.Second); err != nil {
		return err
	}

	http.SetCookie(w, sessions.NewCookie(session.Name(), session.ID, session.Options))
	return nil
}

// Revoke deletes a server-side session record.
func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	if err := s.client.Del(ctx, redisKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (sessionPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	var p sessionPayload
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %w", errBadPayload, err)
	}
	return p, nil
}

func (s *RedisStore) store(ctx context.Context, id string, p sessionPayload, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+id, raw, ttl).Err(); err != nil {
		return fmt.Errorf("session store: %w", err)
	}
	return nil
}
