package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

const (
	BackendCookie = "cookie"
	BackendJWT    = "jwt"
	BackendRedis  = "redis"
)

// StoreConfig selects and configures the session backend.
type StoreConfig struct {
	Backend string
	Secret  string
	TTL     time.Duration
	Secure  bool
}

func (c StoreConfig) cookieOptions() sessions.Options {
	return sessions.Options{
		Path:     "/",
		MaxAge:   int(c.TTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewStore builds the configured store. rdb is only used by the redis backend.
func NewStore(cfg StoreConfig, rdb *redis.Client) (sessions.Store, error) {
	opts := cfg.cookieOptions()

	switch cfg.Backend {
	case BackendCookie:
		if cfg.Secret == "" {
			return nil, errors.New("session: cookie backend requires a secret")
		}
		store := sessions.NewCookieStore([]byte(cfg.Secret))
		store.Options = &opts
		store.MaxAge(opts.MaxAge)
		return store, nil
	case BackendJWT:
		if cfg.Secret == "" {
			return nil, errors.New("session: jwt backend requires a secret")
		}
		return NewJWTStore(cfg.Secret, opts), nil
	case BackendRedis:
		if rdb == nil {
			return nil, errors.New("session: redis backend requires a client")
		}
		return NewRedisStore(rdb, opts), nil
	default:
		return nil, fmt.Errorf("session: unknown backend %q", cfg.Backend)
	}
}
