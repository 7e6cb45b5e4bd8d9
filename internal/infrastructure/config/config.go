package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo    = "mongo"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"

	SessionCookie = "cookie"
	SessionJWT    = "jwt"
	SessionRedis  = "redis"
)

type Config struct {
	Port        string `env:"PORT,         default=8080"`
	Env         string `env:"ENV,          default=development"`
	LogLevel    string `env:"LOG_LEVEL,    default=info"`
	StoreDriver string `env:"STORE_DRIVER, default=sqlite"`

	Session SessionConfig
	Mongo   MongoConfig
	SQL     SQLConfig
	Redis   RedisConfig
}

type SessionConfig struct {
	Backend      string        `env:"SESSION_BACKEND, default=cookie"`
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL,     default=24h"`
	CookieSecure bool          `env:"COOKIE_SECURE,   default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=blog"`
}

type SQLConfig struct {
	DSN string `env:"SQL_DSN, default=blog.sqlite"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UsesRedis reports whether a Redis connection is needed at runtime.
func (c *Config) UsesRedis() bool {
	return c.Session.Backend == SessionRedis
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreMongo, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.Session.Backend {
	case SessionCookie, SessionJWT, SessionRedis:
	default:
		return fmt.Errorf("config: unknown SESSION_BACKEND %q", c.Session.Backend)
	}
	if c.Session.Secret == "" && c.Session.Backend != SessionRedis {
		return fmt.Errorf("config: SESSION_SECRET is required for the %s session backend", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	return nil
}
