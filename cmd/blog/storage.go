package main

import (
	"context"
	"fmt"

	"github.com/quillpost/blog/internal/core/ports"
	"github.com/quillpost/blog/internal/infrastructure/config"
	"github.com/quillpost/blog/internal/infrastructure/db/mongo"
	"github.com/quillpost/blog/internal/infrastructure/db/sqldb"
	"github.com/quillpost/blog/internal/infrastructure/http/handlers"
)

// storage bundles the repositories of the configured backend with its
// lifecycle hooks.
type storage struct {
	users ports.UserRepository
	posts ports.PostRepository
	check handlers.Check
	reset func(ctx context.Context) error
	close func(ctx context.Context) error
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &storage{
			users: mongo.NewUserRepository(db),
			posts: mongo.NewPostRepository(db),
			check: handlers.Check{Name: "mongodb", Ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			}},
			reset: func(ctx context.Context) error { return mongo.Reset(ctx, db) },
			close: client.Disconnect,
		}, nil

	case config.StoreSQLite, config.StorePostgres:
		db, err := sqldb.Open(ctx, sqldb.Config{Driver: cfg.StoreDriver, DSN: cfg.SQL.DSN})
		if err != nil {
			return nil, err
		}
		if err := sqldb.Migrate(ctx, db); err != nil {
			_ = sqldb.Close(db)
			return nil, err
		}
		return &storage{
			users: sqldb.NewUserRepository(db),
			posts: sqldb.NewPostRepository(db),
			check: handlers.Check{Name: cfg.StoreDriver, Ping: func(ctx context.Context) error {
				return sqldb.Ping(ctx, db)
			}},
			reset: func(ctx context.Context) error { return sqldb.Reset(ctx, db) },
			close: func(context.Context) error { return sqldb.Close(db) },
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}
