package main

import (
	"github.com/spf13/cobra"

	"github.com/quillpost/blog/internal/infrastructure/config"
	"github.com/quillpost/blog/pkg/logger"
)

func initDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init-db",
		Short: "Clear the existing data and create new tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			log := logger.Init(logger.OptionsFor(cfg.Env, cfg.LogLevel))

			store, err := openStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.close(ctx) }()

			if err := store.reset(ctx); err != nil {
				return err
			}

			log.Info().Str("driver", cfg.StoreDriver).Msg("initialized the database")
			return nil
		},
	}
}
