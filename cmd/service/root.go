package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"library-service/internal/config"
	"library-service/internal/history"
	"library-service/internal/likes"
	"library-service/internal/logging"
	"library-service/internal/playlist"
	"library-service/internal/storage"
	"library-service/internal/video"
)

// migrations are applied in dependency order: videos first, everything else
// references them.
var migrations = []storage.Migration{
	video.AutoMigrate,
	playlist.AutoMigrate,
	history.AutoMigrate,
	likes.AutoMigrate,
}

func newRootCommand() *cobra.Command {
	var configFlag string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(configFlag)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup(configFlag)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg, log)
		},
	}

	rootCmd := &cobra.Command{
		Use:           "library-service",
		Short:         "Video library, playlists, history and likes",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serveCmd.RunE,
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (TOML)")
	rootCmd.AddCommand(serveCmd, migrateCmd)

	return rootCmd
}

func setup(configPath string) (config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

func migrate(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	pool, err := storage.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("library-service: postgres: %w", err)
	}
	defer pool.Close()

	if err := storage.Migrate(ctx, pool, migrations...); err != nil {
		return err
	}
	log.Info("library-service: schema up to date")
	return nil
}
