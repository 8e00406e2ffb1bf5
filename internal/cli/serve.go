package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"protanni/internal/config"
	"protanni/internal/metrics"
	"protanni/internal/server"
	"protanni/internal/session"
	"protanni/internal/store"

	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if addr != "" {
				cfg.Addr = addr
			}
			log := newLogger(cfg, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := openDB(ctx, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer db.Close()

			backend, closeBackend, err := sessionBackend(cfg, db)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer closeBackend()

			s := server.New(server.Options{
				DB:      db,
				Auth:    session.NewManager(backend, session.DefaultTTL),
				Logger:  log,
				Metrics: metrics.New(true),
			})
			log.Info("starting api", "driver", db.Driver(), "redis", cfg.RedisURL != "")
			if err := s.ListenAndServe(ctx, cfg.Addr); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8787)")
	return cmd
}

func openDB(ctx context.Context, cfg *config.Config) (*store.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	if cfg.DBDriver == store.DriverSQLite && cfg.DBDSN == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}
	db, err := store.Open(ctx, cfg.DBDriver, dsn, store.Options{})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}

// sessionBackend prefers Redis when configured and falls back to the
// database.
func sessionBackend(cfg *config.Config, db *store.DB) (session.Backend, func(), error) {
	if cfg.RedisURL == "" {
		return db, func() {}, nil
	}
	rs, err := session.NewRedisStore(cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	return rs, func() { _ = rs.Close() }, nil
}
