// Package tui is the interactive dashboard: today, tasks, habits, inbox and the
// weekly review, with every toggle applied optimistically.
package tui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"protanni/internal/api"
	"protanni/internal/config"
	"protanni/internal/metrics"
	"protanni/internal/mutate"
	"protanni/internal/viewstate"

	tea "github.com/charmbracelet/bubbletea"
)

const logFileName = "protanni.log"

// Run starts the dashboard and blocks until the user quits or ctx ends.
func Run(ctx context.Context, cfg *config.Config) error {
	applyColorProfilePreference()
	applyThemePreference()

	logger, closeLog := openLog(cfg)
	defer closeLog()

	st, err := viewstate.Load()
	if err != nil {
		logger.Warn("load view state", "err", err)
		st = viewstate.Default()
	}
	view := &atomic.Pointer[viewstate.State]{}
	view.Store(st)

	reg := metrics.New(false)
	lists := mutate.NewLists(api.New(cfg.Server, cfg.Token), mutate.Options{
		Logger:   logger,
		Observer: reg,
		Timezone: cfg.Timezone,
		View:     func() viewstate.State { return *view.Load() },
	})
	defer lists.Close()

	m := newAppModel(ctx, lists, view, modelOpts{
		Save:    viewstate.Save,
		Metrics: reg,
		Logger:  logger,
	})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// openLog sends logs to a file next to the config; the terminal belongs to the
// dashboard.
func openLog(cfg *config.Config) (*slog.Logger, func()) {
	discard := func() {}
	dir, err := config.Dir()
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), discard
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), discard
	}
	f, err := os.OpenFile(filepath.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), discard
	}
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	return slog.New(slog.NewTextHandler(f, opts)), func() { _ = f.Close() }
}
