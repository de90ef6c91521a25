package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"flashgo/config"
	"flashgo/deck"
	"flashgo/storage"
)

// app is one controller bound to the configured backend for the life of a
// command.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	deck   *deck.Deck
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = os.Getenv("FLASHGO_CONFIG")
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if dialect, _ := cmd.Flags().GetString("dialect"); dialect != "" {
		cfg.Storage.Dialect = dialect
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.Storage.DSN = dsn
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp loads the configuration, connects storage and hydrates the deck.
func openApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: cfg.Level(),
	}))

	ctx := cmd.Context()
	mgr, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Dialect, err)
	}

	d, err := deck.New(
		deck.WithStorage(deck.NewManagedStorage(mgr)),
		deck.WithScheduleConfig(cfg.Schedule),
		deck.WithLogger(logger),
	)
	if err != nil {
		_ = mgr.Close()
		return nil, err
	}
	if err := d.Load(ctx); err != nil {
		_ = d.Shutdown()
		return nil, err
	}

	logger.Info("deck loaded", "dialect", cfg.Storage.Dialect, "facts", d.Len())
	return &app{cfg: cfg, logger: logger, deck: d}, nil
}

// close saves when asked to and always shuts the deck down.
func (a *app) close(ctx context.Context, save bool) error {
	var saveErr error
	if save {
		saveErr = a.deck.Save(ctx)
	}
	return errors.Join(saveErr, a.deck.Shutdown())
}

// withApp runs fn against an open app and closes it afterwards, saving
// when fn reports a change.
func withApp(cmd *cobra.Command, fn func(a *app) (changed bool, err error)) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	changed, err := fn(a)
	return errors.Join(err, a.close(cmd.Context(), err == nil && changed))
}
