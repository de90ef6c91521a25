package config

import (
	"errors"
	"fmt"
	"log/slog"

	"flashgo/schedule"
)

// Validate checks a Config and reports every problem at once.
func Validate(cfg *Config) error {
	var errs []error

	if err := cfg.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("config: %w", err))
	}
	if _, err := schedule.NewPolicy(cfg.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("config: schedule: %w", err))
	}
	if _, err := schedule.NewSelector(cfg.Schedule); err != nil {
		errs = append(errs, fmt.Errorf("config: schedule: %w", err))
	}
	if cfg.Autosave < 0 {
		errs = append(errs, fmt.Errorf("config: autosave must not be negative, got %s", cfg.Autosave))
	}

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("config: log_level %q: %w", cfg.LogLevel, err))
	}

	return errors.Join(errs...)
}
