// Package config handles YAML configuration loading, environment variable
// expansion, and validation for the flashgo host.
package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"flashgo/schedule"
	"flashgo/storage"
)

const (
	DefaultAutosave = 30 * time.Second
	DefaultLogLevel = "warn"
)

// Config is the top-level host configuration.
type Config struct {
	// Storage picks the backend the deck is loaded from and saved to.
	Storage storage.Config `yaml:"storage"`

	// Schedule picks the policy and selector.
	Schedule schedule.Config `yaml:"schedule"`

	// Autosave is the save cadence during review. Zero disables it.
	Autosave time.Duration `yaml:"autosave"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when no file is given, seeded
// from FLASHGO_* environment variables.
func Default() *Config {
	c := &Config{
		Storage: storage.Config{
			Dialect:  envOr("FLASHGO_DIALECT", storage.DialectSQLite),
			DSN:      envOr("FLASHGO_DSN", defaultDSN()),
			Database: os.Getenv("FLASHGO_DATABASE"),
		},
		Schedule: schedule.Config{
			Policy:   os.Getenv("FLASHGO_POLICY"),
			Selector: os.Getenv("FLASHGO_SELECTOR"),
		},
		Autosave: DefaultAutosave,
		LogLevel: envOr("FLASHGO_LOG_LEVEL", DefaultLogLevel),
	}
	if seed, err := strconv.ParseInt(os.Getenv("FLASHGO_SEED"), 10, 64); err == nil {
		c.Schedule.Seed = seed
	}
	if d, err := time.ParseDuration(os.Getenv("FLASHGO_AUTOSAVE")); err == nil {
		c.Autosave = d
	}
	return c
}

// Level returns the slog level named by LogLevel, or warn when it does
// not parse.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return lvl
}

func defaultDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "flashgo.db"
	}
	return filepath.Join(home, ".flashgo", "flashgo.db")
}

func envOr(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}
