package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver
)

const (
	defaultBusyTimeout = 5000
	defaultMongoDB     = "flashgo"
	connectTimeout     = 10 * time.Second
)

// Config names a backend and how to reach it.
type Config struct {
	// Dialect is one of sqlite, postgres, mongodb, file, memory.
	Dialect string `yaml:"dialect"`

	// DSN is a file path for sqlite and file, a connection string for
	// postgres, a URI for mongodb. Unused for memory.
	DSN string `yaml:"dsn"`

	// Database is the mongodb database name. Defaults to "flashgo".
	Database string `yaml:"database"`
}

// Validate checks that the dialect is known and has what it needs.
func (c Config) Validate() error {
	switch c.Dialect {
	case DialectMemory:
		return nil
	case DialectSQLite, DialectPostgres, DialectMongo, DialectFile:
		if strings.TrimSpace(c.DSN) == "" {
			return fmt.Errorf("storage: dialect %s needs a dsn", c.Dialect)
		}
		return nil
	default:
		return fmt.Errorf("storage: unknown dialect %q", c.Dialect)
	}
}

// Open connects to the configured backend, starts a Manager on it and runs
// migrations. The Manager owns the connection; release it with Close.
func Open(ctx context.Context, cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		conn   any
		closer func() error
	)
	switch cfg.Dialect {
	case DialectSQLite:
		db, err := openSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		conn, closer = db, db.Close
	case DialectPostgres:
		db, err := sql.Open("pgx", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("postgres: open: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", err)
		}
		conn, closer = db, db.Close
	case DialectMongo:
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.DSN))
		if err != nil {
			return nil, fmt.Errorf("mongodb: connect: %w", err)
		}
		name := cfg.Database
		if name == "" {
			name = defaultMongoDB
		}
		conn = client.Database(name)
		closer = func() error { return client.Disconnect(context.Background()) }
	case DialectFile:
		conn = FilePath(cfg.DSN)
	case DialectMemory:
		conn = NewMemory()
	}

	m := NewManager()
	if err := m.Start(conn); err != nil {
		if closer != nil {
			_ = closer()
		}
		return nil, err
	}
	if closer != nil {
		m.closer = closerFunc(closer)
	}
	if err := m.Build(ctx); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("%s: migrate: %w", cfg.Dialect, err)
	}
	return m, nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openSQLite opens a database file with WAL mode, a busy timeout, and a
// single connection, since SQLite serialises writes.
func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}
	return db, nil
}
