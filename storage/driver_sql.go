package storage

import (
	"context"
	"database/sql"
	"fmt"
)

type SQLDriver struct {
	a       *SQLAdapter
	dialect string
}

func newSQLDriver(dialect string) driverFactory {
	return func(adapter Adapter) (Driver, error) {
		a, ok := adapter.(*SQLAdapter)
		if !ok {
			return nil, fmt.Errorf("sql driver expects *SQLAdapter, got %T", adapter)
		}
		return &SQLDriver{a: a, dialect: dialect}, nil
	}
}

func (d *SQLDriver) Dialect() string { return d.dialect }

func (d *SQLDriver) Migrate(ctx context.Context) error {
	if d.a == nil || d.a.DB == nil {
		return nil
	}

	var migrations map[int][]string
	switch d.dialect {
	case DialectSQLite:
		migrations = sqliteMigrations
	case DialectPostgres:
		migrations = postgresMigrations
	default:
		return fmt.Errorf("unsupported SQL dialect: %s", d.dialect)
	}

	currentVersion := d.getSchemaVersion(ctx)
	if currentVersion >= sqlSchemaVersion {
		return nil
	}

	tx, err := d.a.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for v := currentVersion + 1; v <= sqlSchemaVersion; v++ {
		ops, ok := migrations[v]
		if !ok {
			continue
		}

		for _, op := range ops {
			if _, err := tx.ExecContext(ctx, op); err != nil {
				return fmt.Errorf("migration %d failed: %w", v, err)
			}
		}

		var updateSQL string
		if currentVersion == 0 {
			updateSQL = "INSERT INTO flashgo_schema_version (num) VALUES (" + d.placeholder(1) + ")"
		} else {
			updateSQL = "UPDATE flashgo_schema_version SET num = " + d.placeholder(1)
		}
		if _, err := tx.ExecContext(ctx, updateSQL, v); err != nil {
			return err
		}
		currentVersion = v
	}

	return tx.Commit()
}

func (d *SQLDriver) getSchemaVersion(ctx context.Context) int {
	var version sql.NullInt64
	err := d.a.DB.QueryRowContext(ctx, "SELECT num FROM flashgo_schema_version LIMIT 1").Scan(&version)
	if err != nil || !version.Valid {
		return 0
	}
	return int(version.Int64)
}

func (d *SQLDriver) placeholder(n int) string {
	if d.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d *SQLDriver) db() *sql.DB { return d.a.DB }
