package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

type SQLAdapter struct {
	DB      *sql.DB
	dialect string
}

func (a *SQLAdapter) Dialect() string { return a.dialect }

func isSQLDB(conn any) bool {
	_, ok := conn.(*sql.DB)
	return ok
}

func newSQLAdapter(conn any) (Adapter, error) {
	db := conn.(*sql.DB)
	// best-effort dialect detection
	driver := db.Driver()
	name := strings.ToLower(fmt.Sprintf("%T", driver))
	dialect := DialectPostgres
	switch {
	case strings.Contains(name, "sqlite"):
		dialect = DialectSQLite
	case strings.Contains(name, "pgx"), strings.Contains(name, "postgres"), strings.Contains(name, "stdlib"):
		dialect = DialectPostgres
	}
	return &SQLAdapter{DB: db, dialect: dialect}, nil
}
