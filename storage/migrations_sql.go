package storage

var sqliteMigrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS flashgo_schema_version (
			num INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS flashgo_fact (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid           TEXT    NOT NULL UNIQUE,
			position       INTEGER NOT NULL,
			term           TEXT    NOT NULL,
			definition     TEXT    NOT NULL,
			streak         INTEGER NOT NULL DEFAULT 0,
			penalties      INTEGER NOT NULL DEFAULT 0,
			reviews        INTEGER NOT NULL DEFAULT 0,
			due_ns         INTEGER,
			last_review_ns INTEGER,
			created_ns     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flashgo_fact_position ON flashgo_fact(position)`,
	},
}

var postgresMigrations = map[int][]string{
	1: {
		`CREATE TABLE IF NOT EXISTS flashgo_schema_version (
			num INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS flashgo_fact (
			id             BIGSERIAL PRIMARY KEY,
			uuid           TEXT    NOT NULL UNIQUE,
			position       INTEGER NOT NULL,
			term           TEXT    NOT NULL,
			definition     TEXT    NOT NULL,
			streak         INTEGER NOT NULL DEFAULT 0,
			penalties      INTEGER NOT NULL DEFAULT 0,
			reviews        INTEGER NOT NULL DEFAULT 0,
			due_ns         BIGINT,
			last_review_ns BIGINT,
			created_ns     BIGINT  NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_flashgo_fact_position ON flashgo_fact(position)`,
	},
}

const sqlSchemaVersion = 1
