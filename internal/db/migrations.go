package db

import (
	"fmt"
)

// sqliteMigrations is an ordered list of SQL statements to run on SQLite.
// Amounts are TEXT so decimal values round-trip exactly.
var sqliteMigrations = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id              TEXT     PRIMARY KEY,
		apartment_name  TEXT     NOT NULL DEFAULT '',
		house_number    TEXT     NOT NULL DEFAULT '',
		tenant_name     TEXT     NOT NULL DEFAULT '',
		phone_number    TEXT     NOT NULL DEFAULT '',
		rent_amount     TEXT     NOT NULL DEFAULT '0',
		debt            TEXT     NOT NULL DEFAULT '0',
		is_paid         INTEGER  NOT NULL DEFAULT 0,
		payment_history TEXT     NOT NULL DEFAULT '[]',
		created_at      DATETIME NOT NULL,
		updated_at      DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           INTEGER  PRIMARY KEY AUTOINCREMENT,
		name         TEXT     NOT NULL,
		key_prefix   TEXT     NOT NULL,
		key_hash     TEXT     NOT NULL UNIQUE,
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_used_at DATETIME
	)`,
}

// postgresMigrations mirrors sqliteMigrations for PostgreSQL.
var postgresMigrations = []string{
	`CREATE TABLE IF NOT EXISTS properties (
		id              TEXT        PRIMARY KEY,
		apartment_name  TEXT        NOT NULL DEFAULT '',
		house_number    TEXT        NOT NULL DEFAULT '',
		tenant_name     TEXT        NOT NULL DEFAULT '',
		phone_number    TEXT        NOT NULL DEFAULT '',
		rent_amount     NUMERIC     NOT NULL DEFAULT 0,
		debt            NUMERIC     NOT NULL DEFAULT 0,
		is_paid         BOOLEAN     NOT NULL DEFAULT FALSE,
		payment_history TEXT        NOT NULL DEFAULT '[]',
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS api_keys (
		id           BIGSERIAL   PRIMARY KEY,
		name         TEXT        NOT NULL,
		key_prefix   TEXT        NOT NULL,
		key_hash     TEXT        NOT NULL UNIQUE,
		created_at   TIMESTAMPTZ DEFAULT NOW(),
		last_used_at TIMESTAMPTZ
	)`,
}

// migrate runs all migrations for the connection's dialect in order.
func migrate(d *DB) error {
	migrations := sqliteMigrations
	if d.Dialect == Postgres {
		migrations = postgresMigrations
	}

	for i, m := range migrations {
		if _, err := d.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	if d.Dialect == SQLite {
		if err := addColumnIfNotExists(d, "api_keys", "email", "TEXT NOT NULL DEFAULT ''"); err != nil {
			return fmt.Errorf("adding api_keys.email: %w", err)
		}
		return nil
	}

	if _, err := d.Exec(`ALTER TABLE api_keys ADD COLUMN IF NOT EXISTS email TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("adding api_keys.email: %w", err)
	}
	return nil
}

// addColumnIfNotExists adds a column to a SQLite table if it doesn't already exist.
func addColumnIfNotExists(d *DB, table, column, definition string) error {
	rows, err := d.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("checking table info: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	found := false
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scanning column info: %w", err)
		}
		if name == column {
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating columns: %w", err)
	}
	if found {
		return nil
	}

	_, err = d.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}
