// Package db provides database initialization and access for SQLite and PostgreSQL.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect selects the SQL placeholder style of a connection.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// String returns the database/sql driver name of the dialect.
func (d Dialect) String() string {
	if d == Postgres {
		return "postgres"
	}
	return "sqlite3"
}

// Rebind rewrites ? placeholders into the dialect's bind style.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DB is an open database together with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// DefaultPath returns the default database path: ~/.config/rb/rentbook.db
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rb", "rentbook.db"), nil
}

// IsPostgresURL reports whether target is a PostgreSQL connection URL.
func IsPostgresURL(target string) bool {
	return strings.HasPrefix(target, "postgres://") || strings.HasPrefix(target, "postgresql://")
}

// OpenTarget opens a PostgreSQL URL or a SQLite file path.
func OpenTarget(target string) (*DB, error) {
	if IsPostgresURL(target) {
		return OpenPostgres(target)
	}
	return Open(target)
}

// Open opens (or creates) a SQLite database at the given path,
// enables WAL mode and foreign keys, and runs migrations.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
	}

	conn, err := sql.Open(SQLite.String(), path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := configure(conn); err != nil {
		return nil, closeOnErr(conn, err)
	}

	d := &DB{DB: conn, Dialect: SQLite}
	if err := migrate(d); err != nil {
		return nil, closeOnErr(conn, fmt.Errorf("running migrations: %w", err))
	}

	return d, nil
}

// OpenPostgres connects to PostgreSQL, verifies the connection and runs migrations.
func OpenPostgres(dsn string) (*DB, error) {
	conn, err := sql.Open(Postgres.String(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		return nil, closeOnErr(conn, fmt.Errorf("pinging database: %w", err))
	}

	d := &DB{DB: conn, Dialect: Postgres}
	if err := migrate(d); err != nil {
		return nil, closeOnErr(conn, fmt.Errorf("running migrations: %w", err))
	}

	return d, nil
}

// configure sets SQLite pragmas for WAL mode and foreign keys.
func configure(conn *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	}

	for _, p := range pragmas {
		if _, err := conn.Exec(p); err != nil {
			return fmt.Errorf("executing %s: %w", p, err)
		}
	}

	return nil
}

func closeOnErr(conn *sql.DB, err error) error {
	if closeErr := conn.Close(); closeErr != nil {
		return fmt.Errorf("%w (also failed to close: %v)", err, closeErr)
	}
	return err
}
