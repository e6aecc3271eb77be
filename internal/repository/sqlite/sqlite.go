// Package sqlite implements the repository interfaces on top of SQLite.
//
// The driver is modernc.org/sqlite (pure Go, no cgo), so the binary
// cross-compiles without a C toolchain.
//
// WHY SQLX ON TOP OF database/sql?
// Plain database/sql makes you Scan every column into a variable by hand,
// in the same order as the SELECT list. sqlx keeps the same API (it embeds
// *sql.DB) and adds GetContext/SelectContext, which scan rows straight into
// the model structs through their `db` tags. The SQL itself stays
// hand-written.
//
// ERROR MAPPING:
// Driver errors never leave this package raw. sql.ErrNoRows becomes
// apperror.NotFound, a UNIQUE violation becomes apperror.Conflict, and a
// foreign key violation becomes a NotFound for the referenced game.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/game-store/internal/apperror"
)

func init() {
	// sqlx only knows the bind style of the cgo driver name ("sqlite3").
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// DB wraps the sqlx connection pool. One *DB serves every repository
// interface in package repository.
type DB struct {
	conn *sqlx.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for a throwaway database in tests.
//
// CONNECTION SETUP, STEP BY STEP:
//  1. sqlx.Open only validates arguments; nothing touches the file yet.
//  2. SetMaxOpenConns(1): SQLite allows one writer at a time, so a bigger
//     pool just trades "database is locked" errors for waiting. It also
//     matters for ":memory:", where each connection would otherwise get
//     its own empty database.
//  3. Ping forces the first real connection and surfaces a bad path early.
//  4. WAL journal mode lets readers proceed while a write is in flight.
//  5. foreign_keys=ON is per connection and off by default. Without it the
//     ON DELETE CASCADE from messages to games silently does nothing.
//  6. migrate creates any missing tables. It is idempotent, so it runs on
//     every start.
func New(dbPath string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// migrate creates the schema. Every statement is idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			name        TEXT    NOT NULL,
			price       INTEGER NOT NULL DEFAULT 0,
			description TEXT    NOT NULL DEFAULT '',
			genre       TEXT    NOT NULL DEFAULT '',
			date        TEXT    NOT NULL DEFAULT '',
			platform    TEXT    NOT NULL DEFAULT '',
			author      TEXT    NOT NULL,
			rating      INTEGER NOT NULL DEFAULT 0,
			dir_photo   TEXT    NOT NULL DEFAULT ''
		);
	`)
	if err != nil {
		return fmt.Errorf("creating games table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS news (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			title   TEXT NOT NULL,
			content TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating news table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			name    TEXT    NOT NULL,
			text    TEXT    NOT NULL,
			game_id INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_messages_game_id ON messages(game_id);
	`)
	if err != nil {
		return fmt.Errorf("creating messages table: %w", err)
	}

	return nil
}

// checkAffected turns a zero-row UPDATE/DELETE into a NotFound error.
func checkAffected(result sql.Result, resource string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound(resource, id)
	}
	return nil
}

// constraintCode returns the extended SQLite result code of err, or 0 when
// err did not come from the driver.
func constraintCode(err error) int {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()
	}
	return 0
}

func isUniqueViolation(err error) bool {
	return constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func isForeignKeyViolation(err error) bool {
	return constraintCode(err) == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY
}
