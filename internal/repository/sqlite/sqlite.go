// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo (calls C code from Go), which means you need a C
// compiler installed and cross-compilation becomes painful. modernc.org/sqlite
// is a pure Go translation of the SQLite C code — no C compiler needed, works
// everywhere Go works.
//
// This package is also where the atomicity guarantees of the system live.
// The service layer deliberately owns no locks and no multi-step
// transactions; anything that must be atomic (capacity-checked joins,
// create-session-plus-host-attendance, cascade deletes) is pushed down here
// where the database can actually enforce it.
package sqlite

import (
	"database/sql"
	"fmt"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements all repository interfaces.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/boardnomore.db"  → file-based database (persistent)
//   - ":memory:"             → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// SQLite allows a single writer. Limiting the pool to one connection
	// serializes access instead of surfacing SQLITE_BUSY under load, and
	// keeps ":memory:" databases coherent (each new pool connection would
	// otherwise get its own empty in-memory database).
	conn.SetMaxOpenConns(1)

	// Ping verifies the connection actually works. Without this, a bad path
	// or permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is happening.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The session cascade
	// (attendance and comments die with their session) depends on them.
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

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it idempotent.
//
// Schema notes:
//   - sessions has NO status column. Status is derived from the attendee
//     count on every read, so it can never desynchronize from the
//     attendance records.
//   - session_attendees has a composite primary key (session_id, user_id):
//     the database itself rejects duplicate joins.
//   - ON DELETE CASCADE on session_attendees and comments implements the
//     delete-cascade policy for sessions.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS games (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			min_players INTEGER NOT NULL DEFAULT 2,
			max_players INTEGER NOT NULL DEFAULT 4,
			tags        TEXT NOT NULL DEFAULT '[]',
			image       TEXT NOT NULL DEFAULT '',
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_games_name ON games(name);

		CREATE TABLE IF NOT EXISTS users (
			id                  TEXT PRIMARY KEY,
			email               TEXT NOT NULL UNIQUE,
			password_hash       TEXT NOT NULL,
			name                TEXT NOT NULL,
			avatar              TEXT NOT NULL DEFAULT '',
			location            TEXT NOT NULL DEFAULT '',
			bio                 TEXT NOT NULL DEFAULT '',
			rating              REAL NOT NULL DEFAULT 0,
			games_played        INTEGER NOT NULL DEFAULT 0,
			willing_to_host     INTEGER NOT NULL DEFAULT 0,
			max_travel_distance INTEGER NOT NULL DEFAULT 0,
			created_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at          DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS sessions (
			id                 TEXT PRIMARY KEY,
			game_id            TEXT NOT NULL REFERENCES games(id),
			host_id            TEXT NOT NULL REFERENCES users(id),
			description        TEXT NOT NULL DEFAULT '',
			start_time         DATETIME NOT NULL,
			end_time           DATETIME NOT NULL,
			location           TEXT NOT NULL DEFAULT '',
			address            TEXT NOT NULL DEFAULT '',
			capacity           INTEGER NOT NULL CHECK (capacity >= 2),
			skill_level        TEXT NOT NULL DEFAULT 'all-levels',
			materials_provided INTEGER NOT NULL DEFAULT 0,
			created_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_start_time ON sessions(start_time);
		CREATE INDEX IF NOT EXISTS idx_sessions_game_id ON sessions(game_id);
		CREATE INDEX IF NOT EXISTS idx_sessions_host_id ON sessions(host_id);

		CREATE TABLE IF NOT EXISTS session_attendees (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (session_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS comments (
			id                TEXT PRIMARY KEY,
			session_id        TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			user_id           TEXT NOT NULL REFERENCES users(id),
			text              TEXT NOT NULL,
			parent_comment_id TEXT REFERENCES comments(id),
			created_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at        DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_comments_session_id ON comments(session_id);

		CREATE TABLE IF NOT EXISTS user_favorite_games (
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			game_id    TEXT NOT NULL REFERENCES games(id),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (user_id, game_id)
		);

		CREATE TABLE IF NOT EXISTS user_availability (
			user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			day_of_week TEXT NOT NULL,
			time_slot   TEXT NOT NULL,
			PRIMARY KEY (user_id, day_of_week, time_slot)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}

	return nil
}
