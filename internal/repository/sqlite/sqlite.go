// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside your Go binary as a single file.
// No separate database server to install, configure, or manage. For a question table
// that fits comfortably in memory this is all the store we need, and ":memory:" gives
// every test its own fresh database.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go translation
// of the SQLite C code.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	// BLANK IMPORT:
	// The sqlite package's init() registers itself with database/sql as a driver
	// named "sqlite". After this import, sql.Open("sqlite", ...) works.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements both QuestionRepository and
// AdminRepository.
type DB struct {
	conn *sql.DB
}

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/chatbot.db"  → file-based database (persistent)
//   - ":memory:"         → in-memory database (tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection. With more than one pooled
	// connection each one would see its own empty schema, so pin the pool to a
	// single connection. SQLite serializes writers anyway.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	// Ping verifies the connection actually works. Without this, a bad path or
	// permissions issue would only surface on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// dsn appends the connection pragmas to dbPath.
//
// PRAGMAS ARE PER CONNECTION:
// database/sql opens connections lazily and keeps several, so a one-off
// conn.Exec("PRAGMA foreign_keys=ON") only reaches whichever connection ran it.
// modernc.org/sqlite runs every _pragma query parameter on each new connection,
// so foreign keys are enforced and busy writers wait no matter which pooled
// connection serves the query. WAL is skipped for ":memory:", which has no file
// to journal.
func dsn(dbPath string) string {
	pragmas := []string{"foreign_keys(1)", "busy_timeout(5000)"}
	if dbPath != ":memory:" {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}

	sep := "?"
	if strings.Contains(dbPath, "?") {
		sep = "&"
	}
	return dbPath + sep + url.Values{"_pragma": pragmas}.Encode()
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// foldKey is the case-insensitive match key stored next to question_text.
//
// WHY NOT "COLLATE NOCASE" OR lower()?
// SQLite only folds ASCII letters, so "ÉTÉ" and "été" would not match.
//
// WHY cases.Lower AND NOT cases.Fold?
// Full case folding also rewrites letters that differ by more than case
// ("ß" → "ss"), which would make "STRASSE" match "straße". Matching ignores case
// and nothing else, so the key is the language-neutral lowercase form.
// A Caser keeps internal state, so we never share one between goroutines.
func (db *DB) foldKey(text string) string {
	return cases.Lower(language.Und).String(text)
}

// migrate runs all database migrations. CREATE ... IF NOT EXISTS makes it idempotent.
//
// AUTOINCREMENT guarantees ids are never reused, even after the newest row is
// deleted. Plain INTEGER PRIMARY KEY would hand out max(rowid)+1 again.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS admins (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating admins table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS questions (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			question_text TEXT NOT NULL CHECK (question_text <> ''),
			question_key  TEXT NOT NULL,
			answer_text   TEXT NOT NULL CHECK (answer_text <> ''),
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_questions_question_key ON questions(question_key);
	`)
	if err != nil {
		return fmt.Errorf("creating questions table: %w", err)
	}

	// owner_id came after the first release; add it idempotently.
	if err := db.addColumnIfNotExists("questions", "owner_id",
		"INTEGER REFERENCES admins(id) ON DELETE SET NULL"); err != nil {
		return fmt.Errorf("adding owner_id to questions: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE INDEX IF NOT EXISTS idx_questions_owner_id ON questions(owner_id);
	`)
	if err != nil {
		return fmt.Errorf("creating questions owner_id index: %w", err)
	}

	if err := db.rekeyQuestions(); err != nil {
		return fmt.Errorf("rekeying questions: %w", err)
	}

	return nil
}

// rekeyQuestions rewrites question_key wherever it no longer equals foldKey of the
// text, so rows stored under an older key function keep matching. Only stale rows
// are written.
func (db *DB) rekeyQuestions() error {
	rows, err := db.conn.Query(`SELECT id, question_text, question_key FROM questions`)
	if err != nil {
		return err
	}

	stale := map[int64]string{}
	for rows.Next() {
		var id int64
		var text, key string
		if err := rows.Scan(&id, &text, &key); err != nil {
			rows.Close()
			return err
		}
		if want := db.foldKey(text); want != key {
			stale[id] = want
		}
	}
	// Close before writing: ":memory:" has a single connection.
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for id, key := range stale {
		if _, err := db.conn.Exec(`UPDATE questions SET question_key = ? WHERE id = ?`, key, id); err != nil {
			return err
		}
	}
	return nil
}

// addColumnIfNotExists adds a column to a table only if it doesn't already exist.
// Makes ALTER TABLE migrations idempotent — safe to run multiple times.
func (db *DB) addColumnIfNotExists(table, column, definition string) error {
	var count int
	err := db.conn.QueryRow(
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("checking column %s.%s: %w", table, column, err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.conn.Exec(fmt.Sprintf(
		`ALTER TABLE %s ADD COLUMN %s %s`, table, column, definition,
	))
	return err
}
