// Package sqlitestore persists solve records in a local SQLite database.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/OnslaughtSnail/loopover/store"
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	dsnOptions = "?_pragma=busy_timeout(3000)&_pragma=journal_mode(WAL)"
)

// Store is a SQLite-backed solve store. The zero value is not usable,
// construct it with New.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

func New(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: create dir: %w", err)
	}
	db, err := sql.Open(driverName, path+dsnOptions)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) PutSession(ctx context.Context, rec store.SessionRecord) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if strings.TrimSpace(rec.ID) == "" {
		return 0, fmt.Errorf("store: session id is required")
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	const q = `
INSERT INTO sessions (id, created_at) VALUES (?, ?)
ON CONFLICT(id) DO UPDATE SET
	created_at = CASE
		WHEN sessions.created_at < excluded.created_at THEN sessions.created_at
		ELSE excluded.created_at
	END`
	if _, err := s.db.ExecContext(ctx, q, rec.ID, rec.Created.UnixMilli()); err != nil {
		return 0, err
	}
	var rowid int64
	if err := s.db.QueryRowContext(ctx, `SELECT rowid FROM sessions WHERE id = ?`, rec.ID).Scan(&rowid); err != nil {
		return 0, err
	}
	return rowid, nil
}

func (s *Store) PutSolve(ctx context.Context, rec store.SolveRecord) (int64, error) {
	if s == nil || s.db == nil {
		return 0, nil
	}
	if strings.TrimSpace(rec.EventKey) == "" || strings.TrimSpace(rec.SessionID) == "" {
		return 0, fmt.Errorf("store: event_key and session_id are required")
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	const q = `INSERT INTO solves (event_key, session_id, created_at, solve) VALUES (?, ?, ?, ?)`
	res, err := s.db.ExecContext(ctx, q, rec.EventKey, rec.SessionID, rec.Created.UnixMilli(), rec.Solve)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) AllSessions(ctx context.Context) ([]store.SessionRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	const q = `SELECT id, created_at FROM sessions ORDER BY created_at ASC, id ASC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.SessionRecord
	for rows.Next() {
		var rec store.SessionRecord
		var created int64
		if err := rows.Scan(&rec.ID, &created); err != nil {
			return nil, err
		}
		rec.Created = time.UnixMilli(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) AllSolves(ctx context.Context) ([]store.SolveRecord, error) {
	return s.querySolves(ctx, `SELECT id, event_key, session_id, created_at, solve FROM solves ORDER BY id ASC`)
}

func (s *Store) SolvesByEvent(ctx context.Context, eventKey string) ([]store.SolveRecord, error) {
	return s.querySolves(ctx, `SELECT id, event_key, session_id, created_at, solve FROM solves WHERE event_key = ? ORDER BY id ASC`, eventKey)
}

func (s *Store) SolvesBySession(ctx context.Context, sessionID string) ([]store.SolveRecord, error) {
	return s.querySolves(ctx, `SELECT id, event_key, session_id, created_at, solve FROM solves WHERE session_id = ? ORDER BY id ASC`, sessionID)
}

func (s *Store) querySolves(ctx context.Context, q string, args ...any) ([]store.SolveRecord, error) {
	if s == nil || s.db == nil {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []store.SolveRecord
	for rows.Next() {
		var rec store.SolveRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.EventKey, &rec.SessionID, &created, &rec.Solve); err != nil {
			return nil, err
		}
		rec.Created = time.UnixMilli(created)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS solves (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	event_key TEXT NOT NULL,
	session_id TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	solve BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_solves_event_key
ON solves(event_key, id);
CREATE INDEX IF NOT EXISTS idx_solves_session_id
ON solves(session_id, id);`
	_, err := s.db.ExecContext(ctx, ddl)
	if err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}
