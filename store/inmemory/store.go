// Package inmemory provides a slice-backed store for tests and for running
// without durable persistence.
package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/OnslaughtSnail/loopover/store"
)

// Store is a thread-safe in-memory store.
type Store struct {
	mu       sync.RWMutex
	sessions []store.SessionRecord
	solves   []store.SolveRecord
	nextID   int64
}

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) PutSession(ctx context.Context, rec store.SessionRecord) (int64, error) {
	_ = ctx
	if rec.ID == "" {
		return 0, fmt.Errorf("store: session id is required")
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.sessions {
		if existing.ID == rec.ID {
			s.sessions[i] = rec
			return int64(i + 1), nil
		}
	}
	s.sessions = append(s.sessions, rec)
	return int64(len(s.sessions)), nil
}

func (s *Store) PutSolve(ctx context.Context, rec store.SolveRecord) (int64, error) {
	_ = ctx
	if rec.EventKey == "" || rec.SessionID == "" {
		return 0, fmt.Errorf("store: event_key and session_id are required")
	}
	if rec.Created.IsZero() {
		rec.Created = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.ID = s.nextID
	s.nextID++
	rec.Solve = append([]byte(nil), rec.Solve...)
	s.solves = append(s.solves, rec)
	return rec.ID, nil
}

func (s *Store) AllSessions(ctx context.Context) ([]store.SessionRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.SessionRecord, len(s.sessions))
	copy(out, s.sessions)
	return out, nil
}

func (s *Store) AllSolves(ctx context.Context) ([]store.SolveRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(store.SolveRecord) bool { return true }), nil
}

func (s *Store) SolvesByEvent(ctx context.Context, eventKey string) ([]store.SolveRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(rec store.SolveRecord) bool { return rec.EventKey == eventKey }), nil
}

func (s *Store) SolvesBySession(ctx context.Context, sessionID string) ([]store.SolveRecord, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter(func(rec store.SolveRecord) bool { return rec.SessionID == sessionID }), nil
}

func (s *Store) filter(keep func(store.SolveRecord) bool) []store.SolveRecord {
	out := make([]store.SolveRecord, 0, len(s.solves))
	for _, rec := range s.solves {
		if !keep(rec) {
			continue
		}
		cp := rec
		cp.Solve = append([]byte(nil), rec.Solve...)
		out = append(out, cp)
	}
	return out
}
