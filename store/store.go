// Package store defines durable persistence of solve history: a sessions
// table and a solves table indexed by event key and by session id. The
// session core treats every store call as fire-and-forget; implementations
// must be safe for concurrent use.
package store

import (
	"context"
	"time"
)

// SessionRecord is one row of the sessions table.
type SessionRecord struct {
	ID      string
	Created time.Time
}

// SolveRecord is one row of the solves table. Solve holds the encoded solve
// document produced by the solve codec.
type SolveRecord struct {
	ID        int64
	EventKey  string
	SessionID string
	Created   time.Time
	Solve     []byte
}

// Store persists sessions and solves.
type Store interface {
	PutSession(ctx context.Context, rec SessionRecord) (int64, error)
	PutSolve(ctx context.Context, rec SolveRecord) (int64, error)
	AllSessions(ctx context.Context) ([]SessionRecord, error)
	AllSolves(ctx context.Context) ([]SolveRecord, error)
	SolvesByEvent(ctx context.Context, eventKey string) ([]SolveRecord, error)
	SolvesBySession(ctx context.Context, sessionID string) ([]SolveRecord, error)
}
