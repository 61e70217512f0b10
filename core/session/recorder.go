package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/OnslaughtSnail/loopover/core/solve"
	"github.com/OnslaughtSnail/loopover/store"
)

// finalizeLocked builds the immutable record for the finished attempt,
// appends it to the in-memory histories and hands it to the store. Recorded
// durations always come from the clock's exact reading, never from samples.
func (s *Session) finalizeLocked(dnf bool) {
	s.clk.Stop()
	if s.scramble == nil {
		panic("session: finalize without scramble snapshot")
	}
	total := s.clk.Exact().Milliseconds()
	rec := solve.New(solve.Config{
		Time:      total,
		Moves:     s.log.Moves(),
		Scramble:  s.scramble,
		StartTime: s.clk.StartedAt(),
		MemoTime:  s.memoMS,
		DNF:       dnf,
	})
	key := s.eventKeyLocked()
	s.history[key] = append(s.history[key], rec)
	s.all = append(s.all, rec)
	s.lastTime = total
	s.phase = PhaseFinished
	s.persistLocked(key, rec)
}

// persistLocked forwards the record to the store without ever blocking the
// state machine. Write failures are swallowed; the in-memory lists stay
// authoritative for the running session.
func (s *Session) persistLocked(key solve.EventKey, rec solve.Solve) {
	if s.store == nil {
		return
	}
	if s.sid == "" {
		// The session id exists only once a solve needs persisting.
		s.sid = uuid.NewString()
		sessionRec := store.SessionRecord{ID: s.sid, Created: time.Now()}
		go func() {
			_, _ = s.store.PutSession(context.Background(), sessionRec)
		}()
	}
	raw, err := solve.Marshal(rec)
	if err != nil {
		return
	}
	solveRec := store.SolveRecord{
		EventKey:  string(key),
		SessionID: s.sid,
		Created:   time.Now(),
		Solve:     raw,
	}
	go func() {
		_, _ = s.store.PutSolve(context.Background(), solveRec)
	}()
}

// reloadHistoryLocked replaces the current event's history with the store's
// contents. Loads race resets: a load answering an earlier reset is discarded
// once a newer one has started.
func (s *Session) reloadHistoryLocked() {
	if s.store == nil {
		return
	}
	s.loadGen++
	gen := s.loadGen
	key := s.eventKeyLocked()
	go func() {
		recs, err := s.store.SolvesByEvent(context.Background(), string(key))
		if err != nil {
			return
		}
		loaded := make([]solve.Solve, 0, len(recs))
		for _, rec := range recs {
			sv, err := solve.Unmarshal(rec.Solve, s.decode)
			if err != nil {
				continue
			}
			loaded = append(loaded, sv)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.loadGen {
			return
		}
		s.history[key] = loaded
	}()
}

// History returns the solves recorded or loaded for the current event, oldest
// first.
func (s *Session) History() []solve.Solve {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.eventKeyLocked()
	out := make([]solve.Solve, len(s.history[key]))
	copy(out, s.history[key])
	return out
}

// AllSolves returns every solve finished by this process, across all events.
func (s *Session) AllSolves() []solve.Solve {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]solve.Solve, len(s.all))
	copy(out, s.all)
	return out
}

// Stats summarizes the current event's history.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Summarize(s.history[s.eventKeyLocked()], s.mode)
}

// SessionID returns the persisted session identity, empty until the first
// solve of the process reaches the store.
func (s *Session) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sid
}
