package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/OnslaughtSnail/loopover/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "loopover.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestStore_PutAndQuerySolves(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	records := []store.SolveRecord{
		{EventKey: "3x3", SessionID: "s-a", Created: now, Solve: []byte(`{"time":1200}`)},
		{EventKey: "3x3-blind", SessionID: "s-a", Created: now.Add(time.Second), Solve: []byte(`{"time":9000}`)},
		{EventKey: "3x3", SessionID: "s-b", Created: now.Add(2 * time.Second), Solve: []byte(`{"time":1500}`)},
	}
	for _, rec := range records {
		if _, err := s.PutSolve(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	byEvent, err := s.SolvesByEvent(ctx, "3x3")
	if err != nil {
		t.Fatal(err)
	}
	if len(byEvent) != 2 {
		t.Fatalf("expected 2 solves for 3x3, got %d", len(byEvent))
	}
	if string(byEvent[0].Solve) != `{"time":1200}` || string(byEvent[1].Solve) != `{"time":1500}` {
		t.Fatalf("unexpected solve order: %s, %s", byEvent[0].Solve, byEvent[1].Solve)
	}
	if byEvent[0].ID >= byEvent[1].ID {
		t.Fatalf("expected ascending ids, got %d then %d", byEvent[0].ID, byEvent[1].ID)
	}

	bySession, err := s.SolvesBySession(ctx, "s-a")
	if err != nil {
		t.Fatal(err)
	}
	if len(bySession) != 2 {
		t.Fatalf("expected 2 solves for s-a, got %d", len(bySession))
	}

	all, err := s.AllSolves(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 solves total, got %d", len(all))
	}
}

func TestStore_PutSolveValidates(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.PutSolve(context.Background(), store.SolveRecord{SessionID: "s"}); err == nil {
		t.Fatal("expected error for missing event key")
	}
	if _, err := s.PutSolve(context.Background(), store.SolveRecord{EventKey: "3x3"}); err == nil {
		t.Fatal("expected error for missing session id")
	}
}

func TestStore_PutSessionKeepsEarliestCreated(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	early := time.Now().Add(-time.Hour)
	late := time.Now()

	if _, err := s.PutSession(ctx, store.SessionRecord{ID: "s-1", Created: early}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutSession(ctx, store.SessionRecord{ID: "s-1", Created: late}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutSession(ctx, store.SessionRecord{ID: "s-2", Created: late}); err != nil {
		t.Fatal(err)
	}

	sessions, err := s.AllSessions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].ID != "s-1" {
		t.Fatalf("expected s-1 first, got %q", sessions[0].ID)
	}
	if got := sessions[0].Created.UnixMilli(); got != early.UnixMilli() {
		t.Fatalf("created_at = %d, want earliest %d", got, early.UnixMilli())
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loopover.db")
	ctx := context.Background()

	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutSolve(ctx, store.SolveRecord{EventKey: "4x4", SessionID: "s", Solve: []byte(`{"time":42}`)}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	got, err := reopened.SolvesByEvent(ctx, "4x4")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || string(got[0].Solve) != `{"time":42}` {
		t.Fatalf("unexpected solves after reopen: %v", got)
	}
}

func TestStore_NilReceiverIsSafe(t *testing.T) {
	var s *Store
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.PutSolve(context.Background(), store.SolveRecord{EventKey: "3x3", SessionID: "s"}); err != nil {
		t.Fatal(err)
	}
	if got, err := s.AllSolves(context.Background()); err != nil || got != nil {
		t.Fatalf("expected empty result from nil store, got %v, %v", got, err)
	}
}

func TestNewRequiresPath(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
}
