package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/OnslaughtSnail/loopover/store"
)

func TestPutSolveAssignsSequentialIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	first, err := s.PutSolve(ctx, store.SolveRecord{EventKey: "3x3", SessionID: "a", Solve: []byte(`{}`)})
	if err != nil {
		t.Fatalf("put first solve: %v", err)
	}
	second, err := s.PutSolve(ctx, store.SolveRecord{EventKey: "3x3", SessionID: "a", Solve: []byte(`{}`)})
	if err != nil {
		t.Fatalf("put second solve: %v", err)
	}
	if first != 1 || second != 2 {
		t.Fatalf("ids = %d, %d, want 1, 2", first, second)
	}
}

func TestPutSolveRequiresKeys(t *testing.T) {
	s := New()
	if _, err := s.PutSolve(context.Background(), store.SolveRecord{SessionID: "a"}); err == nil {
		t.Fatal("expected error for missing event key")
	}
	if _, err := s.PutSolve(context.Background(), store.SolveRecord{EventKey: "3x3"}); err == nil {
		t.Fatal("expected error for missing session id")
	}
}

func TestSolvesByEventFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	records := []store.SolveRecord{
		{EventKey: "3x3", SessionID: "a", Solve: []byte(`1`)},
		{EventKey: "4x4", SessionID: "a", Solve: []byte(`2`)},
		{EventKey: "3x3", SessionID: "b", Solve: []byte(`3`)},
	}
	for _, rec := range records {
		if _, err := s.PutSolve(ctx, rec); err != nil {
			t.Fatalf("put solve: %v", err)
		}
	}

	got, err := s.SolvesByEvent(ctx, "3x3")
	if err != nil {
		t.Fatalf("solves by event: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d solves, want 2", len(got))
	}
	for _, rec := range got {
		if rec.EventKey != "3x3" {
			t.Fatalf("unexpected event key %q", rec.EventKey)
		}
	}

	bySession, err := s.SolvesBySession(ctx, "b")
	if err != nil {
		t.Fatalf("solves by session: %v", err)
	}
	if len(bySession) != 1 || string(bySession[0].Solve) != "3" {
		t.Fatalf("unexpected session solves %v", bySession)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.PutSolve(ctx, store.SolveRecord{EventKey: "3x3", SessionID: "a", Solve: []byte(`{"time":1}`)}); err != nil {
		t.Fatalf("put solve: %v", err)
	}

	got, err := s.AllSolves(ctx)
	if err != nil {
		t.Fatalf("all solves: %v", err)
	}
	got[0].Solve[0] = 'X'

	again, err := s.AllSolves(ctx)
	if err != nil {
		t.Fatalf("all solves: %v", err)
	}
	if string(again[0].Solve) != `{"time":1}` {
		t.Fatalf("stored document mutated through read copy: %s", again[0].Solve)
	}
}

func TestPutSessionUpserts(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := time.Now().Add(-time.Hour)

	if _, err := s.PutSession(ctx, store.SessionRecord{ID: "a", Created: created}); err != nil {
		t.Fatalf("put session: %v", err)
	}
	if _, err := s.PutSession(ctx, store.SessionRecord{ID: "a", Created: created}); err != nil {
		t.Fatalf("re-put session: %v", err)
	}
	if _, err := s.PutSession(ctx, store.SessionRecord{ID: "b"}); err != nil {
		t.Fatalf("put second session: %v", err)
	}

	sessions, err := s.AllSessions(ctx)
	if err != nil {
		t.Fatalf("all sessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}
	if !sessions[0].Created.Equal(created) {
		t.Fatalf("created = %v, want %v", sessions[0].Created, created)
	}
	if sessions[1].Created.IsZero() {
		t.Fatal("expected default created timestamp")
	}
}

func TestPutSessionRequiresID(t *testing.T) {
	s := New()
	if _, err := s.PutSession(context.Background(), store.SessionRecord{}); err == nil {
		t.Fatal("expected error for missing session id")
	}
}
