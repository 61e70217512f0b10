package session

import (
	"testing"

	"github.com/OnslaughtSnail/loopover/core/puzzle"
	"github.com/OnslaughtSnail/loopover/core/solve"
)

func mkSolve(ms int64, moveCount int, dnf bool) solve.Solve {
	moves := make([]puzzle.Move, moveCount)
	for i := range moves {
		moves[i] = puzzle.Move{Axis: puzzle.AxisRow, N: 1}
	}
	return solve.New(solve.Config{Time: ms, Moves: moves, DNF: dnf})
}

func times(values ...int64) []solve.Solve {
	out := make([]solve.Solve, 0, len(values))
	for _, v := range values {
		out = append(out, mkSolve(v, 1, false))
	}
	return out
}

func TestSummarizeBasics(t *testing.T) {
	history := times(1000, 2000, 3000)
	history = append(history, mkSolve(500, 1, true))

	st := Summarize(history, solve.ModeNormal)
	if st.Count != 4 || st.DNFCount != 1 {
		t.Fatalf("count=%d dnf=%d, want 4 and 1", st.Count, st.DNFCount)
	}
	if st.Best != 1000 || st.Worst != 3000 {
		t.Fatalf("best=%d worst=%d", st.Best, st.Worst)
	}
	if st.Mean != 2000 {
		t.Fatalf("mean=%d, want 2000", st.Mean)
	}
	if st.AO5 != AverageNone || st.AO12 != AverageNone {
		t.Fatalf("ao5=%d ao12=%d, want none before the window fills", st.AO5, st.AO12)
	}
}

func TestSummarizeEmptyHistory(t *testing.T) {
	st := Summarize(nil, solve.ModeNormal)
	if st.Count != 0 || st.Best != AverageNone || st.Mean != AverageNone {
		t.Fatalf("unexpected empty stats %+v", st)
	}
}

func TestSummarizeAllDNFs(t *testing.T) {
	history := []solve.Solve{mkSolve(900, 1, true), mkSolve(800, 1, true)}
	st := Summarize(history, solve.ModeNormal)
	if st.DNFCount != 2 {
		t.Fatalf("dnf=%d", st.DNFCount)
	}
	if st.Best != AverageNone || st.Worst != AverageNone || st.Mean != AverageNone {
		t.Fatalf("DNF-only history produced values %+v", st)
	}
}

func TestAverageOfTrimsBestAndWorst(t *testing.T) {
	history := times(1000, 2000, 3000, 4000, 10000)
	if got := AverageOf(history, 5, solve.ModeNormal); got != 3000 {
		t.Fatalf("ao5=%d, want 3000", got)
	}
}

func TestAverageOfUsesTrailingWindow(t *testing.T) {
	history := times(9000, 1000, 2000, 3000, 4000, 5000)
	if got := AverageOf(history, 5, solve.ModeNormal); got != 3000 {
		t.Fatalf("ao5=%d, want 3000 over the last five", got)
	}
}

func TestAverageOfWithOneDNF(t *testing.T) {
	history := times(1000, 2000, 3000, 4000)
	history = append(history, mkSolve(1500, 1, true))
	if got := AverageOf(history, 5, solve.ModeNormal); got != 3000 {
		t.Fatalf("ao5=%d, want 3000 with the DNF as trimmed worst", got)
	}
}

func TestAverageOfWithTwoDNFs(t *testing.T) {
	history := times(1000, 2000, 3000)
	history = append(history, mkSolve(1500, 1, true), mkSolve(1600, 1, true))
	if got := AverageOf(history, 5, solve.ModeNormal); got != AverageDNF {
		t.Fatalf("ao5=%d, want DNF sentinel", got)
	}
}

func TestAverageOfNeedsFullWindow(t *testing.T) {
	if got := AverageOf(times(1000, 2000, 3000, 4000), 5, solve.ModeNormal); got != AverageNone {
		t.Fatalf("ao5=%d with four solves, want none", got)
	}
	if got := AverageOf(times(1000, 2000), 2, solve.ModeNormal); got != AverageNone {
		t.Fatalf("average of 2 = %d, want none (window too small to trim)", got)
	}
}

func TestMovesModeScoresByMoveCount(t *testing.T) {
	history := []solve.Solve{
		mkSolve(99999, 2, false),
		mkSolve(1, 4, false),
	}
	st := Summarize(history, solve.ModeMoves)
	if st.Best != 2 || st.Worst != 4 || st.Mean != 3 {
		t.Fatalf("best=%d worst=%d mean=%d, want move counts 2/4/3", st.Best, st.Worst, st.Mean)
	}
}
