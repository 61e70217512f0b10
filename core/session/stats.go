package session

import (
	"slices"

	"github.com/OnslaughtSnail/loopover/core/solve"
)

const (
	// AverageNone marks a statistic that cannot be computed yet.
	AverageNone int64 = -1
	// AverageDNF marks a rolling average ruined by two or more DNFs in its
	// window.
	AverageDNF int64 = -2
)

// Stats summarizes an event's history. Values are milliseconds, or unit
// moves in move-count mode.
type Stats struct {
	Count    int
	DNFCount int
	Best     int64
	Worst    int64
	Mean     int64
	AO5      int64
	AO12     int64
}

// Summarize computes statistics over a history, oldest first. DNFs are
// excluded from best, worst and mean.
func Summarize(history []solve.Solve, mode solve.Mode) Stats {
	st := Stats{
		Count: len(history),
		Best:  AverageNone,
		Worst: AverageNone,
		Mean:  AverageNone,
		AO5:   AverageOf(history, 5, mode),
		AO12:  AverageOf(history, 12, mode),
	}
	var sum, counted int64
	for _, sv := range history {
		if sv.DNF() {
			st.DNFCount++
			continue
		}
		v := value(sv, mode)
		if st.Best == AverageNone || v < st.Best {
			st.Best = v
		}
		if st.Worst == AverageNone || v > st.Worst {
			st.Worst = v
		}
		sum += v
		counted++
	}
	if counted > 0 {
		st.Mean = sum / counted
	}
	return st
}

// AverageOf computes the trimmed rolling average over the last n solves: the
// single best and single worst are dropped and the rest are averaged. One
// DNF in the window counts as the trimmed worst; a second makes the whole
// average a DNF.
func AverageOf(history []solve.Solve, n int, mode solve.Mode) int64 {
	if n < 3 || len(history) < n {
		return AverageNone
	}
	window := history[len(history)-n:]
	dnfs := 0
	values := make([]int64, 0, n)
	for _, sv := range window {
		if sv.DNF() {
			dnfs++
			continue
		}
		values = append(values, value(sv, mode))
	}
	if dnfs >= 2 {
		return AverageDNF
	}
	slices.Sort(values)
	if dnfs == 1 {
		values = values[1:]
	} else {
		values = values[1 : len(values)-1]
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return sum / int64(len(values))
}

func value(sv solve.Solve, mode solve.Mode) int64 {
	if mode == solve.ModeMoves {
		return int64(sv.MoveCount())
	}
	return sv.Time()
}
