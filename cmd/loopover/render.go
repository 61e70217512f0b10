package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"github.com/OnslaughtSnail/loopover/core/grid"
	"github.com/OnslaughtSnail/loopover/core/session"
	"github.com/OnslaughtSnail/loopover/core/solve"
)

const hiddenCell = "#"

// Tiles are colored by home row, cycling for tall boards.
var tilePalette = []*color.Color{
	color.New(color.FgRed),
	color.New(color.FgYellow),
	color.New(color.FgGreen),
	color.New(color.FgCyan),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
}

// renderBoard prints the grid one row per line, cells right-aligned to the
// widest label. A board hidden by a blind attempt renders as placeholders.
// Letter labels apply only while the board fits the alphabet.
func renderBoard(w io.Writer, g *grid.Grid, useLetters bool) {
	cols := g.Cols()
	rows := g.Rows()
	letters := useLetters && cols*rows <= 26
	width := cellWidth(cols, rows, letters)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if col > 0 {
				fmt.Fprint(w, " ")
			}
			value := g.Tile(col, row)
			if !g.Visible() {
				fmt.Fprint(w, padCell(hiddenCell, width))
				continue
			}
			cell := padCell(tileLabel(value, letters), width)
			fmt.Fprint(w, paletteFor(value, cols).Sprint(cell))
		}
		fmt.Fprintln(w)
	}
}

func renderStatus(w io.Writer, sess *session.Session) {
	if sess.Phase() == session.PhaseInspecting {
		applied := sess.MoveCount() - sess.Cursor()
		fmt.Fprintf(w, "event=%s phase=%s step=%d/%d at=%s\n",
			sess.EventKey(), sess.Phase(), applied, sess.MoveCount(), formatMillis(sess.Elapsed()))
		return
	}
	fmt.Fprintf(w, "event=%s phase=%s elapsed=%s moves=%d\n",
		sess.EventKey(), sess.Phase(), formatMillis(sess.Elapsed()), sess.MoveCount())
}

// renderHistory lists up to limit solves, most recent first, numbered the
// way /inspect addresses them.
func renderHistory(w io.Writer, solves []solve.Solve, mode solve.Mode, limit int) {
	if len(solves) == 0 {
		fmt.Fprintf(w, "history: (empty)\n")
		return
	}
	if limit <= 0 || limit > len(solves) {
		limit = len(solves)
	}
	fmt.Fprintf(w, "history:\n")
	for i := 0; i < limit; i++ {
		sv := solves[len(solves)-1-i]
		fmt.Fprintf(w, " %2d) %s\n", i+1, formatSolve(sv, mode))
	}
}

func renderStats(w io.Writer, key solve.EventKey, st session.Stats, mode solve.Mode) {
	if st.Count == 0 {
		fmt.Fprintf(w, "stats: (no solves yet)\n")
		return
	}
	fmt.Fprintf(w, "event=%s solves=%d dnf=%d\n", key, st.Count, st.DNFCount)
	fmt.Fprintf(w, "best=%s worst=%s mean=%s\n",
		formatScore(st.Best, mode), formatScore(st.Worst, mode), formatScore(st.Mean, mode))
	fmt.Fprintf(w, "ao5=%s ao12=%s\n", formatScore(st.AO5, mode), formatScore(st.AO12, mode))
}

func formatSolve(sv solve.Solve, mode solve.Mode) string {
	line := fmt.Sprintf("%s  %d moves", formatMillis(sv.Time()), sv.MoveCount())
	if mode == solve.ModeMoves {
		line = fmt.Sprintf("%d moves  %s", sv.MoveCount(), formatMillis(sv.Time()))
	}
	if sv.MemoTime() > 0 {
		line += fmt.Sprintf("  memo=%s", formatMillis(sv.MemoTime()))
	}
	if sv.DNF() {
		line += "  DNF"
	}
	return line
}

// formatScore renders a stats value: durations by default, bare counts for
// move-count events, with the average sentinels spelled out.
func formatScore(value int64, mode solve.Mode) string {
	switch value {
	case session.AverageNone:
		return "-"
	case session.AverageDNF:
		return "DNF"
	}
	if mode == solve.ModeMoves {
		return strconv.FormatInt(value, 10)
	}
	return formatMillis(value)
}

// formatMillis renders a duration as seconds under a minute and m:ss above.
func formatMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	if ms < 60_000 {
		return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
	}
	return fmt.Sprintf("%d:%02d.%03d", ms/60_000, ms/1000%60, ms%1000)
}

func tileLabel(value int, letters bool) string {
	if letters {
		return string(rune('A' + value))
	}
	return strconv.Itoa(value + 1)
}

func cellWidth(cols, rows int, letters bool) int {
	if letters {
		return 1
	}
	return runewidth.StringWidth(strconv.Itoa(cols * rows))
}

func padCell(label string, width int) string {
	pad := width - runewidth.StringWidth(label)
	if pad <= 0 {
		return label
	}
	return fmt.Sprintf("%*s%s", pad, "", label)
}

func paletteFor(value, cols int) *color.Color {
	homeRow := value / cols
	return tilePalette[homeRow%len(tilePalette)]
}
