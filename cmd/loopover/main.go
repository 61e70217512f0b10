// Command loopover is an interactive terminal client for the loopover
// solving session: scramble, solve against the clock, replay and inspect
// recorded solves, with history persisted to a local SQLite database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/OnslaughtSnail/loopover/core/grid"
	"github.com/OnslaughtSnail/loopover/core/session"
	"github.com/OnslaughtSnail/loopover/core/solve"
	"github.com/OnslaughtSnail/loopover/internal/envload"
	"github.com/OnslaughtSnail/loopover/internal/version"
	"github.com/OnslaughtSnail/loopover/prefs"
	"github.com/OnslaughtSnail/loopover/store"
	"github.com/OnslaughtSnail/loopover/store/inmemory"
	"github.com/OnslaughtSnail/loopover/store/sqlitestore"
)

func main() {
	if err := runCLI(context.Background(), os.Args[1:]); err != nil {
		exitErr(err)
	}
}

func runCLI(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, err := envload.LoadNearest(); err != nil {
		fmt.Fprintf(os.Stderr, "warn: load .env failed: %v\n", err)
	}
	prefsPath, err := prefs.DefaultPath()
	if err != nil {
		return err
	}
	cfgStore, err := prefs.LoadOrInit(prefsPath)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("loopover", flag.ContinueOnError)
	var (
		cols        = fs.Int("cols", cfgStore.Cols(), "Board columns")
		rows        = fs.Int("rows", cfgStore.Rows(), "Board rows")
		modeName    = fs.String("mode", string(cfgStore.Mode()), "Event mode: normal|blind|moves")
		noRegrips   = fs.Bool("noregrips", cfgStore.NoRegrips(), "Forbid moves that displace the anchor tile")
		dbPath      = fs.String("db", defaultDBPath(), "SQLite solve database path")
		memoryOnly  = fs.Bool("memory", false, "Keep solves in memory, skip the database")
		showVersion = fs.Bool("version", false, "Show version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *showVersion {
		fmt.Println(version.String())
		return nil
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unknown arguments: %v", fs.Args())
	}

	mode, err := solve.ParseMode(*modeName)
	if err != nil {
		return err
	}
	if err := cfgStore.SetEvent(*cols, *rows, mode, *noRegrips); err != nil {
		return err
	}

	board, err := grid.New(grid.Config{Cols: *cols, Rows: *rows, NoRegrips: *noRegrips})
	if err != nil {
		return err
	}

	st := openSolveStore(*dbPath, *memoryOnly)
	defer func() {
		if closer, ok := st.(io.Closer); ok {
			if closeErr := closer.Close(); closeErr != nil {
				fmt.Fprintf(os.Stderr, "warn: close solve store failed: %v\n", closeErr)
			}
		}
	}()

	var sampled atomic.Int64
	sess, err := session.New(session.Config{
		Engine:      board,
		Store:       st,
		DecodeBoard: grid.DecodeBoard,
		Cols:        *cols,
		Rows:        *rows,
		Mode:        mode,
		NoRegrips:   *noRegrips,
		OnSample: func(elapsed time.Duration) {
			sampled.Store(elapsed.Milliseconds())
		},
	})
	if err != nil {
		return err
	}

	c := newConsole(consoleConfig{
		BaseContext: ctx,
		Session:     sess,
		Board:       board,
		Prefs:       cfgStore,
		Store:       st,
		Sampled:     &sampled,
		HistoryFile: filepath.Join(filepath.Dir(prefsPath), "history"),
		Version:     version.String(),
	})
	return c.loop()
}

// defaultDBPath honors a LOOPOVER_DB override, usually supplied through a
// project .env file, before settling on the home directory database.
func defaultDBPath() string {
	if fromEnv := strings.TrimSpace(os.Getenv("LOOPOVER_DB")); fromEnv != "" {
		return fromEnv
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "loopover.db"
	}
	return filepath.Join(home, ".loopover", "solves.db")
}

// openSolveStore falls back to the in-memory store when the database cannot
// be opened, so a broken disk never blocks playing.
func openSolveStore(path string, memoryOnly bool) store.Store {
	if memoryOnly {
		return inmemory.New()
	}
	st, err := sqlitestore.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warn: open solve database failed, keeping solves in memory: %v\n", err)
		return inmemory.New()
	}
	return st
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
