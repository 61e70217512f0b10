package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OnslaughtSnail/loopover/core/solve"
)

func TestLoadOrInitCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	s, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Cols() != 3 || s.Rows() != 3 {
		t.Fatalf("unexpected default size %dx%d", s.Cols(), s.Rows())
	}
	if s.Mode() != solve.ModeNormal {
		t.Fatalf("unexpected default mode %q", s.Mode())
	}
	if s.NoRegrips() || s.DarkMode() || s.UseLetters() {
		t.Fatal("expected boolean preferences to default off")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
}

func TestSettersPersistAcrossLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	s, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetEvent(5, 4, solve.ModeBlind, true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetDarkMode(true); err != nil {
		t.Fatal(err)
	}
	if err := s.SetUseLetters(true); err != nil {
		t.Fatal(err)
	}

	reloaded, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Cols() != 5 || reloaded.Rows() != 4 {
		t.Fatalf("unexpected persisted size %dx%d", reloaded.Cols(), reloaded.Rows())
	}
	if reloaded.Mode() != solve.ModeBlind {
		t.Fatalf("unexpected persisted mode %q", reloaded.Mode())
	}
	if !reloaded.NoRegrips() {
		t.Fatal("expected no-regrips persisted")
	}
	if !reloaded.DarkMode() || !reloaded.UseLetters() {
		t.Fatal("expected display preferences persisted")
	}
	if reloaded.ForceMobile() || reloaded.DarkText() {
		t.Fatal("expected untouched preferences to stay off")
	}
}

func TestSetEventRejectsTinyBoards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetEvent(1, 3, solve.ModeNormal, false); err == nil {
		t.Fatal("expected error for 1-column board")
	}
	if s.Cols() != 3 {
		t.Fatalf("rejected setter mutated cols to %d", s.Cols())
	}
}

func TestVersionMismatchDiscardsRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := []byte(`{"version": 99, "cols": 7, "rows": 7, "mode": "blind", "dark_mode": true}`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Cols() != 3 || s.Rows() != 3 {
		t.Fatalf("expected defaults after version mismatch, got %dx%d", s.Cols(), s.Rows())
	}
	if s.Mode() != solve.ModeNormal || s.DarkMode() {
		t.Fatal("expected stale record discarded wholesale")
	}
}

func TestMalformedFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Cols() != 3 || s.Rows() != 3 || s.Mode() != solve.ModeNormal {
		t.Fatal("expected defaults for malformed file")
	}
}

func TestUnchangedSetterSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	s, err := LoadOrInit(path)
	if err != nil {
		t.Fatal(err)
	}
	before, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetDarkMode(false); err != nil {
		t.Fatal(err)
	}
	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(before.ModTime()) {
		t.Fatal("expected no rewrite for unchanged preference")
	}
}

func TestDefaultPathUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "config.json" {
		t.Fatalf("unexpected filename %q", filepath.Base(path))
	}
	if filepath.Base(filepath.Dir(path)) != ".loopover" {
		t.Fatalf("unexpected directory %q", filepath.Dir(path))
	}
}
