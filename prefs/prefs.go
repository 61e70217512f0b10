// Package prefs stores user preferences as a versioned JSON file under the
// user's home directory. A record whose version does not match the current
// one is discarded wholesale and replaced with defaults.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OnslaughtSnail/loopover/core/solve"
)

const (
	prefsVersion = 1
	defaultCols  = 3
	defaultRows  = 3
)

type record struct {
	Version     int    `json:"version"`
	Cols        int    `json:"cols"`
	Rows        int    `json:"rows"`
	Mode        string `json:"mode"`
	NoRegrips   bool   `json:"no_regrips,omitempty"`
	DarkMode    bool   `json:"dark_mode,omitempty"`
	ForceMobile bool   `json:"force_mobile,omitempty"`
	UseLetters  bool   `json:"use_letters,omitempty"`
	DarkText    bool   `json:"dark_text,omitempty"`
}

// Store holds preferences in memory and writes them back on change.
type Store struct {
	path string
	data record
}

// DefaultPath resolves the preferences file under the user's home directory.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("prefs: resolve user home: %w", err)
	}
	return filepath.Join(home, ".loopover", "config.json"), nil
}

// LoadOrInit reads preferences from path, creating the file with defaults
// when it does not exist. A malformed or version-mismatched file falls back
// to defaults without error.
func LoadOrInit(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("prefs: path is required")
	}
	s := &Store{
		path: path,
		data: defaultRecord(),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("prefs: read %q: %w", path, err)
		}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	var loaded record
	if err := json.Unmarshal(raw, &loaded); err != nil {
		return s, nil
	}
	if loaded.Version != prefsVersion {
		return s, nil
	}
	mergeDefaults(&loaded)
	s.data = loaded
	return s, nil
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

func (s *Store) Cols() int {
	if s == nil {
		return defaultCols
	}
	return s.data.Cols
}

func (s *Store) Rows() int {
	if s == nil {
		return defaultRows
	}
	return s.data.Rows
}

func (s *Store) Mode() solve.Mode {
	if s == nil {
		return solve.ModeNormal
	}
	mode, err := solve.ParseMode(s.data.Mode)
	if err != nil {
		return solve.ModeNormal
	}
	return mode
}

func (s *Store) NoRegrips() bool {
	return s != nil && s.data.NoRegrips
}

func (s *Store) DarkMode() bool {
	return s != nil && s.data.DarkMode
}

func (s *Store) ForceMobile() bool {
	return s != nil && s.data.ForceMobile
}

func (s *Store) UseLetters() bool {
	return s != nil && s.data.UseLetters
}

func (s *Store) DarkText() bool {
	return s != nil && s.data.DarkText
}

// SetEvent records the board configuration the user last played.
func (s *Store) SetEvent(cols, rows int, mode solve.Mode, noRegrips bool) error {
	if s == nil {
		return nil
	}
	if cols < 2 || rows < 2 {
		return fmt.Errorf("prefs: board size %dx%d is below the 2x2 minimum", cols, rows)
	}
	if s.data.Cols == cols && s.data.Rows == rows && s.data.Mode == string(mode) && s.data.NoRegrips == noRegrips {
		return nil
	}
	s.data.Cols = cols
	s.data.Rows = rows
	s.data.Mode = string(mode)
	s.data.NoRegrips = noRegrips
	return s.save()
}

func (s *Store) SetDarkMode(on bool) error {
	if s == nil || s.data.DarkMode == on {
		return nil
	}
	s.data.DarkMode = on
	return s.save()
}

func (s *Store) SetForceMobile(on bool) error {
	if s == nil || s.data.ForceMobile == on {
		return nil
	}
	s.data.ForceMobile = on
	return s.save()
}

func (s *Store) SetUseLetters(on bool) error {
	if s == nil || s.data.UseLetters == on {
		return nil
	}
	s.data.UseLetters = on
	return s.save()
}

func (s *Store) SetDarkText(on bool) error {
	if s == nil || s.data.DarkText == on {
		return nil
	}
	s.data.DarkText = on
	return s.save()
}

func (s *Store) save() error {
	if s == nil {
		return nil
	}
	mergeDefaults(&s.data)
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("prefs: create dir: %w", err)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("prefs: marshal: %w", err)
	}
	raw = append(raw, '\n')
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("prefs: write tmp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("prefs: rename: %w", err)
	}
	return nil
}

func defaultRecord() record {
	return record{
		Version: prefsVersion,
		Cols:    defaultCols,
		Rows:    defaultRows,
		Mode:    string(solve.ModeNormal),
	}
}

func mergeDefaults(cfg *record) {
	if cfg == nil {
		return
	}
	if cfg.Version <= 0 {
		cfg.Version = prefsVersion
	}
	if cfg.Cols < 2 {
		cfg.Cols = defaultCols
	}
	if cfg.Rows < 2 {
		cfg.Rows = defaultRows
	}
	if _, err := solve.ParseMode(cfg.Mode); err != nil {
		cfg.Mode = string(solve.ModeNormal)
	}
}
