package solve

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/OnslaughtSnail/loopover/core/puzzle"
)

// BoardDecoder rebuilds a board snapshot from its encoded form. The concrete
// puzzle implementation supplies it; the solve codec stays board-agnostic.
type BoardDecoder func(data []byte) (puzzle.Board, error)

type document struct {
	Time      int64           `json:"time"`
	Moves     []puzzle.Move   `json:"moves"`
	Scramble  json.RawMessage `json:"scramble,omitempty"`
	StartTime int64           `json:"start_time"`
	MemoTime  int64           `json:"memo_time,omitempty"`
	DNF       bool            `json:"dnf,omitempty"`
}

// Marshal encodes a solve for persistence. The scramble board must implement
// json.Marshaler; boards that cannot encode themselves make the record
// unpersistable.
func Marshal(s Solve) ([]byte, error) {
	doc := document{
		Time:      s.time,
		Moves:     s.moves,
		StartTime: s.startTime.UnixMilli(),
		MemoTime:  s.memoTime,
		DNF:       s.dnf,
	}
	if s.scramble != nil {
		m, ok := s.scramble.(json.Marshaler)
		if !ok {
			return nil, fmt.Errorf("solve: scramble board %T is not marshalable", s.scramble)
		}
		raw, err := m.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("solve: encode scramble: %w", err)
		}
		doc.Scramble = raw
	}
	return json.Marshal(doc)
}

// Unmarshal decodes a persisted solve. A nil decoder drops the scramble
// snapshot; such a record can no longer be inspected but still feeds
// statistics.
func Unmarshal(data []byte, decode BoardDecoder) (Solve, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Solve{}, fmt.Errorf("solve: decode record: %w", err)
	}
	var board puzzle.Board
	if len(doc.Scramble) > 0 && decode != nil {
		b, err := decode(doc.Scramble)
		if err != nil {
			return Solve{}, fmt.Errorf("solve: decode scramble: %w", err)
		}
		board = b
	}
	return New(Config{
		Time:      doc.Time,
		Moves:     doc.Moves,
		Scramble:  board,
		StartTime: time.UnixMilli(doc.StartTime),
		MemoTime:  doc.MemoTime,
		DNF:       doc.DNF,
	}), nil
}
