package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
)

// ReplayEntry is one line of a recorded landmark session. A null frame
// records a cycle in which no hand was tracked.
type ReplayEntry struct {
	OffsetMs int64          `json:"offset_ms"`
	Frame    *gesture.Frame `json:"frame"`
}

// Replay plays a recorded session back as a sample source. Sample
// timestamps are Start plus each entry's offset, so runs are
// deterministic regardless of wall clock.
type Replay struct {
	Start   time.Time
	entries []ReplayEntry
	pos     int
	open    bool
}

// NewReplay wraps already decoded entries.
func NewReplay(start time.Time, entries []ReplayEntry) *Replay {
	return &Replay{Start: start, entries: entries}
}

// ParseReplay decodes a JSON Lines session. Blank lines are ignored.
func ParseReplay(r io.Reader) ([]ReplayEntry, error) {
	var entries []ReplayEntry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var e ReplayEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return entries, nil
}

// Open rewinds the session.
func (r *Replay) Open() error {
	r.pos = 0
	r.open = true
	return nil
}

// Next returns the next recorded sample, or io.EOF once the session ends.
func (r *Replay) Next() (*Sample, error) {
	if !r.open {
		return nil, fmt.Errorf("%w: %w", ErrAcquisition, ErrCameraNotOpen)
	}
	if r.pos >= len(r.entries) {
		return nil, io.EOF
	}

	e := r.entries[r.pos]
	r.pos++

	s := &Sample{At: r.Start.Add(time.Duration(e.OffsetMs) * time.Millisecond)}
	if e.Frame != nil {
		hand := detector.FromFrame(*e.Frame)
		s.Hand = &hand
	}
	return s, nil
}

// Close ends playback.
func (r *Replay) Close() error {
	r.open = false
	return nil
}

// Len returns the number of recorded cycles.
func (r *Replay) Len() int {
	return len(r.entries)
}
