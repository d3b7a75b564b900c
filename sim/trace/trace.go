package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Record appends a dispatch event.
func (t *Trace) Record(cycle int64, process string) {
	*t = append(*t, Event{Cycle: cycle, Process: process})
}

// Last returns the final event, or false for an empty trace.
func (t Trace) Last() (Event, bool) {
	if len(t) == 0 {
		return Event{}, false
	}
	return t[len(t)-1], true
}

// IsMonotonic reports whether cycles never decrease along the trace.
func (t Trace) IsMonotonic() bool {
	for i := 1; i < len(t); i++ {
		if t[i].Cycle < t[i-1].Cycle {
			return false
		}
	}
	return true
}

// Lines returns one "cycle:process" line per event.
func (t Trace) Lines() []string {
	lines := make([]string, len(t))
	for i, ev := range t {
		lines[i] = ev.String()
	}
	return lines
}

// Digest returns the hex sha256 of the trace's line encoding.
// Two runs produced the same schedule iff their digests are equal.
// The empty trace digests to "".
func (t Trace) Digest() string {
	if len(t) == 0 {
		return ""
	}
	sum := sha256.Sum256([]byte(strings.Join(t.Lines(), "\n")))
	return hex.EncodeToString(sum[:])
}
