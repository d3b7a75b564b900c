package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// EmptySentinel is written in place of an empty trace so that a run that
// dispatched nothing still leaves a non-empty file behind.
const EmptySentinel = "# no process executed (optimization)"

// ParseError reports a malformed trace line.
type ParseError struct {
	Line   int // 1-based
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Text)
}

// Write encodes t as one "cycle:process" line per event.
func Write(w io.Writer, t Trace) error {
	bw := bufio.NewWriter(w)
	if len(t) == 0 {
		if _, err := fmt.Fprintln(bw, EmptySentinel); err != nil {
			return err
		}
		return bw.Flush()
	}
	for _, ev := range t {
		if _, err := fmt.Fprintln(bw, ev.String()); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes t to path and syncs the file to disk.
func Save(path string, t Trace) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	if err := Write(f, t); err != nil {
		f.Close()
		return fmt.Errorf("writing trace file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("syncing trace file: %w", err)
	}
	return f.Close()
}

// Parse decodes a trace. Lines starting with '#' are comments; empty
// lines, lines without ':' and non-numeric cycles are rejected.
func Parse(r io.Reader) (Trace, error) {
	var t Trace
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), "\r")
		if text == "" {
			return nil, &ParseError{Line: line, Reason: "empty trace line"}
		}
		if strings.HasPrefix(text, "#") {
			continue
		}
		cycleStr, name, ok := strings.Cut(text, ":")
		if !ok || name == "" {
			return nil, &ParseError{Line: line, Text: text, Reason: "invalid trace line"}
		}
		cycle, err := strconv.ParseInt(cycleStr, 10, 64)
		if err != nil || cycle < 0 || strings.HasPrefix(cycleStr, "+") {
			return nil, &ParseError{Line: line, Text: text, Reason: "invalid cycle"}
		}
		t.Record(cycle, name)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading trace: %w", err)
	}
	return t, nil
}

// Load parses the trace file at path.
func Load(path string) (Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
