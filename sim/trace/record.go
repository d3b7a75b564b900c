// Package trace provides the dispatch trace of a production simulation:
// the ordered (cycle, process) events, their text encoding and summaries.
// This package has no dependencies on sim/; it stores pure data types.
package trace

import "fmt"

// Event records one process dispatch.
type Event struct {
	Cycle   int64
	Process string
}

// String returns the event in its file encoding, "cycle:process".
func (e Event) String() string {
	return fmt.Sprintf("%d:%s", e.Cycle, e.Process)
}

// Trace is the ordered list of dispatch events of a run.
// Insertion order is dispatch order; cycles never decrease.
type Trace []Event
