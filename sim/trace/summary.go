package trace

// TraceSummary aggregates statistics from a Trace.
type TraceSummary struct {
	TotalEvents     int
	UniqueProcesses int
	FirstCycle      int64
	LastCycle       int64
	BusiestCycle    int64          // cycle with the most dispatches; earliest on ties
	BusiestCount    int            // dispatches in BusiestCycle
	Dispatches      map[string]int // process name → dispatch count
}

// Summarize computes aggregate statistics from a Trace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(t Trace) *TraceSummary {
	summary := &TraceSummary{
		Dispatches: make(map[string]int),
	}
	if len(t) == 0 {
		return summary
	}

	summary.TotalEvents = len(t)
	summary.FirstCycle = t[0].Cycle
	last, _ := t.Last()
	summary.LastCycle = last.Cycle

	perCycle := make(map[int64]int)
	for _, ev := range t {
		summary.Dispatches[ev.Process]++
		perCycle[ev.Cycle]++
	}
	for _, ev := range t {
		if n := perCycle[ev.Cycle]; n > summary.BusiestCount {
			summary.BusiestCycle = ev.Cycle
			summary.BusiestCount = n
		}
	}

	summary.UniqueProcesses = len(summary.Dispatches)

	return summary
}
