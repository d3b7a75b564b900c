package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize_EmptyTrace_ZeroValues(t *testing.T) {
	// GIVEN an empty trace
	// WHEN summarized
	summary := Summarize(nil)

	// THEN all counts are zero
	assert.Equal(t, 0, summary.TotalEvents)
	assert.Equal(t, 0, summary.UniqueProcesses)
	assert.Equal(t, 0, summary.BusiestCount)
	assert.Empty(t, summary.Dispatches)
}

func TestSummarize_PopulatedTrace_CorrectCounts(t *testing.T) {
	// GIVEN a trace with repeated processes across cycles
	tr := Trace{
		{0, "farm"}, {0, "sell"},
		{3, "farm"}, {3, "sell"}, {3, "buy"},
		{8, "farm"},
	}

	// WHEN summarized
	summary := Summarize(tr)

	// THEN counts and bounds match
	assert.Equal(t, 6, summary.TotalEvents)
	assert.Equal(t, 3, summary.UniqueProcesses)
	assert.Equal(t, int64(0), summary.FirstCycle)
	assert.Equal(t, int64(8), summary.LastCycle)
	assert.Equal(t, int64(3), summary.BusiestCycle)
	assert.Equal(t, 3, summary.BusiestCount)
	assert.Equal(t, map[string]int{"farm": 3, "sell": 2, "buy": 1}, summary.Dispatches)
}

func TestSummarize_BusiestCycle_EarliestOnTies(t *testing.T) {
	summary := Summarize(Trace{{2, "a"}, {2, "b"}, {5, "a"}, {5, "b"}})
	assert.Equal(t, int64(2), summary.BusiestCycle)
	assert.Equal(t, 2, summary.BusiestCount)
}
