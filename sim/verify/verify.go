// Package verify checks a recorded trace by replaying its configuration
// and comparing the replay event by event.
package verify

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/krpsim/krpsim/sim"
	"github.com/krpsim/krpsim/sim/trace"
)

// Options tunes a verification.
type Options struct {
	// Horizon, when positive, replays up to this horizon and requires the
	// supplied trace to be the complete schedule. Zero derives the horizon
	// from the trace and accepts any matching prefix.
	Horizon int64
	// NoStrategy replays with the farm-and-convert plan disabled, matching
	// traces produced the same way.
	NoStrategy bool
}

// Result describes a successful verification.
type Result struct {
	Horizon int64
	// Expected holds the replayed events that were compared, which may stop
	// short of the full schedule once the supplied trace is matched.
	Expected  trace.Trace
	Simulator *sim.Simulator // replay state; nil when nothing was replayed
}

// Verify checks supplied against a deterministic replay of cfg.
// The replay advances only as far as the comparison needs and stops at the
// first divergence. Failures are returned as one of the error types of this
// package.
func Verify(cfg *sim.Config, supplied trace.Trace, opts Options) (*Result, error) {
	for i, ev := range supplied {
		if _, ok := cfg.Processes[ev.Process]; !ok {
			return nil, &UnknownProcessError{Line: i + 1, Process: ev.Process}
		}
	}

	complete := opts.Horizon > 0
	horizon := opts.Horizon
	if !complete {
		if len(supplied) == 0 {
			logrus.Info("empty trace accepted")
			return &Result{}, nil
		}
		horizon = ImpliedHorizon(cfg, supplied)
	}

	// A prefix needs no more events than it holds; a complete trace needs one
	// more to tell that it stopped short.
	needed := len(supplied)
	if complete {
		needed++
	}

	logrus.Infof("verifying %d events against a replay up to cycle %d", len(supplied), horizon)
	s := sim.NewSimulator(cfg, horizon)
	s.UseStrategy = !opts.NoStrategy
	s.Start()
	checked := 0
	for {
		more := s.Advance()
		for ; checked < len(s.Trace) && checked < len(supplied); checked++ {
			if supplied[checked] != s.Trace[checked] {
				return nil, &MismatchError{Line: checked + 1, Expected: s.Trace[checked], Actual: supplied[checked]}
			}
		}
		if !more || len(s.Trace) >= needed {
			break
		}
	}
	expected := s.Trace

	if len(supplied) > len(expected) {
		return nil, &ExtraEventsError{Line: len(expected) + 1, Actual: supplied[len(expected)]}
	}
	if complete && len(supplied) < len(expected) {
		return nil, &TooShortError{Line: len(supplied) + 1, Expected: expected[len(supplied)]}
	}

	logrus.Info("trace validated successfully")
	return &Result{Horizon: horizon, Expected: expected, Simulator: s}, nil
}

// ImpliedHorizon returns the latest completion cycle of the supplied events:
// the maximum of cycle + delay, saturating at math.MaxInt64. Every supplied
// process must exist in cfg. When the last event also finishes last this is
// the last event's cycle plus its delay.
func ImpliedHorizon(cfg *sim.Config, supplied trace.Trace) int64 {
	var horizon int64
	for _, ev := range supplied {
		p, ok := cfg.Processes[ev.Process]
		if !ok {
			continue
		}
		if ev.Cycle > math.MaxInt64-p.Delay {
			return math.MaxInt64
		}
		horizon = max(horizon, ev.Cycle+p.Delay)
	}
	return horizon
}
