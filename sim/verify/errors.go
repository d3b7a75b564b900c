package verify

import (
	"errors"
	"fmt"

	"github.com/krpsim/krpsim/sim/trace"
)

// ErrInvalidTrace matches every verification failure through errors.Is.
var ErrInvalidTrace = errors.New("invalid trace")

// UnknownProcessError reports a trace event naming a process the config lacks.
type UnknownProcessError struct {
	Line    int // 1-based
	Process string
}

func (e *UnknownProcessError) Error() string {
	return fmt.Sprintf("line %d: unknown process %q in trace", e.Line, e.Process)
}

func (e *UnknownProcessError) Is(target error) bool { return target == ErrInvalidTrace }

// MismatchError reports the first event that differs from the replay.
type MismatchError struct {
	Line     int // 1-based
	Expected trace.Event
	Actual   trace.Event
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("line %d: expected %s but got %s", e.Line, e.Expected, e.Actual)
}

func (e *MismatchError) Is(target error) bool { return target == ErrInvalidTrace }

// ExtraEventsError reports events beyond what the replay produced.
type ExtraEventsError struct {
	Line   int // 1-based index of the first excess event
	Actual trace.Event
}

func (e *ExtraEventsError) Error() string {
	return fmt.Sprintf("trace has extra events starting at line %d (%s)", e.Line, e.Actual)
}

func (e *ExtraEventsError) Is(target error) bool { return target == ErrInvalidTrace }

// TooShortError reports a trace that stops before the replay does. It is only
// raised when a complete trace is required.
type TooShortError struct {
	Line     int // 1-based index of the first missing event
	Expected trace.Event
}

func (e *TooShortError) Error() string {
	return fmt.Sprintf("trace ended early at line %d, expected %s", e.Line, e.Expected)
}

func (e *TooShortError) Is(target error) bool { return target == ErrInvalidTrace }
