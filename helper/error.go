package helper

import (
	"strings"
)

// Error wraps an original error with the trace of operations it passed through.
type Error struct {
	Original error
	Trace    []string
}

// NewError wraps err with the given trace step.
// If err already is an Error the step is appended to its trace.
func NewError(trace string, err error) error {
	if err == nil {
		return nil
	}

	if traced, ok := err.(Error); ok {
		return Error{
			Original: traced.Original,
			Trace:    append(append([]string{}, traced.Trace...), trace),
		}
	}

	return Error{
		Original: err,
		Trace:    []string{trace},
	}
}

// Error returns the trace from outermost to innermost operation followed by the original message.
func (e Error) Error() string {
	steps := make([]string, 0, len(e.Trace))
	for i := len(e.Trace) - 1; i >= 0; i-- {
		steps = append(steps, e.Trace[i])
	}
	if e.Original == nil {
		return strings.Join(steps, ": ")
	}
	return strings.Join(append(steps, e.Original.Error()), ": ")
}

// Unwrap returns the original error so errors.Is works through traces.
func (e Error) Unwrap() error {
	return e.Original
}
