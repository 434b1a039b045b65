package bench

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidRepeatCount is returned when a run asks for fewer than one repeat.
	ErrInvalidRepeatCount = errors.New("repeat count must be at least 1")
	// ErrDuplicateWorkload is returned when a name is registered twice.
	ErrDuplicateWorkload = errors.New("workload already registered")
	// ErrUnknownWorkload is returned when a lookup misses.
	ErrUnknownWorkload = errors.New("unknown workload")
)

// WorkloadExecutionError reports a workload that failed during a timed (or
// warmup) repeat.
type WorkloadExecutionError struct {
	Workload string
	Index    int
	Warmup   bool
	Err      error
}

func (e *WorkloadExecutionError) Error() string {
	phase := "repeat"
	if e.Warmup {
		phase = "warmup repeat"
	}
	return fmt.Sprintf("workload %q failed on %s %d: %v", e.Workload, phase, e.Index, e.Err)
}

func (e *WorkloadExecutionError) Unwrap() error {
	return e.Err
}

// panicError carries a value recovered from a panicking workload.
type panicError struct {
	value interface{}
}

func (p panicError) Error() string {
	return fmt.Sprintf("panic: %v", p.value)
}

// multiError is what a skip-and-continue run returns when more than one
// repeat failed.
type multiError []error

func (m multiError) Error() string {
	msgs := make([]string, 0, len(m))
	for _, err := range m {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func (m multiError) Unwrap() []error {
	return m
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return multiError(errs)
	}
}
