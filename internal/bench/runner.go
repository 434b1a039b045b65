package bench

import (
	"context"
	"strconv"
	"time"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/pkg/errors"
)

var log = logger.GetOrCreate("bench")

// Policy decides what happens to the remaining repeats after one fails.
type Policy int

const (
	// FailFast stops the run at the first failed repeat.
	FailFast Policy = iota
	// SkipAndContinue records the failure and moves on to the next repeat.
	SkipAndContinue
)

func (p Policy) String() string {
	switch p {
	case FailFast:
		return "fail-fast"
	case SkipAndContinue:
		return "skip-and-continue"
	default:
		return "policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// ParsePolicy is the inverse of Policy.String.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "fail-fast":
		return FailFast, nil
	case "skip-and-continue", "continue":
		return SkipAndContinue, nil
	default:
		return FailFast, errors.Errorf("unknown failure policy %q", s)
	}
}

// Tracer receives nested begin/end events around each run and repeat.
type Tracer interface {
	Push(name string)
	Pop()
}

// Option configures a Runner.
type Option func(*Runner)

// WithPolicy sets the failure policy. The default is FailFast.
func WithPolicy(p Policy) Option {
	return func(r *Runner) { r.policy = p }
}

// WithWarmup runs n untimed repeats before measuring.
func WithWarmup(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.warmup = n
		}
	}
}

// WithClock replaces time.Now as the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithObserver is called with every sample right after it is recorded.
func WithObserver(fn func(Sample)) Option {
	return func(r *Runner) { r.observe = fn }
}

// WithWarmupProgress is called after every warmup repeat.
func WithWarmupProgress(fn func(done, total int)) Option {
	return func(r *Runner) { r.warmupProgress = fn }
}

// WithTracer records a begin/end event per run and per repeat.
func WithTracer(t Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// Runner executes workloads sequentially and times every repeat.
type Runner struct {
	policy         Policy
	warmup         int
	now            func() time.Time
	cpu            cpuClock
	observe        func(Sample)
	warmupProgress func(done, total int)
	tracer         Tracer
}

// NewRunner returns a Runner configured with opts.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		policy: FailFast,
		now:    time.Now,
		cpu:    processCPU,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes w exactly repeats times, one after another, and returns the
// samples in execution order. On failure the report holds every sample taken
// so far and the returned error wraps one *WorkloadExecutionError per failed
// repeat.
func (r *Runner) Run(ctx context.Context, w Workload, repeats int) (*Report, error) {
	report := &Report{Workload: w.Name, State: Idle}
	if repeats < 1 {
		return report, errors.Wrapf(ErrInvalidRepeatCount, "got %d", repeats)
	}
	if w.Fn == nil {
		return report, errors.Errorf("workload %q has no function", w.Name)
	}

	report.State = Running
	report.Samples = make([]Sample, 0, repeats)

	if r.tracer != nil {
		r.tracer.Push(w.Name)
		defer r.tracer.Pop()
	}

	if err := r.runWarmup(ctx, w); err != nil {
		report.State = Failed
		return report, err
	}

	log.Debug("starting run", "workload", w.Name, "repeats", repeats, "policy", r.policy.String())

	var errs []error
	for i := 0; i < repeats; i++ {
		if err := ctx.Err(); err != nil {
			report.State = Failed
			return report, errors.Wrapf(err, "run of %q interrupted before repeat %d", w.Name, i)
		}

		sample, err := r.measure(w, i)
		if err != nil {
			execErr := &WorkloadExecutionError{Workload: w.Name, Index: i, Err: err}
			report.Failures = append(report.Failures, execErr)
			errs = append(errs, execErr)
			log.Warn("workload failed", "workload", w.Name, "repeat", i, "error", err.Error())

			if r.policy == FailFast {
				report.State = Failed
				return report, execErr
			}
			continue
		}

		report.Samples = append(report.Samples, sample)
		if r.observe != nil {
			r.observe(sample)
		}
	}

	if len(errs) > 0 {
		report.State = Failed
		return report, joinErrors(errs)
	}

	report.State = Completed
	log.Debug("run completed", "workload", w.Name, "samples", len(report.Samples))
	return report, nil
}

func (r *Runner) runWarmup(ctx context.Context, w Workload) error {
	for i := 0; i < r.warmup; i++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "warmup of %q interrupted", w.Name)
		}
		if _, err := invoke(w.Fn); err != nil {
			return &WorkloadExecutionError{Workload: w.Name, Index: i, Warmup: true, Err: err}
		}
		if r.warmupProgress != nil {
			r.warmupProgress(i+1, r.warmup)
		}
	}
	return nil
}

func (r *Runner) measure(w Workload, index int) (Sample, error) {
	if r.tracer != nil {
		r.tracer.Push("repeat " + strconv.Itoa(index))
		defer r.tracer.Pop()
	}

	cpuBefore, cpuErr := r.cpu.Now()

	start := r.now()
	result, err := invoke(w.Fn)
	end := r.now()

	if err != nil {
		return Sample{}, err
	}

	sample := Sample{
		Workload: w.Name,
		Index:    index,
		Start:    start,
		End:      end,
		Result:   result,
	}

	if cpuErr == nil {
		if cpuAfter, err := r.cpu.Now(); err == nil {
			sample.CPU = cpuDelta(cpuBefore, cpuAfter)
		}
	}

	log.Trace("sample recorded", "workload", w.Name, "repeat", index, "duration", sample.Duration())
	return sample, nil
}

// invoke calls fn once, turning a panic into an error.
func invoke(fn Func) (res Result, err error) {
	defer func() {
		if v := recover(); v != nil {
			err = panicError{value: v}
		}
	}()
	return fn()
}
