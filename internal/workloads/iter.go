package workloads

import (
	"fmt"

	"github.com/violenttestpen/jikkou/internal/bench"
)

// Package-level sinks keep the compiler from discarding loop bodies.
var (
	intSink   int
	floatSink float64
)

// RangeIterations counts from 0 to n doing nothing else.
func RangeIterations(n int) bench.Workload {
	return bench.Workload{
		Name:        "range-iterations",
		Description: fmt.Sprintf("%s range() iterations", shortCount(n)),
		Fn: func() (bench.Result, error) {
			i := 0
			for ; i < n; i++ {
			}
			intSink = i
			return bench.NoResult, nil
		},
	}
}

// FibIterations advances a floating point Fibonacci pair n times.
func FibIterations(n int) bench.Workload {
	return bench.Workload{
		Name:        "fib-iterations",
		Description: fmt.Sprintf("%s fib() iterations", shortCount(n)),
		Fn: func() (bench.Result, error) {
			floatSink = fib(n)
			return bench.NoResult, nil
		},
	}
}

func fib(n int) float64 {
	a, b := 0.0, 1.0
	for i := 0; i < n; i++ {
		a, b = b, a+b
	}
	return a
}

// shortCount renders 10000000 as "10m" and 100000 as "100k".
func shortCount(n int) string {
	switch {
	case n >= 1_000_000 && n%1_000_000 == 0:
		return fmt.Sprintf("%dm", n/1_000_000)
	case n >= 1_000 && n%1_000 == 0:
		return fmt.Sprintf("%dk", n/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
