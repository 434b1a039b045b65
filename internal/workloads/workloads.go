// Package workloads holds the built-in benchmark workloads: an empty counting
// loop, a Fibonacci loop, a Mandelbrot escape-time sampler and three Vec2
// arithmetic loops.
package workloads

import (
	"github.com/pkg/errors"

	"github.com/violenttestpen/jikkou/internal/bench"
)

// Iterations are the inner loop counts of the iteration-driven workloads.
type Iterations struct {
	Range         int
	Fib           int
	Vec2CreateAdd int
	Vec2Add       int
	Vec2Distance  int
}

// Params parameterise every built-in workload.
type Params struct {
	Iterations Iterations
	Mandelbrot Grid
}

// DefaultParams match the reference scripts.
func DefaultParams() Params {
	return Params{
		Iterations: Iterations{
			Range:         10_000_000,
			Fib:           10_000_000,
			Vec2CreateAdd: 100_000,
			Vec2Add:       100_000,
			Vec2Distance:  1_000_000,
		},
		Mandelbrot: DefaultGrid(),
	}
}

// Validate checks every count and the Mandelbrot grid.
func (p Params) Validate() error {
	counts := map[string]int{
		"range":           p.Iterations.Range,
		"fib":             p.Iterations.Fib,
		"vec2_create_add": p.Iterations.Vec2CreateAdd,
		"vec2_add":        p.Iterations.Vec2Add,
		"vec2_distance":   p.Iterations.Vec2Distance,
	}
	for name, n := range counts {
		if n < 0 {
			return errors.Errorf("iterations.%s must not be negative, got %d", name, n)
		}
	}
	return p.Mandelbrot.Validate()
}

// Register adds every built-in workload to r in a fixed order.
func Register(r *bench.Registry, p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	all := []bench.Workload{
		RangeIterations(p.Iterations.Range),
		FibIterations(p.Iterations.Fib),
		Mandelbrot(p.Mandelbrot),
		Vec2CreateAdd(p.Iterations.Vec2CreateAdd),
		Vec2Add(p.Iterations.Vec2Add),
		Vec2Distance(p.Iterations.Vec2Distance),
	}
	for _, w := range all {
		if err := r.Register(w); err != nil {
			return err
		}
	}
	return nil
}
