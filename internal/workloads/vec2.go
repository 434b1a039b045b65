package workloads

import (
	"fmt"
	"math"

	"github.com/violenttestpen/jikkou/internal/bench"
)

var vecSink *Vec2

// Vec2 is a heap-allocated 2-D vector.
type Vec2 struct {
	X, Y float64
}

func NewVec2(x, y float64) *Vec2 {
	return &Vec2{X: x, Y: y}
}

// Add returns a new vector.
func (v *Vec2) Add(o *Vec2) *Vec2 {
	return NewVec2(v.X+o.X, v.Y+o.Y)
}

// Distance is the length of v+o.
func (v *Vec2) Distance(o *Vec2) float64 {
	sx := v.X + o.X
	sy := v.Y + o.Y
	return math.Sqrt(sx*sx + sy*sy)
}

// Vec2CreateAdd allocates two vectors and their sum n times.
func Vec2CreateAdd(n int) bench.Workload {
	return bench.Workload{
		Name:        "vec2-create-add",
		Description: fmt.Sprintf("%s Vec2 create, create, add iterations", shortCount(n)),
		Fn: func() (bench.Result, error) {
			for i := 0; i < n; i++ {
				a := NewVec2(5, 5)
				b := NewVec2(10, 10)
				vecSink = a.Add(b)
			}
			return bench.NoResult, nil
		},
	}
}

// Vec2Add adds the same two vectors n times.
func Vec2Add(n int) bench.Workload {
	return bench.Workload{
		Name:        "vec2-add",
		Description: fmt.Sprintf("%s Vec2 add iterations", shortCount(n)),
		Fn: func() (bench.Result, error) {
			a := NewVec2(5, 5)
			b := NewVec2(10, 10)
			for i := 0; i < n; i++ {
				vecSink = a.Add(b)
			}
			return bench.NoResult, nil
		},
	}
}

// Vec2Distance accumulates a.Distance(b) n times and echoes the total.
func Vec2Distance(n int) bench.Workload {
	return bench.Workload{
		Name:        "vec2-distance",
		Description: fmt.Sprintf("%s Vec2 distance()", shortCount(n)),
		Fn: func() (bench.Result, error) {
			a := NewVec2(5, 5)
			b := NewVec2(10, 10)
			c := 0.0
			for i := 0; i < n; i++ {
				c += a.Distance(b)
			}
			return bench.Value(c), nil
		},
	}
}
