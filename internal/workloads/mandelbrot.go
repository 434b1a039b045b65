package workloads

import (
	"fmt"
	"math"

	"github.com/pkg/errors"

	"github.com/violenttestpen/jikkou/internal/bench"
)

// Grid is the sampling window of the Mandelbrot workload.
type Grid struct {
	Size    int
	XMin    float64
	XMax    float64
	YMin    float64
	YMax    float64
	MaxIter int
}

// DefaultGrid is 256x256 points over [-2,2]x[-2,2] with a 255 escape cap.
func DefaultGrid() Grid {
	return Grid{Size: 256, XMin: -2, XMax: 2, YMin: -2, YMax: 2, MaxIter: 255}
}

// Validate rejects grids that would sample nothing.
func (g Grid) Validate() error {
	if g.Size < 1 {
		return errors.Errorf("mandelbrot grid size must be at least 1, got %d", g.Size)
	}
	if g.MaxIter < 1 {
		return errors.Errorf("mandelbrot max_iter must be at least 1, got %d", g.MaxIter)
	}
	if !(g.XMin < g.XMax) || !(g.YMin < g.YMax) {
		return errors.Errorf("mandelbrot bounds are empty: [%g,%g]x[%g,%g]", g.XMin, g.XMax, g.YMin, g.YMax)
	}
	return nil
}

// norm2 is kept as re*re - im*(-im) so sums match the reference scripts bit for bit.
func norm2(re, im float64) float64 {
	return float64(re*re) - float64(im*(-im))
}

func magnitude(re, im float64) float64 {
	return math.Sqrt(norm2(re, im))
}

// Level is the escape time of c = x+iy: the iteration at which |z| first
// exceeds 2, or maxIter if it never does. z starts at c. Products are
// rounded before they are added so no platform fuses them into FMAs.
func Level(x, y float64, maxIter int) int {
	cre, cim := x, y
	zre, zim := cre, cim

	for i := 0; i < maxIter; i++ {
		tre := float64(zre*zre) - float64(zim*zim)
		tim := float64(zre*zim) + float64(zim*zre)

		zre = tre + cre
		zim = tim + cim

		if magnitude(zre, zim) > 2 {
			return i
		}
	}
	return maxIter
}

// LevelSum adds up Level over every grid point.
func (g Grid) LevelSum() int {
	n := g.Size
	dx := (g.XMax - g.XMin) / float64(n)
	dy := (g.YMax - g.YMin) / float64(n)

	sum := 0
	for xi := 0; xi < n; xi++ {
		x := g.XMin + float64(float64(xi)*dx)
		for yi := 0; yi < n; yi++ {
			y := g.YMin + float64(float64(yi)*dy)
			sum += Level(x, y, g.MaxIter)
		}
	}
	return sum
}

// Mandelbrot samples g on every repeat and echoes the level sum.
func Mandelbrot(g Grid) bench.Workload {
	return bench.Workload{
		Name:        "mandelbrot-level",
		Description: fmt.Sprintf("mandelbrot %dx%d level sum", g.Size, g.Size),
		Fn: func() (bench.Result, error) {
			return bench.Value(float64(g.LevelSum())), nil
		},
	}
}
