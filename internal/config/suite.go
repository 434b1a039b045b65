// Package config loads the optional TOML suite file that selects workloads
// and tunes how they run.
package config

import (
	"io"
	"os"

	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/violenttestpen/jikkou/internal/bench"
	"github.com/violenttestpen/jikkou/internal/workloads"
)

var log = logger.GetOrCreate("config")

// DefaultRepeats is how many timed repeats each workload gets.
const DefaultRepeats = 15

// Suite is the whole benchmark configuration.
type Suite struct {
	Repeats    int        `toml:"repeats"`
	Warmup     int        `toml:"warmup"`
	Policy     string     `toml:"policy"`
	Workloads  []string   `toml:"workloads"`
	Mandelbrot Mandelbrot `toml:"mandelbrot"`
	Iterations Iterations `toml:"iterations"`
}

// Mandelbrot is the [mandelbrot] table.
type Mandelbrot struct {
	Size    int     `toml:"size"`
	XMin    float64 `toml:"xmin"`
	XMax    float64 `toml:"xmax"`
	YMin    float64 `toml:"ymin"`
	YMax    float64 `toml:"ymax"`
	MaxIter int     `toml:"max_iter"`
}

// Iterations is the [iterations] table.
type Iterations struct {
	Range         int `toml:"range"`
	Fib           int `toml:"fib"`
	Vec2CreateAdd int `toml:"vec2_create_add"`
	Vec2Add       int `toml:"vec2_add"`
	Vec2Distance  int `toml:"vec2_distance"`
}

// Default is the suite used when no file is given.
func Default() Suite {
	p := workloads.DefaultParams()
	return Suite{
		Repeats: DefaultRepeats,
		Policy:  bench.FailFast.String(),
		Mandelbrot: Mandelbrot{
			Size:    p.Mandelbrot.Size,
			XMin:    p.Mandelbrot.XMin,
			XMax:    p.Mandelbrot.XMax,
			YMin:    p.Mandelbrot.YMin,
			YMax:    p.Mandelbrot.YMax,
			MaxIter: p.Mandelbrot.MaxIter,
		},
		Iterations: Iterations{
			Range:         p.Iterations.Range,
			Fib:           p.Iterations.Fib,
			Vec2CreateAdd: p.Iterations.Vec2CreateAdd,
			Vec2Add:       p.Iterations.Vec2Add,
			Vec2Distance:  p.Iterations.Vec2Distance,
		},
	}
}

// Load decodes a suite from r on top of Default. Unknown keys are rejected.
func Load(r io.Reader) (Suite, error) {
	s := Default()
	if err := toml.NewDecoder(r).Strict(true).Decode(&s); err != nil {
		return Suite{}, errors.Wrap(err, "decoding suite")
	}
	if err := s.Validate(); err != nil {
		return Suite{}, err
	}
	return s, nil
}

// LoadFile opens path and decodes it with Load.
func LoadFile(path string) (Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return Suite{}, errors.Wrap(err, "opening suite file")
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn("cannot close suite file", "path", path, "error", err.Error())
		}
	}()

	s, err := Load(f)
	if err != nil {
		return Suite{}, errors.Wrapf(err, "loading %s", path)
	}
	log.Debug("loaded suite", "path", path, "repeats", s.Repeats, "workloads", len(s.Workloads))
	return s, nil
}

// Validate checks every field.
func (s Suite) Validate() error {
	if s.Repeats < 1 {
		return errors.Wrapf(bench.ErrInvalidRepeatCount, "repeats = %d", s.Repeats)
	}
	if s.Warmup < 0 {
		return errors.Errorf("warmup must not be negative, got %d", s.Warmup)
	}
	if _, err := bench.ParsePolicy(s.Policy); err != nil {
		return err
	}
	return s.Params().Validate()
}

// FailurePolicy returns the parsed policy.
func (s Suite) FailurePolicy() (bench.Policy, error) {
	return bench.ParsePolicy(s.Policy)
}

// Params converts the workload tables into workload parameters.
func (s Suite) Params() workloads.Params {
	return workloads.Params{
		Iterations: workloads.Iterations{
			Range:         s.Iterations.Range,
			Fib:           s.Iterations.Fib,
			Vec2CreateAdd: s.Iterations.Vec2CreateAdd,
			Vec2Add:       s.Iterations.Vec2Add,
			Vec2Distance:  s.Iterations.Vec2Distance,
		},
		Mandelbrot: workloads.Grid{
			Size:    s.Mandelbrot.Size,
			XMin:    s.Mandelbrot.XMin,
			XMax:    s.Mandelbrot.XMax,
			YMin:    s.Mandelbrot.YMin,
			YMax:    s.Mandelbrot.YMax,
			MaxIter: s.Mandelbrot.MaxIter,
		},
	}
}
