package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/violenttestpen/jikkou/internal/bench"
	"github.com/violenttestpen/jikkou/internal/workloads"
)

func TestDefault(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())

	assert.Equal(t, 15, s.Repeats)
	assert.Equal(t, 0, s.Warmup)
	assert.Empty(t, s.Workloads)

	policy, err := s.FailurePolicy()
	require.NoError(t, err)
	assert.Equal(t, bench.FailFast, policy)
	assert.Equal(t, workloads.DefaultParams(), s.Params())
}

func TestLoadOverridesDefaults(t *testing.T) {
	s, err := Load(strings.NewReader(`
repeats = 3
policy = "skip-and-continue"
workloads = ["mandelbrot-level", "vec2-add"]

[mandelbrot]
size = 64
xmin = -1.5

[iterations]
vec2_add = 500
`))
	require.NoError(t, err)

	assert.Equal(t, 3, s.Repeats)
	assert.Equal(t, []string{"mandelbrot-level", "vec2-add"}, s.Workloads)

	policy, err := s.FailurePolicy()
	require.NoError(t, err)
	assert.Equal(t, bench.SkipAndContinue, policy)

	p := s.Params()
	assert.Equal(t, 64, p.Mandelbrot.Size)
	assert.Equal(t, -1.5, p.Mandelbrot.XMin)
	assert.Equal(t, 2.0, p.Mandelbrot.XMax, "untouched keys keep their defaults")
	assert.Equal(t, 255, p.Mandelbrot.MaxIter)
	assert.Equal(t, 500, p.Iterations.Vec2Add)
	assert.Equal(t, 10_000_000, p.Iterations.Range)
}

func TestLoadRejects(t *testing.T) {
	tests := map[string]string{
		"zero repeats":    "repeats = 0",
		"negative warmup": "warmup = -1",
		"unknown policy":  `policy = "retry"`,
		"unknown key":     "colour = true",
		"empty grid":      "[mandelbrot]\nsize = 0",
		"inverted bounds": "[mandelbrot]\nymin = 3.0",
		"negative count":  "[iterations]\nfib = -5",
		"not toml":        "repeats = = 3",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := Load(strings.NewReader("repeats = 0"))
	assert.True(t, errors.Is(err, bench.ErrInvalidRepeatCount))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "suite.toml")
	require.NoError(t, os.WriteFile(path, []byte("warmup = 2\n"), 0o644))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Warmup)
	assert.Equal(t, DefaultRepeats, s.Repeats)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
