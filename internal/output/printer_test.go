package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"

	"github.com/violenttestpen/jikkou/internal/bench"
	"github.com/violenttestpen/jikkou/internal/stats"
)

func init() {
	color.NoColor = true
}

func sampleOf(d time.Duration, result bench.Result) bench.Sample {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return bench.Sample{Start: start, End: start.Add(d), Result: result}
}

func TestSampleLine(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{})

	p.Sample("10m range() iterations", sampleOf(12345600*time.Nanosecond, bench.NoResult))
	p.Sample("mandelbrot 256x256 level sum", sampleOf(250*time.Millisecond, bench.Value(1234567)))
	p.Sample("1m Vec2 distance()", sampleOf(time.Millisecond, bench.Value(2.5)))

	assert.Equal(t, strings.Join([]string{
		"10m range() iterations took 12.35 ms",
		"mandelbrot 256x256 level sum took 250.00 ms | 1234567",
		"1m Vec2 distance() took 1.00 ms | 2.5",
		"",
	}, "\n"), out.String())
}

func TestSummaryBlock(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{})

	p.Summary(stats.Summary{
		Workload: "w",
		Count:    15,
		Mean:     20 * time.Millisecond,
		Stdev:    2 * time.Millisecond,
		Min:      18 * time.Millisecond,
		Max:      30 * time.Millisecond,
		Median:   19 * time.Millisecond,
		CPU:      bench.CPUTime{User: 19 * time.Millisecond, System: 500 * time.Microsecond},
	})

	text := out.String()
	assert.Contains(t, text, "Time (mean ± σ):\t20.00 ms ± 2.00 ms\t[User: 19.00 ms, System: 500.00 µs]")
	assert.Contains(t, text, "Range (min … max):\t18.00 ms … 30.00 ms\t15 runs, median 19.00 ms")

	out.Reset()
	p.Summary(stats.Summary{Workload: "none"})
	assert.Contains(t, out.String(), "no successful runs")
}

func TestComparison(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinter(&out, &bytes.Buffer{})

	p.Comparison(stats.Summary{Workload: "fast"}, nil)
	assert.Empty(t, out.String())

	p.Comparison(stats.Summary{Workload: "fast"}, []stats.Comparison{
		{Summary: stats.Summary{Workload: "slow"}, Ratio: 3, Spread: 0.25},
	})
	assert.Equal(t, "Summary\n  'fast' ran\n    3.00 ± 0.25 times faster than 'slow'\n", out.String())
}

func TestProgressSilentWithoutTerminal(t *testing.T) {
	var progress bytes.Buffer
	p := NewPrinter(&bytes.Buffer{}, &progress)

	p.Progress("w", 1, 3)
	p.ProgressDone()
	assert.Empty(t, progress.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "", progressBar(0, 0.5))
	assert.Equal(t, "██▒▒", progressBar(4, 0.5))
	assert.Equal(t, "████", progressBar(4, 2))
	assert.Equal(t, "▒▒▒▒", progressBar(4, -1))
}

func TestFormatETA(t *testing.T) {
	assert.Equal(t, "00:00:00", formatETA(0))
	assert.Equal(t, "01:02:03", formatETA(time.Hour+2*time.Minute+3*time.Second))
	assert.Equal(t, "00:01:30", formatETA(89600*time.Millisecond))
}

func TestFormatResult(t *testing.T) {
	assert.Equal(t, "0", FormatResult(0))
	assert.Equal(t, "1234567", FormatResult(1234567))
	assert.Equal(t, "0.125", FormatResult(0.125))
}
