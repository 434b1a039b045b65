package stats

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/violenttestpen/jikkou/internal/bench"
)

var denominators = []time.Duration{time.Hour, time.Minute, time.Second, time.Millisecond, time.Microsecond, time.Nanosecond}
var units = []string{"h", "m", "s", "ms", "µs", "ns"}

// Unit picks the largest unit that d fills at least once.
func Unit(d time.Duration) (time.Duration, string) {
	for i, denominator := range denominators {
		if d/denominator > 0 {
			return denominator, units[i]
		}
	}
	return time.Nanosecond, "ns"
}

// Format renders d in its own unit with two decimals, e.g. "12.34 ms".
func Format(d time.Duration) string {
	denominator, unit := Unit(d)
	return FormatIn(d, denominator, unit)
}

// FormatIn renders d in a unit chosen elsewhere, so a mean and its σ line up.
func FormatIn(d, denominator time.Duration, unit string) string {
	return fmt.Sprintf("%.2f %s", float64(d)/float64(denominator), unit)
}

// Milliseconds is d as fractional milliseconds.
func Milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Summary describes the samples of one report.
type Summary struct {
	Workload string
	Count    int
	Mean     time.Duration
	Stdev    time.Duration
	Min      time.Duration
	Max      time.Duration
	Median   time.Duration
	CPU      bench.CPUTime
}

// Summarize computes a Summary over every sample in r. An empty report
// yields a zero Summary with only the workload name set.
func Summarize(r *bench.Report) Summary {
	s := Summary{Workload: r.Workload}
	durations := r.Durations()
	if len(durations) == 0 {
		return s
	}

	minElapsed := time.Duration(math.MaxInt64)
	maxElapsed := time.Duration(math.MinInt64)
	var totalElapsed time.Duration
	for _, elapsed := range durations {
		totalElapsed += elapsed
		if elapsed < minElapsed {
			minElapsed = elapsed
		}
		if elapsed > maxElapsed {
			maxElapsed = elapsed
		}
	}

	s.Count = len(durations)
	s.Mean = totalElapsed / time.Duration(s.Count)
	s.Min = minElapsed
	s.Max = maxElapsed
	s.Stdev = Stdev(durations, s.Mean)
	s.Median = median(durations)
	s.CPU = r.MeanCPU()
	return s
}

// Stdev is the sample standard deviation around mean. It is zero for fewer
// than two values.
func Stdev(values []time.Duration, mean time.Duration) time.Duration {
	if len(values) < 2 {
		return 0
	}
	var numerator float64
	for _, value := range values {
		delta := float64(value - mean)
		numerator += delta * delta
	}
	return time.Duration(math.Sqrt(numerator / float64(len(values)-1)))
}

func median(values []time.Duration) time.Duration {
	sorted := append([]time.Duration(nil), values...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Comparison relates a slower summary to the fastest one.
type Comparison struct {
	Summary
	// Ratio is how many times slower this workload is than the fastest.
	Ratio float64
	// Spread is the uncertainty of Ratio derived from both σ values.
	Spread float64
}

// Compare sorts summaries by mean and relates every one to the fastest.
// Summaries without samples are ignored.
func Compare(summaries []Summary) (Summary, []Comparison) {
	var usable []Summary
	for _, s := range summaries {
		if s.Count > 0 {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 {
		return Summary{}, nil
	}

	sort.SliceStable(usable, func(i, j int) bool { return usable[i].Mean < usable[j].Mean })
	fastest := usable[0]

	comparisons := make([]Comparison, 0, len(usable)-1)
	for _, s := range usable[1:] {
		comparisons = append(comparisons, compareTo(fastest, s))
	}
	return fastest, comparisons
}

func compareTo(fastest, s Summary) Comparison {
	c := Comparison{Summary: s}
	if fastest.Mean <= 0 {
		return c
	}

	mean, sd := float64(s.Mean), float64(s.Stdev)
	fMean, fSd := float64(fastest.Mean), float64(fastest.Stdev)

	c.Ratio = mean / fMean
	if fMean-fSd <= 0 {
		return c
	}
	posStdevMultiplier := (mean+sd)/(fMean+fSd) - c.Ratio
	negStdevMultiplier := c.Ratio - (mean-sd)/(fMean-fSd)
	c.Spread = math.Abs(posStdevMultiplier) + math.Abs(negStdevMultiplier)
	return c
}
