package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/violenttestpen/jikkou/internal/bench"
	"github.com/violenttestpen/jikkou/internal/stats"
)

const (
	progressDoneRune    = "█"
	progressPendingRune = "▒"
)

// Printer writes sample lines and summaries to out and transient progress to
// progress. Progress is only drawn when progress is a terminal.
type Printer struct {
	out      io.Writer
	progress io.Writer
	fd       int
	tty      bool

	progressStart time.Time
}

// NewPrinter returns a Printer. Pass color.Output as out to get colours on
// Windows consoles too.
func NewPrinter(out, progress io.Writer) *Printer {
	p := &Printer{out: out, progress: progress, fd: -1}
	if f, ok := progress.(*os.File); ok {
		p.fd = int(f.Fd())
		p.tty = term.IsTerminal(p.fd)
	}
	return p
}

// Sample prints "<label> took <ms> ms", followed by " | <result>" when the
// sample echoed one.
func (p *Printer) Sample(label string, s bench.Sample) {
	line := fmt.Sprintf("%s took %s ms", label, color.GreenString("%.2f", stats.Milliseconds(s.Duration())))
	if s.Result.Valid {
		line += " | " + color.CyanString("%s", FormatResult(s.Result.Value))
	}
	fmt.Fprintln(p.out, line)
}

// FormatResult prints integral values without a fraction and everything else
// with the shortest exact representation.
func FormatResult(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Header introduces a workload in summary mode.
func (p *Printer) Header(i int, w bench.Workload) {
	fmt.Fprintf(p.out, "Benchmark #%d: %s\n", i, w.Name)
}

// Summary prints the mean ± σ and range block for one workload.
func (p *Printer) Summary(s stats.Summary) {
	if s.Count == 0 {
		fmt.Fprintf(p.out, "  %s\n\n", color.RedString("no successful runs"))
		return
	}

	denominator, unit := stats.Unit(s.Mean)
	fmt.Fprintf(p.out, "  Time (%s ± %s):\t%s ± %s\t%s\n",
		color.GreenString("mean"),
		color.GreenString("σ"),
		color.GreenString("%s", stats.FormatIn(s.Mean, denominator, unit)),
		color.GreenString("%s", stats.FormatIn(s.Stdev, denominator, unit)),
		fmt.Sprintf("[User: %s, System: %s]",
			color.CyanString("%s", stats.Format(s.CPU.User)),
			color.CyanString("%s", stats.Format(s.CPU.System))))
	fmt.Fprintf(p.out, "  Range (%s … %s):\t%s … %s\t%s\n",
		color.CyanString("min"),
		color.RedString("max"),
		color.CyanString("%s", stats.FormatIn(s.Min, denominator, unit)),
		color.RedString("%s", stats.FormatIn(s.Max, denominator, unit)),
		color.HiBlackString("%d runs, median %s", s.Count, stats.FormatIn(s.Median, denominator, unit)))
	fmt.Fprintln(p.out)
}

// Comparison prints how much faster the fastest workload ran than the rest.
func (p *Printer) Comparison(fastest stats.Summary, others []stats.Comparison) {
	if len(others) == 0 {
		return
	}
	fmt.Fprintln(p.out, "Summary")
	fmt.Fprintf(p.out, "  '%s' ran\n", color.CyanString("%s", fastest.Workload))
	for _, c := range others {
		fmt.Fprintf(p.out, "    %s ± %s times faster than '%s'\n",
			color.GreenString("%.2f", c.Ratio),
			color.GreenString("%.2f", c.Spread),
			color.RedString("%s", c.Workload))
	}
}

// Line prints a plain line to out.
func (p *Printer) Line(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Progress redraws the warmup progress bar.
func (p *Printer) Progress(label string, done, total int) {
	if !p.tty || total <= 0 {
		return
	}
	if done <= 1 || p.progressStart.IsZero() {
		p.progressStart = time.Now()
	}

	elapsed := time.Since(p.progressStart)
	eta := time.Duration(0)
	if done > 0 {
		eta = elapsed / time.Duration(done) * time.Duration(total-done)
	}

	clearCurrentTerminalLine(p.progress)
	line := fmt.Sprintf("Warming up %s ", color.GreenString("%s", label))
	p.printProgressLine(line, float64(done)/float64(total), eta)
}

// ProgressDone erases the progress bar.
func (p *Printer) ProgressDone() {
	if !p.tty {
		return
	}
	clearCurrentTerminalLine(p.progress)
	p.progressStart = time.Time{}
}

func clearCurrentTerminalLine(w io.Writer) {
	_, _ = w.Write([]byte("\r\033[K"))
}

func (p *Printer) printProgressLine(line string, progress float64, eta time.Duration) {
	terminalWidth, _, err := term.GetSize(p.fd)
	if err != nil {
		return
	}
	fmt.Fprintf(p.progress, "%s %s ETA %s", line, progressBar(terminalWidth-len(line)-2-12, progress), formatETA(eta))
}

func progressBar(width int, progress float64) string {
	if width < 1 {
		return ""
	}
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	chunks := int(progress * float64(width))
	return strings.Repeat(progressDoneRune, chunks) + strings.Repeat(progressPendingRune, width-chunks)
}

func formatETA(eta time.Duration) string {
	eta = eta.Round(time.Second)
	h := eta / time.Hour
	m := (eta % time.Hour) / time.Minute
	s := (eta % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
