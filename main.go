package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/alecthomas/kingpin/v2"
	"github.com/fatih/color"
	logger "github.com/multiversx/mx-chain-logger-go"
	"github.com/pkg/errors"

	"github.com/violenttestpen/jikkou/internal/bench"
	"github.com/violenttestpen/jikkou/internal/config"
	"github.com/violenttestpen/jikkou/internal/hostinfo"
	"github.com/violenttestpen/jikkou/internal/output"
	"github.com/violenttestpen/jikkou/internal/profile"
	"github.com/violenttestpen/jikkou/internal/stats"
	"github.com/violenttestpen/jikkou/internal/workloads"
)

var log = logger.GetOrCreate("main")

type registerFunc func(*bench.Registry, workloads.Params) error

type cli struct {
	stdout   io.Writer
	stderr   io.Writer
	register registerFunc
}

type runOptions struct {
	runs       int
	runsSet    bool
	warmup     int
	warmupSet  bool
	policy     string
	policySet  bool
	configFile string
	summary    bool
	profileOut string
	hostInfo   bool
	workloads  []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	c := &cli{stdout: color.Output, stderr: os.Stderr, register: workloads.Register}
	code := c.run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func (c *cli) run(ctx context.Context, args []string) int {
	var (
		opts     runOptions
		noColor  bool
		logLevel string
		showFile string
	)

	app := kingpin.New("jikkou", "Run in-process micro-benchmark workloads and time every repeat.")
	app.UsageWriter(c.stdout).ErrorWriter(c.stderr)
	app.Flag("no-color", "Disable coloured output").BoolVar(&noColor)
	app.Flag("log-level", "Logger level pattern, e.g. *:DEBUG").Default("*:INFO").StringVar(&logLevel)

	runCmd := app.Command("run", "Run workloads (all of them when none are named).").Default()
	runCmd.Flag("runs", "Number of timed repeats per workload").Short('r').Default("15").IsSetByUser(&opts.runsSet).IntVar(&opts.runs)
	runCmd.Flag("warmup", "Number of untimed repeats before measuring").Short('w').Default("0").IsSetByUser(&opts.warmupSet).IntVar(&opts.warmup)
	runCmd.Flag("policy", "What to do after a failed repeat: fail-fast or skip-and-continue").Default("fail-fast").IsSetByUser(&opts.policySet).EnumVar(&opts.policy, "fail-fast", "skip-and-continue")
	runCmd.Flag("config", "TOML suite file").Short('c').StringVar(&opts.configFile)
	runCmd.Flag("summary", "Print mean, σ and range after each workload").BoolVar(&opts.summary)
	runCmd.Flag("profile", "Write a nested timing capture of the run to this file").StringVar(&opts.profileOut)
	runCmd.Flag("host-info", "Print the host CPU before running").BoolVar(&opts.hostInfo)
	runCmd.Arg("workload", "Workloads to run, in order").StringsVar(&opts.workloads)

	listCmd := app.Command("list", "List the built-in workloads.")
	listConfig := listCmd.Flag("config", "TOML suite file").Short('c').String()

	profileCmd := app.Command("profile", "Inspect timing captures.")
	showCmd := profileCmd.Command("show", "Print the event tree of a capture.")
	showCmd.Arg("file", "Capture written by run --profile").Required().StringVar(&showFile)

	cmd, err := app.Parse(args)
	if err != nil {
		fmt.Fprintf(c.stderr, "jikkou: %v\n", err)
		return 1
	}

	if noColor {
		color.NoColor = true
	}
	if err := setupLogging(logLevel, c.stderr); err != nil {
		fmt.Fprintf(c.stderr, "jikkou: %v\n", err)
		return 1
	}

	switch cmd {
	case listCmd.FullCommand():
		err = c.list(*listConfig)
	case showCmd.FullCommand():
		err = c.showProfile(showFile)
	default:
		err = c.runSuite(ctx, opts)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "jikkou: %v\n", err)
		return 1
	}
	return 0
}

// setupLogging moves log output off stdout, which carries the sample lines.
// Any previous observer is dropped, so w is the only log destination.
func setupLogging(level string, w io.Writer) error {
	logger.ClearLogObservers()
	if err := logger.AddLogObserver(w, &logger.PlainFormatter{}); err != nil {
		return errors.Wrap(err, "adding log observer")
	}
	return errors.Wrap(logger.SetLogLevel(level), "setting log level")
}

func loadSuite(path string) (config.Suite, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.LoadFile(path)
}

func (c *cli) registry(suite config.Suite) (*bench.Registry, error) {
	reg := bench.NewRegistry()
	if err := c.register(reg, suite.Params()); err != nil {
		return nil, err
	}
	return reg, nil
}

func (c *cli) list(configFile string) error {
	suite, err := loadSuite(configFile)
	if err != nil {
		return err
	}
	reg, err := c.registry(suite)
	if err != nil {
		return err
	}
	for _, w := range reg.Workloads() {
		fmt.Fprintf(c.stdout, "%-18s %s\n", w.Name, w.Label())
	}
	return nil
}

func (c *cli) showProfile(path string) error {
	capture, err := profile.LoadFile(path)
	if err != nil {
		return err
	}
	return capture.Print(c.stdout)
}

func (c *cli) runSuite(ctx context.Context, opts runOptions) (err error) {
	suite, err := loadSuite(opts.configFile)
	if err != nil {
		return err
	}
	if opts.runsSet {
		suite.Repeats = opts.runs
	}
	if opts.warmupSet {
		suite.Warmup = opts.warmup
	}
	if opts.policySet {
		suite.Policy = opts.policy
	}
	if len(opts.workloads) > 0 {
		suite.Workloads = opts.workloads
	}
	if err := suite.Validate(); err != nil {
		return err
	}
	policy, err := suite.FailurePolicy()
	if err != nil {
		return err
	}

	reg, err := c.registry(suite)
	if err != nil {
		return err
	}
	selected, err := reg.Select(suite.Workloads)
	if err != nil {
		return err
	}

	printer := output.NewPrinter(c.stdout, c.stderr)
	if opts.hostInfo {
		printer.Line("Host: %s", hostinfo.Get())
	}

	var capture *profile.Capture
	if opts.profileOut != "" {
		capture = profile.NewCapture()
		if err := capture.Begin(); err != nil {
			return err
		}
		defer func() {
			if endErr := capture.End(); endErr != nil && err == nil {
				err = endErr
				return
			}
			if saveErr := capture.SaveFile(opts.profileOut); saveErr != nil && err == nil {
				err = saveErr
			}
		}()
	}

	log.Debug("running suite", "workloads", len(selected), "repeats", suite.Repeats,
		"warmup", suite.Warmup, "policy", policy.String())

	var (
		summaries []stats.Summary
		failures  []error
	)
	for i, w := range selected {
		if opts.summary {
			printer.Header(i+1, w)
		}

		label := w.Label()
		runnerOpts := []bench.Option{
			bench.WithPolicy(policy),
			bench.WithWarmup(suite.Warmup),
			bench.WithObserver(func(s bench.Sample) { printer.Sample(label, s) }),
			bench.WithWarmupProgress(func(done, total int) { printer.Progress(w.Name, done, total) }),
		}
		if capture != nil {
			runnerOpts = append(runnerOpts, bench.WithTracer(capture))
		}

		report, runErr := bench.NewRunner(runnerOpts...).Run(ctx, w, suite.Repeats)
		printer.ProgressDone()

		if opts.summary {
			s := stats.Summarize(report)
			printer.Summary(s)
			summaries = append(summaries, s)
		}

		if runErr != nil {
			if policy == bench.FailFast {
				return runErr
			}
			fmt.Fprintf(c.stderr, "jikkou: %v\n", runErr)
			failures = append(failures, runErr)
		}
	}

	if opts.summary && len(summaries) > 1 {
		printer.Comparison(stats.Compare(summaries))
	}

	if len(failures) > 0 {
		return errors.Errorf("%d of %d workloads had failed repeats", len(failures), len(selected))
	}
	return nil
}
