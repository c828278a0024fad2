package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/uber-go/tally/v4"
	"go.uber.org/multierr"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"rtsim/internal/batch"
	"rtsim/internal/logging"
	"rtsim/internal/sched"
	"rtsim/internal/taskset"
)

var (
	app = kingpin.New("rtsim",
		"Simulate preemptive deadline-ordered scheduling of periodic tasks over one hyperperiod "+
			"and print the schedulability verdict and per-task preemption counts.")

	cfgFile = app.Flag("config", "YAML config file").
		Short('c').
		ExistingFile()

	tickMode = app.Flag("tick-mode", "How the step size is derived (tick_mode override)").
		Enum(string(sched.TickGCD), string(sched.TickExact), string(sched.TickUnit), string(sched.TickHalf))

	tick = app.Flag("tick", "Fixed step in scaled units, overrides --tick-mode (tick override)").
		Int64()

	strict = app.Flag("strict", "Fail when an instance is still running at the next arrival (strict override)").
		Bool()

	trace = app.Flag("trace", "Write a per-event CSV trace to this file, single input only (trace_csv override)").
		String()

	logLevel = app.Flag("log-level", "trace, debug, info, warn or error (log_level override)").
		Envar("RTSIM_LOG_LEVEL").
		String()

	jsonLog = app.Flag("json-log", "Log JSON lines instead of console output (json_log override)").
		Bool()

	workers = app.Flag("workers", "Task sets analyzed in parallel (workers override)").
		Int()

	inputs = app.Arg("input", "Task set files, one \"execution_time,period,deadline\" per line").
		Required().
		ExistingFiles()
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := sched.Load(*cfgFile)
	if err != nil {
		app.Fatalf("%v", err)
	}
	applyFlags(&cfg)

	log, err := logging.New(os.Stderr, cfg.LogLevel, cfg.JSONLog)
	if err != nil {
		app.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, log, os.Stdout, *inputs); err != nil {
		log.Error().Err(err).Msg("rtsim failed")
		stop()
		os.Exit(1)
	}
}

// applyFlags lets command line flags override the config file.
func applyFlags(cfg *sched.Config) {
	if *tickMode != "" {
		cfg.TickMode = sched.TickMode(*tickMode)
	}
	if *tick > 0 {
		cfg.Tick = *tick
	}
	if *strict {
		cfg.Strict = true
	}
	if *trace != "" {
		cfg.TraceCSV = *trace
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *jsonLog {
		cfg.JSONLog = true
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
}

func run(ctx context.Context, cfg sched.Config, log zerolog.Logger, out io.Writer, paths []string) error {
	var readOpts []taskset.ReadOption
	if cfg.TickMode == sched.TickHalf && cfg.Tick == 0 {
		readOpts = append(readOpts, taskset.WithEvenScale())
	}

	if len(paths) == 1 {
		return runOne(cfg, log, out, paths[0], readOpts)
	}
	if cfg.TraceCSV != "" {
		return errors.New("a trace can only be written for a single input file")
	}

	jobs := make([]batch.Job, 0, len(paths))
	for _, path := range paths {
		set, err := taskset.ReadFile(path, readOpts...)
		if err != nil {
			return err
		}
		jobs = append(jobs, batch.Job{Name: path, Specs: set.Specs, Scale: set.Scale})
	}

	var errs error
	for _, res := range batch.NewRunner(cfg, log, tally.NoopScope).Run(ctx, jobs) {
		if res.Err != nil {
			errs = multierr.Append(errs, errors.Wrap(res.Err, res.Name))
			continue
		}
		if _, err := fmt.Fprintf(out, "# %s\n", res.Name); err != nil {
			return err
		}
		if err := taskset.WriteReport(out, res.Report); err != nil {
			return err
		}
	}
	return errs
}

func runOne(cfg sched.Config, log zerolog.Logger, out io.Writer, path string, readOpts []taskset.ReadOption) error {
	set, err := taskset.ReadFile(path, readOpts...)
	if err != nil {
		return err
	}
	log.Debug().
		Str("file", path).
		Int("tasks", len(set.Specs)).
		Int64("scale", set.Scale).
		Msg("task set loaded")

	opts := []sched.Option{sched.WithLogger(log)}
	if cfg.TraceCSV != "" {
		f, err := os.Create(cfg.TraceCSV)
		if err != nil {
			return errors.Wrap(err, "create trace")
		}
		defer f.Close()
		opts = append(opts, sched.WithCSVTrace(f))
	}

	rep, err := sched.Analyze(set.Specs, set.Scale, cfg, opts...)
	if err != nil {
		return err
	}
	log.Info().
		Bool("schedulable", rep.Schedulable).
		Str("utilization", rep.Utilization.FloatString(4)).
		Int64("hyperperiod", rep.Hyperperiod).
		Int64("tick", rep.Tick).
		Msg("analysis done")

	return taskset.WriteReport(out, rep)
}
