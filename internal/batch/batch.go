// Package batch analyzes many task sets in parallel. Every run owns its own
// scheduler; nothing is shared between runs.
package batch

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/uber-go/tally/v4"

	"rtsim/internal/sched"
)

// Job is one task set to analyze.
type Job struct {
	Name  string
	Specs []sched.TaskSpec
	Scale int64
}

// Result pairs a job with its outcome. Exactly one of Report and Err is set.
type Result struct {
	Name   string
	Report *sched.Report
	Err    error
}

// Runner fans jobs out to a fixed number of workers.
type Runner struct {
	cfg     sched.Config
	workers int
	log     zerolog.Logger
	scope   tally.Scope
}

// NewRunner creates a Runner using cfg for every job. cfg.Workers bounds the
// parallelism (at least one worker).
func NewRunner(cfg sched.Config, log zerolog.Logger, scope tally.Scope) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if scope == nil {
		scope = tally.NoopScope
	}
	return &Runner{cfg: cfg, workers: workers, log: log, scope: scope}
}

// Run analyzes jobs and returns their results in input order. Once ctx is
// done no new job is started; jobs never started report ctx.Err(). A job
// that has started always runs to completion.
func (r *Runner) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	queue := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < r.workers && w < len(jobs); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = r.analyze(jobs[i])
			}
		}()
	}

	next := 0
feed:
	for ; next < len(jobs); next++ {
		select {
		case <-ctx.Done():
			break feed
		case queue <- next:
		}
	}
	close(queue)
	wg.Wait()

	for i := next; i < len(jobs); i++ {
		results[i] = Result{Name: jobs[i].Name, Err: errors.Wrap(ctx.Err(), "not started")}
	}
	return results
}

func (r *Runner) analyze(job Job) Result {
	log := r.log.With().Str("taskset", job.Name).Logger()
	scope := r.scope.Tagged(map[string]string{"taskset": job.Name})

	rep, err := sched.Analyze(job.Specs, job.Scale, r.cfg,
		sched.WithLogger(log),
		sched.WithScope(scope),
	)
	if err != nil {
		log.Warn().Err(err).Msg("analysis failed")
		return Result{Name: job.Name, Err: err}
	}
	log.Debug().
		Bool("schedulable", rep.Schedulable).
		Int64("hyperperiod", rep.Hyperperiod).
		Msg("analysis done")
	return Result{Name: job.Name, Report: rep}
}
