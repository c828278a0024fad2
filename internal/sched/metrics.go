package sched

import "github.com/uber-go/tally/v4"

// metrics are the counters of one simulation run.
type metrics struct {
	releases    tally.Counter
	dispatches  tally.Counter
	preemptions tally.Counter
	idleTicks   tally.Counter
	overruns    tally.Counter
	hyperperiod tally.Gauge
}

func newMetrics(scope tally.Scope) *metrics {
	simScope := scope.SubScope("sim")
	return &metrics{
		releases:    simScope.Counter("releases"),
		dispatches:  simScope.Counter("dispatches"),
		preemptions: simScope.Counter("preemptions"),
		idleTicks:   simScope.Counter("idle_ticks"),
		overruns:    simScope.Counter("overruns"),
		hyperperiod: simScope.Gauge("hyperperiod"),
	}
}
