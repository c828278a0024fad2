package batch

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
	"go.uber.org/goleak"

	"rtsim/internal/sched"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func spec(id sched.TaskID, exec, period, deadline int64) sched.TaskSpec {
	return sched.TaskSpec{ID: id, ExecutionTime: exec, Period: period, RelativeDeadline: deadline}
}

func testJobs() []Job {
	return []Job{
		{Name: "pair", Scale: 1, Specs: []sched.TaskSpec{spec(0, 1, 4, 4), spec(1, 2, 5, 5)}},
		{Name: "overloaded", Scale: 1, Specs: []sched.TaskSpec{spec(0, 4, 5, 5), spec(1, 4, 5, 5)}},
		{Name: "single", Scale: 1, Specs: []sched.TaskSpec{spec(0, 3, 10, 10)}},
		{Name: "invalid", Scale: 1, Specs: []sched.TaskSpec{spec(0, 0, 10, 10)}},
		{Name: "preempted", Scale: 1, Specs: []sched.TaskSpec{spec(0, 3, 10, 10), spec(1, 1, 2, 2)}},
	}
}

func TestRunnerKeepsInputOrder(t *testing.T) {
	cfg := sched.DefaultConfig()
	cfg.Workers = 3
	scope := tally.NewTestScope("", nil)

	results := NewRunner(cfg, zerolog.Nop(), scope).Run(context.Background(), testJobs())
	require.Len(t, results, 5)

	assert.Equal(t, "pair", results[0].Name)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []int64{0, 1}, results[0].Report.Preemptions)

	require.NoError(t, results[1].Err)
	assert.False(t, results[1].Report.Schedulable)

	require.NoError(t, results[2].Err)
	assert.Equal(t, []int64{0}, results[2].Report.Preemptions)

	assert.ErrorIs(t, results[3].Err, sched.ErrInvalidInput)
	assert.Nil(t, results[3].Report)

	require.NoError(t, results[4].Err)
	assert.Equal(t, []int64{2, 0}, results[4].Report.Preemptions)
}

func TestRunnerRunsAreIsolated(t *testing.T) {
	// The same set many times over must always give the same counts.
	var jobs []Job
	for i := 0; i < 32; i++ {
		jobs = append(jobs, Job{
			Name:  fmt.Sprintf("copy-%d", i),
			Scale: 1,
			Specs: []sched.TaskSpec{spec(0, 3, 10, 10), spec(1, 1, 2, 2), spec(2, 1, 5, 4)},
		})
	}
	cfg := sched.DefaultConfig()
	cfg.Workers = 8

	results := NewRunner(cfg, zerolog.Nop(), nil).Run(context.Background(), jobs)
	want := results[0].Report.Preemptions
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, want, res.Report.Preemptions, res.Name)
	}
}

func TestRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewRunner(sched.DefaultConfig(), zerolog.Nop(), nil).Run(ctx, testJobs())
	require.Len(t, results, 5)
	for _, res := range results {
		if res.Err != nil {
			assert.Nil(t, res.Report)
		}
	}
}

func TestRunnerEmpty(t *testing.T) {
	results := NewRunner(sched.DefaultConfig(), zerolog.Nop(), nil).Run(context.Background(), nil)
	assert.Empty(t, results)
}
