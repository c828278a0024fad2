package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtsim/internal/sched"
)

func writeTasks(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTasks(t, dir, "pair.txt", "1,4,4\n2,5,5\n")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), sched.DefaultConfig(), zerolog.Nop(), &out, []string{path}))
	assert.Equal(t, "1\n0,1\n", out.String())
}

func TestRunInfeasible(t *testing.T) {
	path := writeTasks(t, t.TempDir(), "over.txt", "4,5,5\n4,5,5\n")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), sched.DefaultConfig(), zerolog.Nop(), &out, []string{path}))
	assert.Equal(t, "0\n\n", out.String())
}

func TestRunWritesTrace(t *testing.T) {
	dir := t.TempDir()
	path := writeTasks(t, dir, "single.txt", "3,10,10\n")
	cfg := sched.DefaultConfig()
	cfg.TraceCSV = filepath.Join(dir, "trace.csv")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, zerolog.Nop(), &out, []string{path}))
	assert.Equal(t, "1\n0\n", out.String())

	data, err := os.ReadFile(cfg.TraceCSV)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "time,tick,event,task_id,remaining,deadline\n"))
}

func TestRunHalfTickScalesIntegers(t *testing.T) {
	path := writeTasks(t, t.TempDir(), "half.txt", "3,10,10\n1,2,2\n")
	cfg := sched.DefaultConfig()
	cfg.TickMode = sched.TickHalf

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, zerolog.Nop(), &out, []string{path}))
	assert.Equal(t, "1\n2,0\n", out.String())
}

func TestRunBatch(t *testing.T) {
	dir := t.TempDir()
	a := writeTasks(t, dir, "a.txt", "1,4,4\n2,5,5\n")
	b := writeTasks(t, dir, "b.txt", "4,5,5\n4,5,5\n")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), sched.DefaultConfig(), zerolog.Nop(), &out, []string{a, b}))
	assert.Equal(t, "# "+a+"\n1\n0,1\n# "+b+"\n0\n\n", out.String())
}

func TestRunBatchRejectsTrace(t *testing.T) {
	dir := t.TempDir()
	a := writeTasks(t, dir, "a.txt", "1,4,4\n")
	b := writeTasks(t, dir, "b.txt", "1,4,4\n")
	cfg := sched.DefaultConfig()
	cfg.TraceCSV = filepath.Join(dir, "trace.csv")

	err := run(context.Background(), cfg, zerolog.Nop(), &bytes.Buffer{}, []string{a, b})
	assert.Error(t, err)
}

func TestRunBadInput(t *testing.T) {
	path := writeTasks(t, t.TempDir(), "bad.txt", "1,0,4\n")

	err := run(context.Background(), sched.DefaultConfig(), zerolog.Nop(), &bytes.Buffer{}, []string{path})
	assert.ErrorIs(t, err, sched.ErrInvalidInput)
}
