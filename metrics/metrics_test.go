package metrics_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mutations "github.com/reoring/mutations"
	"github.com/reoring/mutations/dsl"
	"github.com/reoring/mutations/metrics"
)

func TestCollector_ObserveRun(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	ctx := context.Background()
	c.ObserveRun(ctx, mutations.RunReport{Command: "create_user", State: mutations.StateSucceeded, Duration: time.Millisecond})
	c.ObserveRun(ctx, mutations.RunReport{Command: "create_user", State: mutations.StateFailed, Errors: 2, Duration: time.Millisecond})
	c.ObserveRun(ctx, mutations.RunReport{Command: "delete_user", State: mutations.StateSucceeded})

	expected := `
# HELP mutations_run_errors_total Validation and injected errors reported by failed runs
# TYPE mutations_run_errors_total counter
mutations_run_errors_total{command="create_user"} 2
# HELP mutations_runs_total Command runs by terminal state
# TYPE mutations_runs_total counter
mutations_runs_total{command="create_user",state="failed"} 1
mutations_runs_total{command="create_user",state="succeeded"} 1
mutations_runs_total{command="delete_user",state="succeeded"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"mutations_runs_total", "mutations_run_errors_total"))

	n, err := testutil.GatherAndCount(reg, "mutations_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCollector_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewCollector(reg)
	require.NoError(t, err)
	_, err = metrics.NewCollector(reg)
	assert.Error(t, err)

	c, err := metrics.NewCollector(nil)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestCollector_AsCommandObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	schema := dsl.MustBuild(dsl.Required(dsl.String("name")))
	cmd := mutations.New("greet", schema, func(ctx context.Context, x *mutations.Execution) (string, error) {
		return "hi " + x.Inputs().String("name"), nil
	}, mutations.WithObserver(c))

	_, err = cmd.Run(context.Background(), map[string]any{"name": "Ann"})
	require.NoError(t, err)
	_, err = cmd.Run(context.Background(), map[string]any{})
	require.NoError(t, err)

	expected := `
# HELP mutations_runs_total Command runs by terminal state
# TYPE mutations_runs_total counter
mutations_runs_total{command="greet",state="failed"} 1
mutations_runs_total{command="greet",state="succeeded"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "mutations_runs_total"))
}
