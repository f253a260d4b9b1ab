package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rescuerunner/runnerboard/internal/metrics"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.Submission(metrics.OutcomeAccepted)
	m.Submission(metrics.OutcomeAccepted)
	m.Submission(metrics.OutcomeInvalid)
	m.Players(7)
	m.Request("/scores", "GET", 200, 15*time.Millisecond)
	m.Throttled("/scores")

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 4)

	n, err := testutil.GatherAndCount(reg, "runnerboard_scores_submissions_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one series per outcome")
}

func TestNilMetricsIsANoop(t *testing.T) {
	var m *metrics.Metrics
	assert.NotPanics(t, func() {
		m.Submission(metrics.OutcomeFailed)
		m.Players(1)
		m.Request("/", "GET", 500, time.Second)
		m.Throttled("/")
	})
}
