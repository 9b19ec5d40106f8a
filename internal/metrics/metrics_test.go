package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncLearner("gritty")
	m.IncLearner("gritty")
	m.IncPass("passed")
	m.IncStatement("launched")
	m.IncDegraded()
	m.ObserveSession(45 * time.Minute)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LearnersTotal.WithLabelValues("gritty")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassesTotal.WithLabelValues("passed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StatementsTotal.WithLabelValues("launched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DegradedTraces))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionsTotal))
}

func TestObserveBatch(t *testing.T) {
	m := New()

	m.ObserveBatch("sqlite", 100, 10*time.Millisecond, nil)
	m.ObserveBatch("sqlite", 50, 10*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 100.0, testutil.ToFloat64(m.SubmittedStatements.WithLabelValues("sqlite")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.SubmitBatchDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncLearner("average")
		m.IncPass("failed")
		m.IncStatement("rated")
		m.IncDegraded()
		m.ObserveSession(time.Minute)
		m.ObserveBatch("lrs", 1, time.Second, nil)
		m.SetRunDuration(time.Second)
	})
	assert.NoError(t, m.WriteTextfile("/nonexistent/metrics.prom"))
	assert.Nil(t, m.Registry())
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.IncStatement("completed")
	m.SetRunDuration(1500 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "learnsim.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `learnsim_statements_total{verb="completed"} 1`)
	assert.Contains(t, string(data), "learnsim_run_duration_seconds 1.5")
}
