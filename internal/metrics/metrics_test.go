package metrics

import (
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_TaskLifecycle(t *testing.T) {
	c := NewCollector("test")

	c.TaskStarted("parallel")
	c.TaskStarted("parallel")
	assert.Equal(t, 2.0, testutil.ToFloat64(c.TasksInFlight.WithLabelValues("parallel")))

	c.TaskFinished("parallel", 100*time.Millisecond, nil)
	c.TaskFinished("parallel", 50*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 0.0, testutil.ToFloat64(c.TasksInFlight.WithLabelValues("parallel")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TasksTotal.WithLabelValues("parallel", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.TasksTotal.WithLabelValues("parallel", StatusFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.TaskDuration))
}

func TestCollector_Batches(t *testing.T) {
	c := NewCollector("test")

	c.BatchFinished("sequential", 3*time.Second, nil)
	c.BatchFinished("parallel", time.Second, errors.New("boom"))
	c.ComparisonFinished(3.0, 2*time.Second)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.BatchesTotal.WithLabelValues("sequential", StatusSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.BatchesTotal.WithLabelValues("parallel", StatusFailure)))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.LastSpeedup))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.LastDifference))
}

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("test")
	b := NewCollector("test")

	a.BatchFinished("sequential", time.Second, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(a.BatchesTotal.WithLabelValues("sequential", StatusSuccess)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.BatchesTotal.WithLabelValues("sequential", StatusSuccess)))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("seqpar")
	c.ComparisonFinished(2.5, time.Second)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "seqpar_last_speedup_ratio 2.5"))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector("seqpar")
	c.BatchFinished("parallel", time.Second, nil)

	path := filepath.Join(t.TempDir(), "seqpar.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `seqpar_batches_total{status="success",strategy="parallel"} 1`)
}
