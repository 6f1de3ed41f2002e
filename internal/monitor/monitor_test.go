package monitor

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dguimard/easy-batch/pkg/batch"
)

func TestKeyFormat(t *testing.T) {
	assert.Equal(t, "easybatch:type=JobMonitor,name=nightly-import", Key("nightly-import"))
}

func TestMonitorSnapshotAndStatus(t *testing.T) {
	metrics := &batch.JobMetrics{}
	metrics.IncrementRead()
	metrics.IncrementRead()
	metrics.IncrementWrite(1)

	status := batch.StatusStarted
	m := New("job-1", metrics, func() batch.JobStatus { return status })

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ReadCount)
	assert.Equal(t, int64(1), snap.WriteCount)
	assert.Equal(t, batch.StatusStarted, m.Status())

	status = batch.StatusCompleted
	assert.Equal(t, batch.StatusCompleted, m.Status())
}

func TestMonitorLastErrorReflectsMetrics(t *testing.T) {
	metrics := &batch.JobMetrics{}
	m := New("job-1", metrics, func() batch.JobStatus { return batch.StatusFailed })

	assert.Empty(t, m.LastError())

	metrics.SetLastError(assert.AnError)
	assert.Equal(t, assert.AnError.Error(), m.LastError())
}

func TestRegistryRegisterGetUnregister(t *testing.T) {
	r := NewRegistry()
	m := New("job-a", &batch.JobMetrics{}, func() batch.JobStatus { return batch.StatusStarted })

	require.NoError(t, r.Register(m, false))
	got, err := r.Get("job-a")
	require.NoError(t, err)
	assert.Same(t, m, got)
	assert.Contains(t, r.List(), Key("job-a"))

	r.Unregister("job-a")
	_, err = r.Get("job-a")
	assert.Error(t, err)
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	m1 := New("job-b", &batch.JobMetrics{}, func() batch.JobStatus { return batch.StatusStarted })
	m2 := New("job-b", &batch.JobMetrics{}, func() batch.JobStatus { return batch.StatusStarted })

	require.NoError(t, r.Register(m1, false))
	assert.Error(t, r.Register(m2, false))
}

func TestRegistryWithJmxEnabledExposesPrometheusCollector(t *testing.T) {
	r := NewRegistry()
	metrics := &batch.JobMetrics{}
	metrics.IncrementRead()
	metrics.IncrementError(1)

	m := New("job-c", metrics, func() batch.JobStatus { return batch.StatusFailed })
	require.NoError(t, r.Register(m, true))

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)

	found := make(map[string]*dto.MetricFamily)
	for _, fam := range families {
		found[fam.GetName()] = fam
	}

	require.Contains(t, found, "easybatch_read_total")
	require.Contains(t, found, "easybatch_error_total")
	require.Contains(t, found, "easybatch_job_status")

	readFam := found["easybatch_read_total"]
	require.Len(t, readFam.Metric, 1)
	assert.Equal(t, float64(1), readFam.Metric[0].GetCounter().GetValue())
}

var _ prometheus.Collector = (*Monitor)(nil)
