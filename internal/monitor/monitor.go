// Package monitor exposes read-only, process-wide visibility into running
// and finished jobs: a Monitor samples one job's metrics and status on
// demand, and a Registry holds every job's Monitor under a well-known key.
package monitor

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// Monitor is a read-only view onto one job's live metrics and status. It
// never mutates the job; every call samples the job's current state.
type Monitor struct {
	jobName  string
	metrics  *batch.JobMetrics
	statusFn func() batch.JobStatus
}

// New builds a Monitor for jobName, sampling metrics and statusFn on demand.
func New(jobName string, metrics *batch.JobMetrics, statusFn func() batch.JobStatus) *Monitor {
	return &Monitor{jobName: jobName, metrics: metrics, statusFn: statusFn}
}

// Name returns the monitored job's name.
func (m *Monitor) Name() string { return m.jobName }

// Snapshot returns a consistent point-in-time read of the job's counters.
func (m *Monitor) Snapshot() batch.Snapshot { return m.metrics.Snapshot() }

// Status returns the job's current lifecycle state.
func (m *Monitor) Status() batch.JobStatus { return m.statusFn() }

// LastError returns the job's lastError in string form, or "" if none has
// been recorded yet (first-or-worst: the first fatal error wins).
func (m *Monitor) LastError() string { return m.metrics.Snapshot().LastError }

var (
	readDesc = prometheus.NewDesc(
		"easybatch_read_total", "Records read by the job.", []string{"job"}, nil)
	writeDesc = prometheus.NewDesc(
		"easybatch_write_total", "Records written by the job.", []string{"job"}, nil)
	filterDesc = prometheus.NewDesc(
		"easybatch_filter_total", "Records filtered out by the job's pipeline.", []string{"job"}, nil)
	errorDesc = prometheus.NewDesc(
		"easybatch_error_total", "Record or batch errors seen by the job.", []string{"job"}, nil)
	statusDesc = prometheus.NewDesc(
		"easybatch_job_status", "1 for the job's current status, labeled by status name.",
		[]string{"job", "status"}, nil)
	lastErrorDesc = prometheus.NewDesc(
		"easybatch_job_last_error_info", "1 while last_error holds the job's recorded lastError; absent if none has been recorded.",
		[]string{"job", "last_error"}, nil)
)

// Describe implements prometheus.Collector.
func (m *Monitor) Describe(ch chan<- *prometheus.Desc) {
	ch <- readDesc
	ch <- writeDesc
	ch <- filterDesc
	ch <- errorDesc
	ch <- statusDesc
	ch <- lastErrorDesc
}

// Collect implements prometheus.Collector, sampling the job live at scrape
// time rather than tracking a separately maintained set of gauges.
func (m *Monitor) Collect(ch chan<- prometheus.Metric) {
	snap := m.Snapshot()
	ch <- prometheus.MustNewConstMetric(readDesc, prometheus.CounterValue, float64(snap.ReadCount), m.jobName)
	ch <- prometheus.MustNewConstMetric(writeDesc, prometheus.CounterValue, float64(snap.WriteCount), m.jobName)
	ch <- prometheus.MustNewConstMetric(filterDesc, prometheus.CounterValue, float64(snap.FilterCount), m.jobName)
	ch <- prometheus.MustNewConstMetric(errorDesc, prometheus.CounterValue, float64(snap.ErrorCount), m.jobName)
	ch <- prometheus.MustNewConstMetric(statusDesc, prometheus.GaugeValue, 1, m.jobName, m.Status().String())
	if snap.LastError != "" {
		ch <- prometheus.MustNewConstMetric(lastErrorDesc, prometheus.GaugeValue, 1, m.jobName, snap.LastError)
	}
}
