package batch

import (
	"sync"
	"sync/atomic"
	"time"
)

// JobMetrics holds the monotonic counters and timestamps for one job run.
// All mutation methods are safe for concurrent use: the batch loop is the
// sole writer, but a Monitor may read concurrently from another goroutine.
type JobMetrics struct {
	readCount   atomic.Int64
	writeCount  atomic.Int64
	filterCount atomic.Int64
	errorCount  atomic.Int64

	mu        sync.RWMutex
	startTime time.Time
	endTime   time.Time
	lastError string
}

// Start records the job's start time. Safe to call once, before the loop
// begins reading.
func (m *JobMetrics) Start(at time.Time) {
	m.mu.Lock()
	m.startTime = at
	m.mu.Unlock()
}

// End records the job's end time. Safe to call once, on loop exit.
func (m *JobMetrics) End(at time.Time) {
	m.mu.Lock()
	m.endTime = at
	m.mu.Unlock()
}

func (m *JobMetrics) IncrementRead() int64   { return m.readCount.Add(1) }
func (m *JobMetrics) IncrementWrite(n int64) int64  { return m.writeCount.Add(n) }
func (m *JobMetrics) IncrementFilter() int64 { return m.filterCount.Add(1) }
func (m *JobMetrics) IncrementError(n int64) int64  { return m.errorCount.Add(n) }

func (m *JobMetrics) ReadCount() int64   { return m.readCount.Load() }
func (m *JobMetrics) WriteCount() int64  { return m.writeCount.Load() }
func (m *JobMetrics) FilterCount() int64 { return m.filterCount.Load() }
func (m *JobMetrics) ErrorCount() int64  { return m.errorCount.Load() }

// StartTime and EndTime return a consistent (possibly zero) snapshot.
func (m *JobMetrics) StartTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.startTime
}

func (m *JobMetrics) EndTime() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.endTime
}

// SetLastError records err's message as the job's lastError, string form,
// per the first-or-worst policy: a lastError already set is never
// overwritten. Passing nil is a no-op.
func (m *JobMetrics) SetLastError(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lastError == "" {
		m.lastError = err.Error()
	}
}

// LastError returns the job's lastError in string form, or "" if none has
// been recorded yet.
func (m *JobMetrics) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// Snapshot takes a consistent point-in-time copy of all counters and
// timestamps, the shape a Monitor samples on demand.
type Snapshot struct {
	ReadCount   int64
	WriteCount  int64
	FilterCount int64
	ErrorCount  int64
	StartTime   time.Time
	EndTime     time.Time
	LastError   string
}

func (m *JobMetrics) Snapshot() Snapshot {
	m.mu.RLock()
	start, end, lastErr := m.startTime, m.endTime, m.lastError
	m.mu.RUnlock()

	return Snapshot{
		ReadCount:   m.readCount.Load(),
		WriteCount:  m.writeCount.Load(),
		FilterCount: m.filterCount.Load(),
		ErrorCount:  m.errorCount.Load(),
		StartTime:   start,
		EndTime:     end,
		LastError:   lastErr,
	}
}
