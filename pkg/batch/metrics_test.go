package batch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJobMetricsCountersAreMonotonic(t *testing.T) {
	m := &JobMetrics{}
	assert.Equal(t, int64(1), m.IncrementRead())
	assert.Equal(t, int64(2), m.IncrementRead())
	assert.Equal(t, int64(5), m.IncrementWrite(5))
	assert.Equal(t, int64(1), m.IncrementFilter())
	assert.Equal(t, int64(3), m.IncrementError(3))

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.ReadCount)
	assert.Equal(t, int64(5), snap.WriteCount)
	assert.Equal(t, int64(1), snap.FilterCount)
	assert.Equal(t, int64(3), snap.ErrorCount)
}

func TestJobMetricsSnapshotIsConsistentUnderConcurrentReads(t *testing.T) {
	m := &JobMetrics{}
	m.Start(time.Now())

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementRead()
			_ = m.Snapshot()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(100), m.ReadCount())
}

func TestJobMetricsStartEndOrdering(t *testing.T) {
	m := &JobMetrics{}
	start := time.Now()
	end := start.Add(time.Second)
	m.Start(start)
	m.End(end)

	assert.True(t, m.EndTime().After(m.StartTime()) || m.EndTime().Equal(m.StartTime()))
}
