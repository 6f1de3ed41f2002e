package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dguimard/easy-batch/internal/engine"
	"github.com/dguimard/easy-batch/internal/listener"
	"github.com/dguimard/easy-batch/internal/logger"
	"github.com/dguimard/easy-batch/internal/pipeline"
	"github.com/dguimard/easy-batch/internal/refio"
	"github.com/dguimard/easy-batch/pkg/batch"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.NewLogger("test", false, "")
	require.NoError(t, err)
	return l
}

func identity(rec batch.Record[string]) (batch.Record[string], bool, error) {
	return rec, true, nil
}

func makeRecords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "r"
	}
	return out
}

func newCountingJob(t *testing.T, n, batchSize int) (*engine.Job[string, string], *refio.SliceWriter[string]) {
	t.Helper()
	reader := refio.NewSliceReader(makeRecords(n))
	writer := refio.NewSliceWriter[string]()
	pl := pipeline.New(batch.ProcessorStage(identity))
	params := batch.NewJobParameters()
	params.BatchSize = batchSize
	job := engine.NewJob[string, string](params, reader, pl, writer, nil, testLogger(t))
	return job, writer
}

func TestExecutorExecuteRunsJobSynchronously(t *testing.T) {
	job, writer := newCountingJob(t, 4, 2)
	ex := New(testLogger(t))

	report := ex.Execute(context.Background(), job)

	assert.Equal(t, batch.StatusCompleted, report.Status)
	assert.Equal(t, int64(4), report.Metrics.ReadCount)
	require.Len(t, writer.Batches, 2)
}

func TestExecutorSubmitRunsConcurrentlyAndAwaits(t *testing.T) {
	job1, w1 := newCountingJob(t, 1000, 100)
	job2, w2 := newCountingJob(t, 1000, 100)
	ex := New(testLogger(t))

	f1 := ex.Submit(context.Background(), job1)
	f2 := ex.Submit(context.Background(), job2)

	r1 := f1.Await()
	r2 := f2.Await()

	assert.Equal(t, batch.StatusCompleted, r1.Status)
	assert.Equal(t, batch.StatusCompleted, r2.Status)
	require.Len(t, w1.Batches, 10)
	require.Len(t, w2.Batches, 10)
}

// Cancelling one job's future aborts only that job; a sibling job submitted
// to the same executor runs to completion unaffected.
func TestExecutorCancelIsolatesSiblingJobs(t *testing.T) {
	const total, batchSize = 1000000, 500000

	reader1 := refio.NewSliceReader(makeRecords(total))
	writer1 := refio.NewSliceWriter[string]()
	pl1 := pipeline.New(batch.ProcessorStage(identity))
	params1 := batch.NewJobParameters()
	params1.BatchSize = batchSize

	futCh := make(chan *Future, 1)
	hub1 := listener.NewHub[string, string](testLogger(t))
	hub1.AddBatch(cancelAfterFirstBatch{futCh: futCh})
	job1 := engine.NewJob[string, string](params1, reader1, pl1, writer1, hub1, testLogger(t))

	job2, writer2 := newCountingJob(t, total, batchSize)

	ex := New(testLogger(t))
	fut1 := ex.Submit(context.Background(), job1)
	fut2 := ex.Submit(context.Background(), job2)
	futCh <- fut1

	r1 := fut1.Await()
	r2 := fut2.Await()

	assert.Equal(t, batch.StatusAborted, r1.Status)
	require.Len(t, writer1.Batches, 1)
	assert.Equal(t, batchSize, writer1.Batches[0].Size())

	assert.Equal(t, batch.StatusCompleted, r2.Status)
	assert.Equal(t, int64(total), r2.Metrics.ReadCount)
	require.Len(t, writer2.Batches, 2)
}

type cancelAfterFirstBatch struct {
	batch.NopBatchListener[string]
	futCh chan *Future
}

func (c cancelAfterFirstBatch) AfterBatchWriting(batch.Batch[string]) {
	(<-c.futCh).Cancel()
}

func TestExecutorAwaitTerminationTimesOutOnSlowJob(t *testing.T) {
	reader := refio.NewSliceReader([]string{"r1"})
	writer := refio.NewSliceWriter[string]()
	slow := batch.ProcessorStage(func(rec batch.Record[string]) (batch.Record[string], bool, error) {
		time.Sleep(50 * time.Millisecond)
		return rec, true, nil
	})
	pl := pipeline.New(slow)
	params := batch.NewJobParameters()
	job := engine.NewJob[string, string](params, reader, pl, writer, nil, testLogger(t))

	ex := New(testLogger(t))
	ex.Submit(context.Background(), job)

	assert.False(t, ex.AwaitTermination(time.Millisecond))
	assert.True(t, ex.AwaitTermination(time.Second))
}

func TestExecutorCancelUnknownIDIsNoop(t *testing.T) {
	ex := New(testLogger(t))
	assert.NotPanics(t, func() { ex.Cancel("does-not-exist") })
}
