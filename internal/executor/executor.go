// Package executor submits jobs to run concurrently, each on its own
// goroutine — the default worker pool is unbounded-demand, as spec'd: a
// submission never blocks waiting for a slot.
package executor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dguimard/easy-batch/internal/logger"
	"github.com/dguimard/easy-batch/pkg/batch"
)

// Runnable is anything an Executor can run to completion and obtain a
// report from — in practice an *engine.Job[In, Out] for some In, Out.
// Executor itself stays non-generic so jobs of different record types can
// share one registry.
type Runnable interface {
	Run(ctx context.Context) *batch.JobReport
}

// Future is the handle returned by Submit. Cancelling a future aborts only
// the job it belongs to; sibling jobs on the same Executor are unaffected.
type Future struct {
	id     string
	cancel context.CancelFunc
	done   chan struct{}
	report *batch.JobReport
}

// ID is the job's executor-assigned identifier.
func (f *Future) ID() string { return f.id }

// Cancel signals the job's context. Idempotent: calling it more than once,
// or after the job has already finished, is a no-op.
func (f *Future) Cancel() { f.cancel() }

// Await blocks until the job's report is available.
func (f *Future) Await() *batch.JobReport {
	<-f.done
	return f.report
}

// Done reports completion without blocking the caller's goroutine.
func (f *Future) Done() <-chan struct{} { return f.done }

// Executor runs jobs concurrently and tracks their in-flight futures.
type Executor struct {
	log *logger.Logger

	mu   sync.Mutex
	wg   sync.WaitGroup
	jobs map[string]*Future
}

// New creates an Executor ready to accept submissions.
func New(log *logger.Logger) *Executor {
	return &Executor{log: log, jobs: make(map[string]*Future)}
}

// Submit starts job on its own goroutine immediately and returns a Future
// for it. parent governs the job's context; cancelling parent cancels
// every job submitted with it, while cancelling the returned Future
// cancels only this one job.
func (e *Executor) Submit(parent context.Context, job Runnable) *Future {
	jobCtx, cancel := context.WithCancel(parent)
	id := uuid.NewString()
	fut := &Future{id: id, cancel: cancel, done: make(chan struct{})}

	e.mu.Lock()
	e.jobs[id] = fut
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel() // release the context's resources once the job exits
		report := job.Run(jobCtx)
		fut.report = report
		close(fut.done)

		e.mu.Lock()
		delete(e.jobs, id)
		e.mu.Unlock()

		e.log.Debug("job %s finished with status %s", id, report.Status)
	}()

	return fut
}

// Execute runs job synchronously, blocking until it completes.
func (e *Executor) Execute(ctx context.Context, job Runnable) *batch.JobReport {
	return e.Submit(ctx, job).Await()
}

// Cancel cancels the job identified by id, if it is still running. It is a
// no-op if the id is unknown (already finished, or never submitted here).
func (e *Executor) Cancel(id string) {
	e.mu.Lock()
	fut, ok := e.jobs[id]
	e.mu.Unlock()
	if ok {
		fut.Cancel()
	}
}

// AwaitTermination waits up to timeout for every in-flight job to finish.
// It returns true if all jobs finished before the deadline.
func (e *Executor) AwaitTermination(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}

// InFlight returns the number of jobs currently running.
func (e *Executor) InFlight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.jobs)
}
