// Package engine runs a single job's batch loop: reader to pipeline to
// writer, one job per logical worker, single-threaded within the job.
package engine

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dguimard/easy-batch/internal/listener"
	"github.com/dguimard/easy-batch/internal/logger"
	"github.com/dguimard/easy-batch/internal/pipeline"
	"github.com/dguimard/easy-batch/pkg/batch"
)

// Job binds one run's reader, pipeline, writer and listener hub together.
// In is the type the Reader produces; Out is the type the Writer consumes
// — they differ whenever a processor stage changes the record's type.
type Job[In, Out any] struct {
	Params   batch.JobParameters
	Reader   batch.Reader[In]
	Pipeline *pipeline.Pipeline
	Writer   batch.Writer[Out]
	Hub      *listener.Hub[In, Out]
	Metrics  *batch.JobMetrics
	Log      *logger.Logger

	status    batch.JobStatus
	statusBox atomic.Value // holds batch.JobStatus; read by Status() from any goroutine
}

// NewJob builds a Job ready to Run. hub may be nil, in which case an empty
// hub is created.
func NewJob[In, Out any](params batch.JobParameters, reader batch.Reader[In], pl *pipeline.Pipeline, writer batch.Writer[Out], hub *listener.Hub[In, Out], log *logger.Logger) *Job[In, Out] {
	if hub == nil {
		hub = listener.NewHub[In, Out](log)
	}
	j := &Job[In, Out]{
		Params:   params,
		Reader:   reader,
		Pipeline: pl,
		Writer:   writer,
		Hub:      hub,
		Metrics:  &batch.JobMetrics{},
		Log:      log,
		status:   batch.StatusStarting,
	}
	j.statusBox.Store(batch.StatusStarting)
	return j
}

// Status returns the job's current lifecycle state. Safe to call
// concurrently with Run from any goroutine (a Monitor typically polls it).
func (j *Job[In, Out]) Status() batch.JobStatus {
	return j.statusBox.Load().(batch.JobStatus)
}

// Run executes the full INIT -> OPEN -> LOOP -> DRAIN -> CLOSE -> DONE
// state machine and always returns a JobReport. No error or panic raised
// by a collaborator or listener escapes Run.
func (j *Job[In, Out]) Run(ctx context.Context) (report *batch.JobReport) {
	defer func() {
		if r := recover(); r != nil {
			j.Log.Error("job %s: recovered panic: %v", j.Params.Name, r)
			if j.status == batch.StatusStarted {
				j.transition(batch.StatusFailed)
			}
			j.Metrics.End(time.Now())
			report = j.buildReport(asError(r))
		}
	}()

	j.Metrics.Start(time.Now())
	j.transition(batch.StatusStarted)
	j.Hub.BeforeJob(j.Params)

	var lastErr error
	var readerOpened, writerOpened bool

	if err := j.Reader.Open(ctx); err != nil {
		lastErr = fmt.Errorf("open reader: %w", err)
		readerOpened = true // contract: Close must tolerate a failed Open
		j.transition(batch.StatusFailed)
	} else {
		readerOpened = true
		if err := j.Writer.Open(ctx); err != nil {
			lastErr = fmt.Errorf("open writer: %w", err)
			writerOpened = true
			j.transition(batch.StatusFailed)
		} else {
			writerOpened = true
		}
	}

	if lastErr == nil {
		lastErr = j.loop(ctx)
	}

	if readerOpened {
		if err := j.Reader.Close(); err != nil && lastErr == nil {
			lastErr = fmt.Errorf("close reader: %w", err)
		}
	}
	if writerOpened {
		if err := j.Writer.Close(); err != nil && lastErr == nil {
			lastErr = fmt.Errorf("close writer: %w", err)
		}
	}

	if j.status == batch.StatusStarted {
		j.transition(batch.StatusCompleted)
	}

	j.Metrics.End(time.Now())
	report = j.buildReport(lastErr)
	return report
}

// loop runs the LOOP/DRAIN phase: repeated batch-begin/fill/write cycles
// until the reader is exhausted, the job is cancelled, or a fatal error
// occurs. It returns the fatal error, if any (read failure or an
// unrecovered write failure); threshold-exceeded and cancellation are not
// reported as errors here, they only change j.status.
func (j *Job[In, Out]) loop(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			j.transition(batch.StatusAborted)
			return nil
		}

		j.Hub.BeforeBatchReading()

		accepted, exhausted, fatalReadErr := j.fillBatch(ctx)
		if fatalReadErr != nil {
			// Read failure: the buffered batch is dropped entirely.
			j.transition(batch.StatusFailed)
			return fatalReadErr
		}
		if j.status == batch.StatusAborted {
			// Cancellation observed mid-fill: the partial batch is dropped.
			return nil
		}

		if len(accepted) > 0 {
			writeErr := j.writeBatch(ctx, batch.NewBatch(accepted))
			if writeErr != nil {
				return writeErr
			}
		}

		if j.status == batch.StatusFailed {
			// Error-threshold exceeded while filling or writing this batch.
			return nil
		}
		if exhausted {
			return nil
		}
	}
}

// fillBatch reads and pipelines records until the batch reaches its target
// size, the reader is exhausted, cancellation is observed, or a fatal read
// error occurs. Records that error out of the pipeline increment
// errorCount and may trip the error threshold, setting j.status to FAILED
// and ending the fill early (without a read error).
func (j *Job[In, Out]) fillBatch(ctx context.Context) (accepted []batch.Record[Out], exhausted bool, fatalErr error) {
	for int64(len(accepted)) < int64(j.Params.BatchSize) {
		if ctx.Err() != nil {
			j.transition(batch.StatusAborted)
			return accepted, false, nil
		}

		j.Hub.BeforeRecordReading()
		rec, ok, err := j.Reader.ReadRecord(ctx)
		if err != nil {
			j.Hub.OnRecordReadingException(err)
			return nil, false, err
		}
		if !ok {
			return accepted, true, nil
		}

		n := j.Metrics.IncrementRead()
		rec = rec.WithNumber(n)
		j.Hub.AfterRecordReading(rec)

		boxed := batch.Box(rec)
		preOut, preOK, preErr := j.Hub.BeforeRecordProcessing(boxed)
		if preErr != nil {
			j.Hub.OnRecordProcessingException(boxed, preErr)
			j.Metrics.IncrementError(1)
			if j.errorThresholdExceeded() {
				j.transition(batch.StatusFailed)
				return accepted, false, nil
			}
			continue
		}
		if !preOK {
			// Skipped by a pipeline listener: neither filtered nor errored.
			j.Hub.AfterRecordProcessing(boxed, preOut, false)
			continue
		}

		result := j.Pipeline.Process(ctx, preOut)
		switch result.Outcome {
		case pipeline.Filtered:
			j.Metrics.IncrementFilter()
		case pipeline.Errored:
			j.Hub.OnRecordProcessingException(result.Output, result.Cause)
			j.Metrics.IncrementError(1)
			if j.errorThresholdExceeded() {
				j.transition(batch.StatusFailed)
				return accepted, false, nil
			}
		case pipeline.Accepted:
			j.Hub.AfterRecordProcessing(preOut, result.Output, true)
			typed, typedOK := batch.Unbox[Out](result.Output)
			if !typedOK {
				j.Hub.OnRecordProcessingException(result.Output, fmt.Errorf("pipeline produced unexpected type %T", result.Output.Payload))
				j.Metrics.IncrementError(1)
				if j.errorThresholdExceeded() {
					j.transition(batch.StatusFailed)
					return accepted, false, nil
				}
				continue
			}
			accepted = append(accepted, typed)
		}
	}
	return accepted, false, nil
}

// writeBatch runs the write step (§4.3 step 3) including batch-scanning
// recovery on failure. It returns a non-nil error only for an unrecovered,
// non-scanning write failure (always fatal); scanning failures and
// threshold trips are reported through j.status instead.
func (j *Job[In, Out]) writeBatch(ctx context.Context, b batch.Batch[Out]) error {
	// When scanning is enabled, a batch that fails gets re-presented as
	// scanned singletons; mark it scanned before the first attempt so the
	// failed batch-level write itself already carries scanned=true, same
	// as the singleton re-presentation that may follow it.
	if j.Params.BatchScanningEnabled {
		b = b.Scanned()
	}

	j.Hub.AfterBatchProcessing(b)
	j.Hub.BeforeRecordWriting(b)

	if ctx.Err() != nil {
		j.transition(batch.StatusAborted)
		return nil
	}

	if err := j.Writer.WriteRecords(ctx, b); err == nil {
		j.Metrics.IncrementWrite(int64(b.Size()))
		j.Hub.AfterRecordWriting(b)
		j.Hub.AfterBatchWriting(b)
		return nil
	} else {
		j.Hub.OnRecordWritingException(b, err)
		j.Hub.OnBatchWritingException(b, err)

		if !j.Params.BatchScanningEnabled {
			j.Metrics.IncrementError(int64(b.Size()))
			j.transition(batch.StatusFailed)
			return fmt.Errorf("write batch: %w", err)
		}
		// The failed batch-level attempt itself counts as one error; each
		// record then gets its own real chance to succeed as a singleton
		// (see scanBatch), so only a singleton that also fails represents a
		// genuinely lost record.
		j.Metrics.IncrementError(1)
		if j.errorThresholdExceeded() {
			j.transition(batch.StatusFailed)
			return nil
		}
		return j.scanBatch(ctx, b)
	}
}

// scanBatch re-presents every record of a failed batch as its own
// single-record batch, in order, isolating the offending record(s).
// Scanning never recurses: a singleton that itself fails to write is not
// scanned again.
func (j *Job[In, Out]) scanBatch(ctx context.Context, b batch.Batch[Out]) error {
	for _, singleton := range b.Singletons() {
		j.Hub.AfterBatchProcessing(singleton)
		j.Hub.BeforeRecordWriting(singleton)

		if ctx.Err() != nil {
			j.transition(batch.StatusAborted)
			return nil
		}

		if err := j.Writer.WriteRecords(ctx, singleton); err == nil {
			j.Metrics.IncrementWrite(1)
			j.Hub.AfterRecordWriting(singleton)
			j.Hub.AfterBatchWriting(singleton)
			continue
		}

		j.Hub.OnRecordWritingException(singleton, err)
		j.Hub.OnBatchWritingException(singleton, err)
		j.Metrics.IncrementError(1)
		if j.errorThresholdExceeded() {
			j.transition(batch.StatusFailed)
			return nil
		}
	}
	return nil
}

func (j *Job[In, Out]) errorThresholdExceeded() bool {
	return j.Metrics.ErrorCount() > j.Params.ErrorThreshold
}

func (j *Job[In, Out]) transition(to batch.JobStatus) {
	if err := batch.ValidateTransition(j.status, to); err != nil {
		j.Log.Error("job %s: %v", j.Params.Name, err)
	}
	j.status = to
	j.statusBox.Store(to)
}

func (j *Job[In, Out]) buildReport(lastErr error) *batch.JobReport {
	j.Metrics.SetLastError(lastErr)
	report := &batch.JobReport{
		JobName:    j.Params.Name,
		Parameters: j.Params,
		Status:     j.status,
		Metrics:    j.Metrics.Snapshot(),
		LastError:  lastErr,
	}
	j.Hub.AfterJob(report)
	return report
}

func asError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
