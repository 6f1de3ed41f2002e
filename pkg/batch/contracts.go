package batch

import "context"

// Reader is the source half of a job: it produces records until exhausted.
// Implementations may raise on any call and must tolerate Close being
// called after a failed Open.
type Reader[T any] interface {
	Open(ctx context.Context) error
	// ReadRecord returns the next record. ok=false with a nil error means
	// end of input.
	ReadRecord(ctx context.Context) (rec Record[T], ok bool, err error)
	Close() error
}

// Writer is the sink half of a job: it durably stores a batch at a time.
type Writer[T any] interface {
	Open(ctx context.Context) error
	WriteRecords(ctx context.Context, b Batch[T]) error
	Close() error
}

// Stage is one link of the pipeline. It is deliberately untyped (Record[any]
// in, Record[any] out) so a chain of type-changing processors can be
// expressed without a distinct Pipeline type per type pair — the same
// accommodation the source system makes through type erasure. ok=false
// means "drop" (filtered); a non-nil error means "errored".
type Stage interface {
	Apply(ctx context.Context, rec Record[any]) (out Record[any], ok bool, err error)
}

// StageFunc adapts a plain function to Stage.
type StageFunc func(ctx context.Context, rec Record[any]) (Record[any], bool, error)

func (f StageFunc) Apply(ctx context.Context, rec Record[any]) (Record[any], bool, error) {
	return f(ctx, rec)
}

// FilterStage adapts a same-type predicate (filter or validator, which are
// semantically identical for this engine) into a Stage: the record passes
// through unchanged when keep returns true, or is dropped otherwise.
func FilterStage[T any](keep func(Record[T]) bool) Stage {
	return StageFunc(func(_ context.Context, rec Record[any]) (Record[any], bool, error) {
		typed, ok := rec.Payload.(T)
		if !ok {
			return rec, false, nil
		}
		if !keep(Record[T]{Header: rec.Header, Payload: typed}) {
			return rec, false, nil
		}
		return rec, true, nil
	})
}

// ProcessorStage adapts a typed processor<A,B> function into a Stage,
// handling the boxing/unboxing that letting Stage stay untyped requires.
func ProcessorStage[A, B any](apply func(Record[A]) (Record[B], bool, error)) Stage {
	return StageFunc(func(_ context.Context, rec Record[any]) (Record[any], bool, error) {
		typed, ok := rec.Payload.(A)
		if !ok {
			var zero Record[any]
			return zero, false, nil
		}
		out, keep, err := apply(Record[A]{Header: rec.Header, Payload: typed})
		if err != nil || !keep {
			return Record[any]{Header: rec.Header}, false, err
		}
		return Record[any]{Header: out.Header, Payload: out.Payload}, true, nil
	})
}

// Box lifts a typed record into the untyped record the pipeline consumes.
func Box[T any](rec Record[T]) Record[any] {
	return Record[any]{Header: rec.Header, Payload: rec.Payload}
}

// Unbox lowers an untyped record back to T, for the writer at the end of
// the chain. ok is false if the final payload isn't a T.
func Unbox[T any](rec Record[any]) (out Record[T], ok bool) {
	typed, ok := rec.Payload.(T)
	if !ok {
		return Record[T]{}, false
	}
	return Record[T]{Header: rec.Header, Payload: typed}, true
}

// JobListener observes the whole-job lifecycle.
type JobListener interface {
	BeforeJob(params JobParameters)
	AfterJob(report *JobReport)
}

// BatchListener observes batch-level events. T is the writer's payload
// type (the type the batch holds once accepted).
type BatchListener[T any] interface {
	BeforeBatchReading()
	AfterBatchProcessing(b Batch[T])
	AfterBatchWriting(b Batch[T])
	OnBatchWritingException(b Batch[T], cause error)
}

// ReaderListener observes individual read attempts.
type ReaderListener[T any] interface {
	BeforeRecordReading()
	AfterRecordReading(rec Record[T])
	OnRecordReadingException(cause error)
}

// WriterListener observes individual write attempts (each one a Batch,
// possibly a scanning singleton).
type WriterListener[T any] interface {
	BeforeRecordWriting(b Batch[T])
	AfterRecordWriting(b Batch[T])
	OnRecordWritingException(b Batch[T], cause error)
}

// PipelineListener observes per-record pipeline processing. It operates on
// the untyped Record[any] the pipeline itself uses, since a processor chain
// may change the record's payload type between input and output.
type PipelineListener interface {
	// BeforeRecordProcessing may transform or drop the record (ok=false)
	// before it reaches the first stage.
	BeforeRecordProcessing(rec Record[any]) (out Record[any], ok bool)
	AfterRecordProcessing(in Record[any], out Record[any], outOK bool)
	OnRecordProcessingException(rec Record[any], cause error)
}
