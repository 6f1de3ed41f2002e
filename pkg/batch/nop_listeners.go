package batch

// NopJobListener can be embedded by a JobListener implementation that only
// cares about one of the two hooks, the teacher's BaseSource/BaseProcessor
// no-op embedding pattern generalized to listeners.
type NopJobListener struct{}

func (NopJobListener) BeforeJob(JobParameters) {}
func (NopJobListener) AfterJob(*JobReport)     {}

// NopBatchListener is an embeddable no-op BatchListener.
type NopBatchListener[T any] struct{}

func (NopBatchListener[T]) BeforeBatchReading()               {}
func (NopBatchListener[T]) AfterBatchProcessing(Batch[T])     {}
func (NopBatchListener[T]) AfterBatchWriting(Batch[T])        {}
func (NopBatchListener[T]) OnBatchWritingException(Batch[T], error) {}

// NopReaderListener is an embeddable no-op ReaderListener.
type NopReaderListener[T any] struct{}

func (NopReaderListener[T]) BeforeRecordReading()            {}
func (NopReaderListener[T]) AfterRecordReading(Record[T])    {}
func (NopReaderListener[T]) OnRecordReadingException(error)  {}

// NopWriterListener is an embeddable no-op WriterListener.
type NopWriterListener[T any] struct{}

func (NopWriterListener[T]) BeforeRecordWriting(Batch[T])            {}
func (NopWriterListener[T]) AfterRecordWriting(Batch[T])             {}
func (NopWriterListener[T]) OnRecordWritingException(Batch[T], error) {}

// NopPipelineListener is an embeddable no-op PipelineListener: it passes
// every record through unchanged.
type NopPipelineListener struct{}

func (NopPipelineListener) BeforeRecordProcessing(rec Record[any]) (Record[any], bool) {
	return rec, true
}
func (NopPipelineListener) AfterRecordProcessing(Record[any], Record[any], bool) {}
func (NopPipelineListener) OnRecordProcessingException(Record[any], error)       {}
