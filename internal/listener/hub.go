// Package listener implements the ListenerHub: ordered fan-out to the five
// listener lists a job can register, with the forward-for-before /
// reverse-for-after ordering the engine's contract requires.
package listener

import (
	"github.com/dguimard/easy-batch/internal/logger"
	"github.com/dguimard/easy-batch/pkg/batch"
)

// Hub holds registration-ordered listener lists for one job. In is the
// record payload type the reader produces; Out is the payload type the
// pipeline hands to the writer — they differ whenever a processor changes
// the record's type.
type Hub[In, Out any] struct {
	log *logger.Logger

	job      []batch.JobListener
	b        []batch.BatchListener[Out]
	reader   []batch.ReaderListener[In]
	writer   []batch.WriterListener[Out]
	pipeline []batch.PipelineListener
}

// NewHub creates an empty hub that logs listener failures through log.
func NewHub[In, Out any](log *logger.Logger) *Hub[In, Out] {
	return &Hub[In, Out]{log: log}
}

func (h *Hub[In, Out]) AddJob(l batch.JobListener)           { h.job = append(h.job, l) }
func (h *Hub[In, Out]) AddBatch(l batch.BatchListener[Out])  { h.b = append(h.b, l) }
func (h *Hub[In, Out]) AddReader(l batch.ReaderListener[In]) { h.reader = append(h.reader, l) }
func (h *Hub[In, Out]) AddWriter(l batch.WriterListener[Out]) {
	h.writer = append(h.writer, l)
}
func (h *Hub[In, Out]) AddPipeline(l batch.PipelineListener) { h.pipeline = append(h.pipeline, l) }

// guard runs fn, recovering a panic and logging it rather than letting a
// misbehaving listener take down the batch loop. A raising listener must
// not prevent its peers from being invoked.
func (h *Hub[In, Out]) guard(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("listener %s panicked: %v", what, r)
		}
	}()
	fn()
}

// BeforeJob fires in forward (registration) order.
func (h *Hub[In, Out]) BeforeJob(params batch.JobParameters) {
	for _, l := range h.job {
		h.guard("beforeJob", func() { l.BeforeJob(params) })
	}
}

// AfterJob fires in reverse (last-registered-first) order.
func (h *Hub[In, Out]) AfterJob(report *batch.JobReport) {
	for i := len(h.job) - 1; i >= 0; i-- {
		l := h.job[i]
		h.guard("afterJob", func() { l.AfterJob(report) })
	}
}

func (h *Hub[In, Out]) BeforeBatchReading() {
	for _, l := range h.b {
		h.guard("beforeBatchReading", func() { l.BeforeBatchReading() })
	}
}

func (h *Hub[In, Out]) AfterBatchProcessing(b batch.Batch[Out]) {
	for i := len(h.b) - 1; i >= 0; i-- {
		l := h.b[i]
		h.guard("afterBatchProcessing", func() { l.AfterBatchProcessing(b) })
	}
}

func (h *Hub[In, Out]) AfterBatchWriting(b batch.Batch[Out]) {
	for i := len(h.b) - 1; i >= 0; i-- {
		l := h.b[i]
		h.guard("afterBatchWriting", func() { l.AfterBatchWriting(b) })
	}
}

func (h *Hub[In, Out]) OnBatchWritingException(b batch.Batch[Out], cause error) {
	for i := len(h.b) - 1; i >= 0; i-- {
		l := h.b[i]
		h.guard("onBatchWritingException", func() { l.OnBatchWritingException(b, cause) })
	}
}

func (h *Hub[In, Out]) BeforeRecordReading() {
	for _, l := range h.reader {
		h.guard("beforeRecordReading", func() { l.BeforeRecordReading() })
	}
}

func (h *Hub[In, Out]) AfterRecordReading(rec batch.Record[In]) {
	for i := len(h.reader) - 1; i >= 0; i-- {
		l := h.reader[i]
		h.guard("afterRecordReading", func() { l.AfterRecordReading(rec) })
	}
}

func (h *Hub[In, Out]) OnRecordReadingException(cause error) {
	for i := len(h.reader) - 1; i >= 0; i-- {
		l := h.reader[i]
		h.guard("onRecordReadingException", func() { l.OnRecordReadingException(cause) })
	}
}

func (h *Hub[In, Out]) BeforeRecordWriting(b batch.Batch[Out]) {
	for _, l := range h.writer {
		h.guard("beforeRecordWriting", func() { l.BeforeRecordWriting(b) })
	}
}

func (h *Hub[In, Out]) AfterRecordWriting(b batch.Batch[Out]) {
	for i := len(h.writer) - 1; i >= 0; i-- {
		l := h.writer[i]
		h.guard("afterRecordWriting", func() { l.AfterRecordWriting(b) })
	}
}

func (h *Hub[In, Out]) OnRecordWritingException(b batch.Batch[Out], cause error) {
	for i := len(h.writer) - 1; i >= 0; i-- {
		l := h.writer[i]
		h.guard("onRecordWritingException", func() { l.OnRecordWritingException(b, cause) })
	}
}

// BeforeRecordProcessing chains every pipeline listener's pre-processing
// hook forward, threading the (possibly transformed) record through each.
// If any listener drops the record (ok=false), the chain stops immediately
// and the record is reported as skipped.
func (h *Hub[In, Out]) BeforeRecordProcessing(rec batch.Record[any]) (out batch.Record[any], ok bool, cause error) {
	out = rec
	ok = true
	for _, l := range h.pipeline {
		if !ok {
			break
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					ok = false
					cause = panicToError(r)
				}
			}()
			out, ok = l.BeforeRecordProcessing(out)
		}()
		if cause != nil {
			return out, false, cause
		}
	}
	return out, ok, nil
}

// AfterRecordProcessing fires every pipeline listener in reverse order.
// The engine calls it for records skipped by a pre-processing hook and for
// records the pipeline accepted; filtered and errored records do not reach
// it (errored ones go to OnRecordProcessingException instead).
func (h *Hub[In, Out]) AfterRecordProcessing(in batch.Record[any], out batch.Record[any], outOK bool) {
	for i := len(h.pipeline) - 1; i >= 0; i-- {
		l := h.pipeline[i]
		h.guard("afterRecordProcessing", func() { l.AfterRecordProcessing(in, out, outOK) })
	}
}

func (h *Hub[In, Out]) OnRecordProcessingException(rec batch.Record[any], cause error) {
	for i := len(h.pipeline) - 1; i >= 0; i-- {
		l := h.pipeline[i]
		h.guard("onRecordProcessingException", func() { l.OnRecordProcessingException(rec, cause) })
	}
}

func panicToError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return &panicError{r}
}

type panicError struct{ v interface{} }

func (p *panicError) Error() string { return "panic: " + toString(p.v) }

func toString(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	if err, ok := v.(error); ok {
		return err.Error()
	}
	return "non-string panic value"
}
