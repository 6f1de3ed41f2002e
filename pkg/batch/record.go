// Package batch defines the data carriers that flow through an easy-batch
// job: Record, Header, Batch, JobParameters, JobStatus, JobMetrics and
// JobReport, shared between the core engine and any Reader/Writer/Stage
// implementation. Record, Header and Batch are immutable once constructed;
// JobMetrics is the mutable one, updated by the batch loop and safe to read
// concurrently.
package batch

import "time"

// Header carries the provenance of a single Record.
type Header struct {
	// Number is the 1-based position of the record in the read order.
	Number int64
	// SourceName identifies where the record came from (file path, table
	// name, topic, ...); set by the Reader.
	SourceName string
	// CreationTimestamp is when the record was produced by the Reader.
	CreationTimestamp time.Time
	// Scanned is set on every record the engine hands to the writer while
	// batch scanning is enabled: on the batch-level attempt and on each
	// single-record re-write after that attempt fails.
	Scanned bool
}

// Record is an immutable typed payload plus its Header.
type Record[T any] struct {
	Header  Header
	Payload T
}

// WithNumber returns a copy of the record with Header.Number set. Records
// are otherwise immutable; the engine calls this once, right after a
// successful read.
func (r Record[T]) WithNumber(n int64) Record[T] {
	r.Header.Number = n
	return r
}

// Scan returns a copy of the record with Header.Scanned set to true, used
// when a failed batch is re-presented to the writer record by record.
func (r Record[T]) Scan() Record[T] {
	r.Header.Scanned = true
	return r
}

// Batch is an ordered, read-only sequence of records handed to the writer
// as a unit.
type Batch[T any] struct {
	records []Record[T]
}

// NewBatch wraps records into a Batch. The slice is copied so later
// mutation by the caller cannot affect the batch.
func NewBatch[T any](records []Record[T]) Batch[T] {
	cp := make([]Record[T], len(records))
	copy(cp, records)
	return Batch[T]{records: cp}
}

// Records returns the batch's records in order. Callers must not mutate
// the returned slice's backing array.
func (b Batch[T]) Records() []Record[T] {
	return b.records
}

// Size returns the number of records in the batch.
func (b Batch[T]) Size() int {
	return len(b.records)
}

// IsEmpty reports whether the batch carries no records.
func (b Batch[T]) IsEmpty() bool {
	return len(b.records) == 0
}

// Scanned returns a copy of the batch with every record marked Scanned.
func (b Batch[T]) Scanned() Batch[T] {
	out := make([]Record[T], len(b.records))
	for i, r := range b.records {
		out[i] = r.Scan()
	}
	return Batch[T]{records: out}
}

// Singletons splits the batch into one single-record Batch per record, in
// the same order, each record marked Scanned. Used by the batch-scanning
// recovery protocol.
func (b Batch[T]) Singletons() []Batch[T] {
	out := make([]Batch[T], len(b.records))
	for i, r := range b.records {
		out[i] = Batch[T]{records: []Record[T]{r.Scan()}}
	}
	return out
}
