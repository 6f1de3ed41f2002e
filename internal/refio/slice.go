// Package refio provides reference Reader/Writer collaborators: small,
// dependency-backed implementations a job can be wired against directly,
// the role the source system calls its bundled "reference collaborators".
package refio

import (
	"context"
	"sync"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// SliceReader reads records from an in-memory slice, in order. It is the
// simplest possible Reader, used in tests and as a building block for
// collaborators that stage data in memory before a run.
type SliceReader[T any] struct {
	Items []T
	index int

	// OpenErr, when set, is returned by Open instead of opening normally.
	OpenErr error
	// CloseErr, when set, is returned by Close instead of closing normally.
	CloseErr error
	// ReadErr, when set, is consulted before every ReadRecord with the index
	// of the item about to be read (0-based); returning a non-nil error
	// simulates a read failure partway through the stream.
	ReadErr func(index int) error
}

// NewSliceReader wraps items for sequential reading.
func NewSliceReader[T any](items []T) *SliceReader[T] {
	return &SliceReader[T]{Items: items}
}

func (r *SliceReader[T]) Open(context.Context) error { return r.OpenErr }

func (r *SliceReader[T]) ReadRecord(context.Context) (batch.Record[T], bool, error) {
	if r.index >= len(r.Items) {
		return batch.Record[T]{}, false, nil
	}
	if r.ReadErr != nil {
		if err := r.ReadErr(r.index); err != nil {
			return batch.Record[T]{}, false, err
		}
	}
	item := r.Items[r.index]
	r.index++
	return batch.Record[T]{Payload: item}, true, nil
}

func (r *SliceReader[T]) Close() error { return r.CloseErr }

// SliceWriter accumulates every written batch into memory, in call order.
// Safe for concurrent use so tests can inspect it from another goroutine
// while a job is still running.
type SliceWriter[T any] struct {
	mu      sync.Mutex
	Batches []batch.Batch[T]

	// Fail, when set, is consulted on every WriteRecords call; returning a
	// non-nil error simulates a write failure.
	Fail func(batch.Batch[T]) error

	// OpenErr, when set, is returned by Open instead of opening normally.
	OpenErr error
	// CloseErr, when set, is returned by Close instead of closing normally.
	CloseErr error
}

func NewSliceWriter[T any]() *SliceWriter[T] {
	return &SliceWriter[T]{}
}

func (w *SliceWriter[T]) Open(context.Context) error { return w.OpenErr }

// WriteRecords records every attempt, successful or not, so tests can
// assert on the exact call sequence (e.g. batch-scanning recovery).
func (w *SliceWriter[T]) WriteRecords(_ context.Context, b batch.Batch[T]) error {
	w.mu.Lock()
	w.Batches = append(w.Batches, b)
	w.mu.Unlock()

	if w.Fail != nil {
		if err := w.Fail(b); err != nil {
			return err
		}
	}
	return nil
}

func (w *SliceWriter[T]) Close() error { return w.CloseErr }

// AllRecords flattens every batch written so far, in write order.
func (w *SliceWriter[T]) AllRecords() []batch.Record[T] {
	w.mu.Lock()
	defer w.mu.Unlock()
	var out []batch.Record[T]
	for _, b := range w.Batches {
		out = append(out, b.Records()...)
	}
	return out
}
