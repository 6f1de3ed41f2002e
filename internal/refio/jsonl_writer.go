package refio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// JSONLWriter is a reference Writer[T] appending one JSON-encoded line per
// record to a file. No third-party JSON Lines library appears anywhere in
// the retrieval pack, so this stays on encoding/json; the file-handling
// shape (open/write/flush/close) is adapted from the teacher's CSV output
// plugin.
type JSONLWriter[T any] struct {
	Path   string
	Append bool

	file *os.File
	enc  *json.Encoder
}

// NewJSONLWriter builds a JSONLWriter truncating Path on Open.
func NewJSONLWriter[T any](path string) *JSONLWriter[T] {
	return &JSONLWriter[T]{Path: path}
}

// Open creates (or truncates, unless Append) the output file.
func (w *JSONLWriter[T]) Open(ctx context.Context) error {
	mode := os.O_CREATE | os.O_WRONLY
	if w.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}
	f, err := os.OpenFile(w.Path, mode, 0o644)
	if err != nil {
		return fmt.Errorf("jsonl writer: open %s: %w", w.Path, err)
	}
	w.file = f
	w.enc = json.NewEncoder(f)
	return nil
}

// WriteRecords appends each record's payload as one JSON line, in order.
// An encoding failure stops the batch at that record: the lines already
// written, from this batch or from earlier ones, stay in the file.
func (w *JSONLWriter[T]) WriteRecords(ctx context.Context, b batch.Batch[T]) error {
	for _, rec := range b.Records() {
		if err := w.enc.Encode(rec.Payload); err != nil {
			return fmt.Errorf("jsonl writer: encode record %d: %w", rec.Header.Number, err)
		}
	}
	return nil
}

// Close closes the underlying file. Safe to call even if Open failed.
func (w *JSONLWriter[T]) Close() error {
	if w.file == nil {
		return nil
	}
	return w.file.Close()
}
