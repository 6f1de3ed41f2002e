package refio

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// CSVReader is a reference Reader[[]string] reading one row at a time from
// a delimited file. Header.SourceName is set to path for every record.
type CSVReader struct {
	Path      string
	HasHeader bool
	Delimiter rune

	file   *os.File
	reader *csv.Reader
	header []string
}

// NewCSVReader builds a CSVReader for path, comma-delimited, expecting a
// header row by default.
func NewCSVReader(path string) *CSVReader {
	return &CSVReader{Path: path, HasHeader: true, Delimiter: ','}
}

// Open opens the file and, if HasHeader, consumes the header row.
func (r *CSVReader) Open(ctx context.Context) error {
	f, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("csv reader: open %s: %w", r.Path, err)
	}
	r.file = f

	cr := csv.NewReader(f)
	if r.Delimiter != 0 {
		cr.Comma = r.Delimiter
	}
	cr.TrimLeadingSpace = true
	r.reader = cr

	if r.HasHeader {
		header, err := cr.Read()
		if err != nil {
			return fmt.Errorf("csv reader: read header of %s: %w", r.Path, err)
		}
		r.header = header
	}
	return nil
}

// ReadRecord reads the next row. ok=false, err=nil at end of file.
func (r *CSVReader) ReadRecord(ctx context.Context) (batch.Record[[]string], bool, error) {
	row, err := r.reader.Read()
	if err == io.EOF {
		return batch.Record[[]string]{}, false, nil
	}
	if err != nil {
		return batch.Record[[]string]{}, false, fmt.Errorf("csv reader: read row of %s: %w", r.Path, err)
	}
	rec := batch.Record[[]string]{
		Header: batch.Header{
			SourceName:        r.Path,
			CreationTimestamp: time.Now(),
		},
		Payload: row,
	}
	return rec, true, nil
}

// Close closes the underlying file. Safe to call even if Open failed.
func (r *CSVReader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// Header returns the parsed header row, or nil if HasHeader was false.
func (r *CSVReader) Header() []string { return r.header }
