package refio

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dguimard/easy-batch/pkg/batch"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestJSONLWriterWritesOneLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w := NewJSONLWriter[widget](path)
	require.NoError(t, w.Open(context.Background()))

	b := batch.NewBatch([]batch.Record[widget]{
		{Payload: widget{Name: "a", Count: 1}},
		{Payload: widget{Name: "b", Count: 2}},
	})
	require.NoError(t, w.WriteRecords(context.Background(), b))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)

	var first widget
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, widget{Name: "a", Count: 1}, first)
}

func TestJSONLWriterAppendsAcrossBatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w := NewJSONLWriter[widget](path)
	require.NoError(t, w.Open(context.Background()))

	require.NoError(t, w.WriteRecords(context.Background(), batch.NewBatch([]batch.Record[widget]{
		{Payload: widget{Name: "a", Count: 1}},
	})))
	require.NoError(t, w.WriteRecords(context.Background(), batch.NewBatch([]batch.Record[widget]{
		{Payload: widget{Name: "b", Count: 2}},
	})))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(t, lines, 2)
}
