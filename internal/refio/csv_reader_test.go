package refio

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "refio-*.csv")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

func TestCSVReaderReadsRowsAfterHeader(t *testing.T) {
	path := writeTempCSV(t, "name,age\nalice,30\nbob,40\n")
	r := NewCSVReader(path)
	require.NoError(t, r.Open(context.Background()))
	defer r.Close()

	assert.Equal(t, []string{"name", "age"}, r.Header())

	rec1, ok, err := r.ReadRecord(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "30"}, rec1.Payload)
	assert.Equal(t, path, rec1.Header.SourceName)

	rec2, ok, err := r.ReadRecord(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"bob", "40"}, rec2.Payload)

	_, ok, err = r.ReadRecord(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCSVReaderWithoutHeader(t *testing.T) {
	path := writeTempCSV(t, "1,2\n3,4\n")
	r := NewCSVReader(path)
	r.HasHeader = false
	require.NoError(t, r.Open(context.Background()))
	defer r.Close()

	rec, ok, err := r.ReadRecord(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"1", "2"}, rec.Payload)
}

func TestCSVReaderOpenMissingFileErrors(t *testing.T) {
	r := NewCSVReader("/does/not/exist.csv")
	err := r.Open(context.Background())
	assert.Error(t, err)
	assert.NoError(t, r.Close())
}
