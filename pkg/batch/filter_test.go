package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Pin the direction explicitly: records *inside* [low, high] are dropped,
// everything else passes. It is easy to invert this by accident.
func TestRecordNumberRangeFilterDropsInsideRange(t *testing.T) {
	stage := RecordNumberRangeFilter[string](2, 3)

	cases := []struct {
		number int64
		keep   bool
	}{
		{1, true},
		{2, false},
		{3, false},
		{4, true},
	}

	for _, c := range cases {
		rec := Box(Record[string]{Header: Header{Number: c.number}, Payload: "x"})
		_, ok, err := stage.Apply(context.Background(), rec)
		assert.NoError(t, err)
		assert.Equal(t, c.keep, ok, "number %d", c.number)
	}
}
