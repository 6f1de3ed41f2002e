package batch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobParametersDefaults(t *testing.T) {
	p := NewJobParameters()
	assert.Equal(t, "job", p.Name)
	assert.Equal(t, 1, p.BatchSize)
	assert.Equal(t, int64(math.MaxInt64), p.ErrorThreshold)
	assert.False(t, p.JmxEnabled)
	assert.False(t, p.BatchScanningEnabled)
	require.NoError(t, p.Validate())
}

func TestParametersFromYAMLAppliesDefaultsToOmittedFields(t *testing.T) {
	p, err := ParametersFromYAML([]byte(`name: nightly-import
batch_size: 500
`))
	require.NoError(t, err)

	assert.Equal(t, "nightly-import", p.Name)
	assert.Equal(t, 500, p.BatchSize)
	assert.Equal(t, int64(math.MaxInt64), p.ErrorThreshold)
	assert.False(t, p.JmxEnabled)
}

func TestParametersFromYAMLRejectsInvalidBatchSize(t *testing.T) {
	_, err := ParametersFromYAML([]byte(`batch_size: 0`))
	assert.Error(t, err)
}

func TestJobParametersValidateRejectsNegativeThreshold(t *testing.T) {
	p := NewJobParameters()
	p.ErrorThreshold = -1
	assert.Error(t, p.Validate())
}
