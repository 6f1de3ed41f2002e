package batch

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// JobParameters configures one run of the batch loop. The zero value is not
// valid; use NewJobParameters for sane defaults.
type JobParameters struct {
	Name                 string `yaml:"name"`
	BatchSize            int    `yaml:"batch_size"`
	ErrorThreshold       int64  `yaml:"error_threshold"`
	JmxEnabled           bool   `yaml:"jmx_enabled"`
	BatchScanningEnabled bool   `yaml:"batch_scanning_enabled"`
}

// NewJobParameters returns the default parameters: name "job", batch size 1,
// an unbounded error threshold, monitor registration and batch scanning
// both disabled.
func NewJobParameters() JobParameters {
	return JobParameters{
		Name:                 "job",
		BatchSize:            1,
		ErrorThreshold:       math.MaxInt64,
		JmxEnabled:           false,
		BatchScanningEnabled: false,
	}
}

// Validate checks the invariants NewJobParameters guarantees but a
// hand-built or YAML-loaded JobParameters might not.
func (p JobParameters) Validate() error {
	if p.BatchSize < 1 {
		return fmt.Errorf("batch: batch size must be >= 1, got %d", p.BatchSize)
	}
	if p.ErrorThreshold < 0 {
		return fmt.Errorf("batch: error threshold must be >= 0, got %d", p.ErrorThreshold)
	}
	return nil
}

// ParametersFromYAML parses JobParameters from YAML, applying
// NewJobParameters' defaults for any field the document omits.
func ParametersFromYAML(data []byte) (JobParameters, error) {
	params := NewJobParameters()

	// Unmarshal into a shadow struct so omitted fields don't zero out the
	// defaults already set above.
	var doc struct {
		Name                 *string `yaml:"name"`
		BatchSize            *int    `yaml:"batch_size"`
		ErrorThreshold       *int64  `yaml:"error_threshold"`
		JmxEnabled           *bool   `yaml:"jmx_enabled"`
		BatchScanningEnabled *bool   `yaml:"batch_scanning_enabled"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return JobParameters{}, fmt.Errorf("batch: invalid job parameters YAML: %w", err)
	}

	if doc.Name != nil {
		params.Name = *doc.Name
	}
	if doc.BatchSize != nil {
		params.BatchSize = *doc.BatchSize
	}
	if doc.ErrorThreshold != nil {
		params.ErrorThreshold = *doc.ErrorThreshold
	}
	if doc.JmxEnabled != nil {
		params.JmxEnabled = *doc.JmxEnabled
	}
	if doc.BatchScanningEnabled != nil {
		params.BatchScanningEnabled = *doc.BatchScanningEnabled
	}

	if err := params.Validate(); err != nil {
		return JobParameters{}, err
	}
	return params, nil
}
