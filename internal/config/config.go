// Package config loads an EngineConfig: the JobParameters for a run plus
// the settings for whichever reference collaborators the run wires up.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dguimard/easy-batch/pkg/batch"
)

// EngineConfig is everything a CLI run needs: the job's parameters, and
// the configuration for whichever reference Reader/Writer collaborators it
// wires up. A nil collaborator config means that collaborator is unused.
type EngineConfig struct {
	Job         batch.JobParameters
	CSVInput    *CSVInputConfig
	JSONLOutput *JSONLOutputConfig
	MySQLOutput *MySQLOutputConfig
	ReportStore *ReportStoreConfig
	// Schedule is a cron expression; empty means run the job once and exit.
	Schedule string
}

// CSVInputConfig configures a refio.CSVReader.
type CSVInputConfig struct {
	Path      string `yaml:"path"`
	HasHeader bool   `yaml:"has_header"`
}

// JSONLOutputConfig configures a refio.JSONLWriter.
type JSONLOutputConfig struct {
	Path   string `yaml:"path"`
	Append bool   `yaml:"append"`
}

// MySQLOutputConfig configures a refio.MySQLWriter.
type MySQLOutputConfig struct {
	DSN   string `yaml:"dsn"`
	Query string `yaml:"query"`
}

// ReportStoreConfig configures a refio.SQLiteCheckpointStore.
type ReportStoreConfig struct {
	Path string `yaml:"path"`
}

// rawConfig mirrors the YAML document shape. Job is kept as a yaml.Node so
// it can be re-marshaled and handed to batch.ParametersFromYAML, reusing
// that function's default-filling rather than duplicating it here.
type rawConfig struct {
	Job         yaml.Node          `yaml:"job"`
	CSVInput    *CSVInputConfig    `yaml:"csv_input,omitempty"`
	JSONLOutput *JSONLOutputConfig `yaml:"jsonl_output,omitempty"`
	MySQLOutput *MySQLOutputConfig `yaml:"mysql_output,omitempty"`
	ReportStore *ReportStoreConfig `yaml:"report_store,omitempty"`
	Schedule    string             `yaml:"schedule,omitempty"`
}

// LoadConfig reads and parses filename into an EngineConfig, applying
// JobParameters' defaults for any omitted job field.
func LoadConfig(filename string) (*EngineConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	jobDoc, err := yaml.Marshal(&raw.Job)
	if err != nil {
		return nil, fmt.Errorf("failed to re-marshal job section: %w", err)
	}
	params, err := batch.ParametersFromYAML(jobDoc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse job parameters: %w", err)
	}

	cfg := &EngineConfig{
		Job:         params,
		CSVInput:    raw.CSVInput,
		JSONLOutput: raw.JSONLOutput,
		MySQLOutput: raw.MySQLOutput,
		ReportStore: raw.ReportStore,
		Schedule:    raw.Schedule,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the collaborator configs LoadConfig can't default its way
// out of: a configured collaborator still needs its required fields.
func (c *EngineConfig) Validate() error {
	if err := c.Job.Validate(); err != nil {
		return fmt.Errorf("invalid job parameters: %w", err)
	}
	if c.CSVInput != nil && c.CSVInput.Path == "" {
		return fmt.Errorf("csv_input.path is required")
	}
	if c.JSONLOutput != nil && c.JSONLOutput.Path == "" {
		return fmt.Errorf("jsonl_output.path is required")
	}
	if c.MySQLOutput != nil {
		if c.MySQLOutput.DSN == "" {
			return fmt.Errorf("mysql_output.dsn is required")
		}
		if c.MySQLOutput.Query == "" {
			return fmt.Errorf("mysql_output.query is required")
		}
	}
	if c.ReportStore != nil && c.ReportStore.Path == "" {
		return fmt.Errorf("report_store.path is required")
	}
	return nil
}

// RequireRunnable checks the shape main needs to actually build a job:
// one input and exactly one output collaborator configured. Validate
// alone allows a document with neither, since it's also used to check
// partially-filled config fragments.
func (c *EngineConfig) RequireRunnable() error {
	if c.CSVInput == nil {
		return fmt.Errorf("csv_input is required")
	}
	outputs := 0
	if c.JSONLOutput != nil {
		outputs++
	}
	if c.MySQLOutput != nil {
		outputs++
	}
	if outputs != 1 {
		return fmt.Errorf("exactly one of jsonl_output or mysql_output is required, got %d", outputs)
	}
	return nil
}
