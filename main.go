package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dguimard/easy-batch/internal/config"
	"github.com/dguimard/easy-batch/internal/engine"
	"github.com/dguimard/easy-batch/internal/executor"
	"github.com/dguimard/easy-batch/internal/listener"
	"github.com/dguimard/easy-batch/internal/logger"
	"github.com/dguimard/easy-batch/internal/monitor"
	"github.com/dguimard/easy-batch/internal/pipeline"
	"github.com/dguimard/easy-batch/internal/refio"
	"github.com/dguimard/easy-batch/internal/runner"
	"github.com/dguimard/easy-batch/pkg/batch"
)

var (
	version     = "0.1.0"
	configFile  string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "configs/job.yaml", "Path to job configuration file")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("easy-batch version %s\n", version)
		os.Exit(0)
	}

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger("easybatch", false, "")
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	if err := cfg.RequireRunnable(); err != nil {
		log.Fatal("invalid job configuration: %v", err)
	}

	ex := executor.New(log)

	var store *refio.SQLiteCheckpointStore
	if cfg.ReportStore != nil {
		store = refio.NewSQLiteCheckpointStore(cfg.ReportStore.Path)
		if err := store.Open(); err != nil {
			log.Fatal("failed to open report store: %v", err)
		}
		defer store.Close()
	}

	if cfg.Schedule == "" {
		job, err := buildJob(cfg, log)
		if err != nil {
			log.Fatal("failed to build job %s: %v", cfg.Job.Name, err)
		}
		report := ex.Execute(context.Background(), job)
		archiveReport(store, report, log)
		printReport(report)
		if report.Status == batch.StatusFailed {
			os.Exit(1)
		}
		return
	}

	factory := func() executor.Runnable {
		job, err := buildJob(cfg, log)
		if err != nil {
			// cfg already validated above; buildJob's error paths are all
			// deterministic from cfg, so this should not happen in practice.
			log.Fatal("failed to build scheduled job %s: %v", cfg.Job.Name, err)
		}
		return job
	}

	r, err := runner.New(ex, factory, cfg.Schedule, runner.DefaultConfig(), log)
	if err != nil {
		log.Fatal("failed to schedule job %s: %v", cfg.Job.Name, err)
	}
	if err := r.Start(); err != nil {
		log.Fatal("failed to start scheduler for %s: %v", cfg.Job.Name, err)
	}

	log.Info("job %s scheduled on %q, next run at %s", cfg.Job.Name, cfg.Schedule, r.NextRun())
	log.Info("press ctrl-c to stop")
	select {}
}

// buildJob wires cfg's CSV input and its one configured output into a
// runnable job. The pipeline has no stages: the reference collaborators
// carry rows through as []string unchanged.
func buildJob(cfg *config.EngineConfig, log *logger.Logger) (*engine.Job[[]string, []string], error) {
	if cfg.CSVInput == nil {
		return nil, fmt.Errorf("csv_input is required")
	}
	reader := refio.NewCSVReader(cfg.CSVInput.Path)
	reader.HasHeader = cfg.CSVInput.HasHeader

	writer, err := buildWriter(cfg)
	if err != nil {
		return nil, err
	}

	pl := pipeline.New()
	hub := listener.NewHub[[]string, []string](log)
	jobLog := log.WithJob(cfg.Job.Name)

	job := engine.NewJob(cfg.Job, reader, pl, writer, hub, jobLog)

	if cfg.Job.JmxEnabled {
		m := monitor.New(cfg.Job.Name, job.Metrics, job.Status)
		if err := monitor.Register(m, true); err != nil {
			log.Warn("failed to register monitor for %s: %v", cfg.Job.Name, err)
		}
	}

	return job, nil
}

func buildWriter(cfg *config.EngineConfig) (batch.Writer[[]string], error) {
	switch {
	case cfg.JSONLOutput != nil:
		w := refio.NewJSONLWriter[[]string](cfg.JSONLOutput.Path)
		w.Append = cfg.JSONLOutput.Append
		return w, nil
	case cfg.MySQLOutput != nil:
		args := func(row []string) []interface{} {
			out := make([]interface{}, len(row))
			for i, v := range row {
				out[i] = v
			}
			return out
		}
		return refio.NewMySQLWriter[[]string](cfg.MySQLOutput.DSN, cfg.MySQLOutput.Query, args), nil
	default:
		return nil, fmt.Errorf("no output configured: set jsonl_output or mysql_output")
	}
}

func archiveReport(store *refio.SQLiteCheckpointStore, report *batch.JobReport, log *logger.Logger) {
	if store == nil {
		return
	}
	if err := store.SaveReport(report); err != nil {
		log.Error("failed to archive report for %s: %v", report.JobName, err)
	}
}

func printReport(report *batch.JobReport) {
	fmt.Printf("job %s finished: status=%s read=%d write=%d filter=%d error=%d\n",
		report.JobName, report.Status,
		report.Metrics.ReadCount, report.Metrics.WriteCount, report.Metrics.FilterCount, report.Metrics.ErrorCount)
	if report.LastError != nil {
		fmt.Printf("last error: %v\n", report.LastError)
	}
}
