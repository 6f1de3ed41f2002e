// Package runner re-submits the same job to a JobExecutor on a fixed cron
// schedule. The schedule is set once at construction: spec's Non-goal of
// dynamic reconfiguration mid-run means there is no API to change it later.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dguimard/easy-batch/internal/executor"
	"github.com/dguimard/easy-batch/internal/logger"
	"github.com/dguimard/easy-batch/pkg/batch"
)

// JobFactory builds a fresh Runnable for one run. A factory rather than a
// single Runnable instance, since a job run consumes its Reader/Writer and
// can't be replayed.
type JobFactory func() executor.Runnable

// Config configures the underlying cron scheduler.
type Config struct {
	Location *time.Location
}

// DefaultConfig returns the default scheduler configuration (UTC).
func DefaultConfig() *Config {
	return &Config{Location: time.UTC}
}

// Runner submits factory's output to ex once per cron tick.
type Runner struct {
	mu      sync.RWMutex
	cron    *cron.Cron
	ex      *executor.Executor
	factory JobFactory
	log     *logger.Logger
	entryID cron.EntryID
	running bool
	lastRep *batch.JobReport
}

// New builds a Runner bound to cronExpr. It does not start running until
// Start is called.
func New(ex *executor.Executor, factory JobFactory, cronExpr string, config *Config, log *logger.Logger) (*Runner, error) {
	if config == nil {
		config = DefaultConfig()
	}
	c := cron.New(cron.WithLocation(config.Location))

	r := &Runner{cron: c, ex: ex, factory: factory, log: log}
	entryID, err := c.AddFunc(cronExpr, r.runOnce)
	if err != nil {
		return nil, fmt.Errorf("runner: invalid cron expression %q: %w", cronExpr, err)
	}
	r.entryID = entryID
	return r, nil
}

// Start begins the schedule. It is an error to Start a Runner twice.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("runner: already running")
	}
	r.cron.Start()
	r.running = true
	r.log.Info("runner started, next run at %s", r.cron.Entry(r.entryID).Next)
	return nil
}

// Stop halts the schedule and waits for any in-flight run to finish.
func (r *Runner) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return fmt.Errorf("runner: not running")
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.running = false
	return nil
}

// NextRun returns the next scheduled run time.
func (r *Runner) NextRun() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cron.Entry(r.entryID).Next
}

// LastReport returns the JobReport of the most recently finished run, or
// nil if no run has completed yet.
func (r *Runner) LastReport() *batch.JobReport {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastRep
}

func (r *Runner) runOnce() {
	job := r.factory()
	report := r.ex.Execute(context.Background(), job)

	r.mu.Lock()
	r.lastRep = report
	r.mu.Unlock()

	if report.LastError != nil {
		r.log.Error("scheduled run of %s ended %s: %v", report.JobName, report.Status, report.LastError)
	} else {
		r.log.Info("scheduled run of %s ended %s", report.JobName, report.Status)
	}
}
