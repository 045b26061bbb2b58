package jobs

import (
	"dresshire-backend/internal/clock"
	"dresshire-backend/internal/config"
	"dresshire-backend/internal/lifecycle"
	"dresshire-backend/internal/logger"
	"dresshire-backend/internal/repository"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	store   repository.Store
	machine *lifecycle.Machine
	clk     clock.Clock
	config  *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(store repository.Store, machine *lifecycle.Machine, clk clock.Clock, cfg *config.Config) *JobRunner {
	return &JobRunner{
		store:   store,
		machine: machine,
		clk:     clk,
		config:  cfg,
	}
}

// Config exposes the configuration for scheduler registration
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ExpireUnpaidRentals()
	jr.CompleteOverdueRentals()
}
