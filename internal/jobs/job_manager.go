package jobs

import (
	"fmt"
	"log/slog"

	"custody/internal/core/application/usecases/queries"

	"github.com/prometheus/client_golang/prometheus"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	stepStateMetricsJob *StepStateMetricsJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	stateCountsHandler queries.GetStepStateCountsQueryHandler,
	registerer prometheus.Registerer,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		stepStateMetricsJob: NewStepStateMetricsJob(stateCountsHandler, registerer, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.stepStateMetricsJob.Start(); err != nil {
		return fmt.Errorf("failed to start step state metrics job: %w", err)
	}
	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.stepStateMetricsJob.Stop()
}
