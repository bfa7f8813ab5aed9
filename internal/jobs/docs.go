// Package jobs provides scheduled background tasks for the custody service.
//
// Jobs are cron-based (github.com/robfig/cron/v3) and coordinated through
// JobManager, which provides a unified start/stop interface:
//
//	jobManager := jobs.NewJobManager(stateCountsHandler, registry, logger)
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// StepStateMetricsJob periodically aggregates the step store by lifecycle
// state and exports the counts as a prometheus gauge, so dashboards can track
// how custody chains move through their phases without querying the store.
package jobs
