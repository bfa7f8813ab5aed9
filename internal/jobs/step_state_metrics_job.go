package jobs

import (
	"context"
	"log/slog"

	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/model/step"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
)

// stepStateMetricsSchedule refreshes the gauge every 15 seconds.
const stepStateMetricsSchedule = "*/15 * * * * *"

// stepStateCounter aggregates the step store by state.
type stepStateCounter interface {
	Handle(ctx context.Context, query queries.GetStepStateCountsQuery) (queries.GetStepStateCountsQueryResponse, error)
}

// StepStateMetricsJob periodically exports per-state step counts as a
// prometheus gauge. States with no steps are reported as zero so the series
// never goes stale.
type StepStateMetricsJob struct {
	handler stepStateCounter
	gauge   *prometheus.GaugeVec
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewStepStateMetricsJob creates the metrics job. The gauge is registered on
// the given registerer.
func NewStepStateMetricsJob(
	handler stepStateCounter,
	registerer prometheus.Registerer,
	logger *slog.Logger,
) *StepStateMetricsJob {
	return &StepStateMetricsJob{
		handler: handler,
		gauge: promauto.With(registerer).NewGaugeVec(prometheus.GaugeOpts{
			Name: "custody_steps_by_state",
			Help: "Number of custody steps currently in each lifecycle state.",
		}, []string{"state"}),
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "step_state_metrics_job"),
	}
}

// Start begins the periodic gauge refresh.
func (j *StepStateMetricsJob) Start() error {
	_, err := j.cron.AddFunc(stepStateMetricsSchedule, func() {
		ctx := context.Background()
		if err := j.refresh(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Step state metrics refresh failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Step state metrics job started")
	return nil
}

// Stop stops the periodic refresh.
func (j *StepStateMetricsJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Step state metrics job stopped")
}

func (j *StepStateMetricsJob) refresh(ctx context.Context) error {
	counts, err := j.handler.Handle(ctx, queries.NewGetStepStateCountsQuery())
	if err != nil {
		return err
	}

	for _, state := range step.AllStates() {
		j.gauge.WithLabelValues(state.String()).Set(float64(counts.Counts[state]))
	}
	return nil
}
