package queries

import (
	"context"
	"time"

	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"

	"gorm.io/gorm"
)

// GetStepPhaseDurationQueryHandler measures phase intervals from the ledger.
// The earliest record per phase wins, so retried transitions do not stretch
// the measurement.
type GetStepPhaseDurationQueryHandler struct {
	db *gorm.DB
}

// NewGetStepPhaseDurationQueryHandler creates a handler for phase duration
// queries. Requires a GORM database connection for query execution.
func NewGetStepPhaseDurationQueryHandler(db *gorm.DB) GetStepPhaseDurationQueryHandler {
	return GetStepPhaseDurationQueryHandler{db: db}
}

// Handle executes the phase duration query.
// Returns an ObjectNotFoundError when the step never reached one of the
// phases.
func (h GetStepPhaseDurationQueryHandler) Handle(
	ctx context.Context,
	query GetStepPhaseDurationQuery,
) (GetStepPhaseDurationQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStepPhaseDurationQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			state,
			MIN(created_at)
		FROM ledger_records
		WHERE step_id = ? AND state IN (?, ?)
		GROUP BY state
	`, query.StepID().String(), int(query.From()), int(query.To())).Rows()
	if err != nil {
		return GetStepPhaseDurationQueryResponse{}, err
	}
	defer rows.Close()

	var fromAt, toAt *time.Time

	for rows.Next() {
		var state int
		var at time.Time

		if err = rows.Scan(&state, &at); err != nil {
			return GetStepPhaseDurationQueryResponse{}, err
		}

		switch step.State(state) {
		case query.From():
			fromAt = &at
		case query.To():
			toAt = &at
		}
	}

	if err = rows.Err(); err != nil {
		return GetStepPhaseDurationQueryResponse{}, err
	}

	if fromAt == nil {
		return GetStepPhaseDurationQueryResponse{},
			errs.NewObjectNotFoundError("fromState", query.From().String())
	}
	if toAt == nil {
		return GetStepPhaseDurationQueryResponse{},
			errs.NewObjectNotFoundError("toState", query.To().String())
	}

	return GetStepPhaseDurationQueryResponse{
		StepID:   query.StepID(),
		From:     query.From(),
		To:       query.To(),
		FromAt:   *fromAt,
		ToAt:     *toAt,
		Duration: toAt.Sub(*fromAt),
	}, nil
}
