package queries

import (
	"context"

	"custody/internal/core/domain/model/step"

	"gorm.io/gorm"
)

// GetStepStateCountsQueryHandler aggregates the step store by state.
//
// Example:
//
//	handler := NewGetStepStateCountsQueryHandler(db)
//	resp, err := handler.Handle(ctx, NewGetStepStateCountsQuery())
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%d steps in transit\n", resp.Counts[step.Commenced])
type GetStepStateCountsQueryHandler struct {
	db *gorm.DB
}

// NewGetStepStateCountsQueryHandler creates a handler for state count
// queries. Requires a GORM database connection for query execution.
func NewGetStepStateCountsQueryHandler(db *gorm.DB) GetStepStateCountsQueryHandler {
	return GetStepStateCountsQueryHandler{db: db}
}

// Handle executes the count query grouped by state.
func (h GetStepStateCountsQueryHandler) Handle(
	ctx context.Context,
	query GetStepStateCountsQuery,
) (GetStepStateCountsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetStepStateCountsQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			state,
			COUNT(*)
		FROM steps
		GROUP BY state
		ORDER BY state
	`).Rows()
	if err != nil {
		return GetStepStateCountsQueryResponse{}, err
	}
	defer rows.Close()

	counts := make(map[step.State]int64)

	for rows.Next() {
		var state int
		var count int64

		if err = rows.Scan(&state, &count); err != nil {
			return GetStepStateCountsQueryResponse{}, err
		}

		counts[step.State(state)] = count
	}

	if err = rows.Err(); err != nil {
		return GetStepStateCountsQueryResponse{}, err
	}

	return GetStepStateCountsQueryResponse{Counts: counts}, nil
}
