package queries

import (
	"errors"

	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/guard"
)

var ErrGetStepStateCountsQueryIsNotConstructed = errors.New(
	"GetStepStateCountsQuery must be created via NewGetStepStateCountsQuery constructor",
)

// GetStepStateCountsQuery counts steps per lifecycle state.
// Feeds the step-state gauges exported to monitoring.
type GetStepStateCountsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetStepStateCountsQuery creates a query to count steps by state.
// This is a parameterless query covering the whole step store.
func NewGetStepStateCountsQuery() GetStepStateCountsQuery {
	return GetStepStateCountsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetStepStateCountsQueryIsNotConstructed if validation fails.
func (q GetStepStateCountsQuery) Validate() error {
	return q.guard.Validate(ErrGetStepStateCountsQueryIsNotConstructed)
}

// GetStepStateCountsQueryResponse holds the per-state step counts. States
// with no steps are absent from the map.
type GetStepStateCountsQueryResponse struct {
	Counts map[step.State]int64
}
