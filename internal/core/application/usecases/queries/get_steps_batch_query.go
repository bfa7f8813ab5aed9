// Package queries contains read-only operations over the custody store.
// Implements the Query side of the CQRS architecture: handlers read with
// direct SQL against the database, bypassing the aggregates, and return
// dedicated read models.
package queries

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrGetStepsBatchQueryIsNotConstructed = errors.New(
	"GetStepsBatchQuery must be created via NewGetStepsBatchQuery constructor",
)

const (
	defaultBatchLimit = 100
	maxBatchLimit     = 500
)

// StepsBatchFilter narrows a batch query. Nil fields are ignored.
type StepsBatchFilter struct {
	ShipmentID  *kernel.UUID
	JourneyID   *kernel.UUID
	OperatorID  *kernel.UUID
	AgentID     *kernel.UUID
	SenderID    *kernel.UUID
	RecipientID *kernel.UUID
	HolderID    *kernel.UUID
	State       *step.State
}

// GetStepsBatchQuery retrieves a filtered, paged batch of custody steps.
// Serves operator dashboards and the batch HTTP endpoint.
//
// Example:
//
//	filter := StepsBatchFilter{ShipmentID: &shipmentID}
//	query, err := NewGetStepsBatchQuery(filter, 50, 0)
//	if err != nil {
//	    return fmt.Errorf("invalid batch request: %w", err)
//	}
//
//	handler := NewGetStepsBatchQueryHandler(db)
//	batch, err := handler.Handle(ctx, query)
type GetStepsBatchQuery struct {
	filter StepsBatchFilter
	limit  int
	offset int

	guard guard.ConstructorGuard
}

// NewGetStepsBatchQuery creates a batch query. A non-positive limit falls
// back to the default page size; limits above the maximum are rejected, as
// are negative offsets and invalid state filters.
func NewGetStepsBatchQuery(filter StepsBatchFilter, limit, offset int) (GetStepsBatchQuery, error) {
	if limit <= 0 {
		limit = defaultBatchLimit
	}
	if limit > maxBatchLimit {
		return GetStepsBatchQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, maxBatchLimit)
	}
	if offset < 0 {
		return GetStepsBatchQuery{}, errs.NewValueIsInvalidError("offset")
	}
	if filter.State != nil {
		if err := filter.State.Validate(); err != nil {
			return GetStepsBatchQuery{}, err
		}
	}

	return GetStepsBatchQuery{
		filter: filter,
		limit:  limit,
		offset: offset,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetStepsBatchQueryIsNotConstructed if validation fails.
func (q GetStepsBatchQuery) Validate() error {
	return q.guard.Validate(ErrGetStepsBatchQueryIsNotConstructed)
}

// Filter returns the query's filter.
func (q GetStepsBatchQuery) Filter() StepsBatchFilter { return q.filter }

// Limit returns the page size.
func (q GetStepsBatchQuery) Limit() int { return q.limit }

// Offset returns the page offset.
func (q GetStepsBatchQuery) Offset() int { return q.offset }

// GetStepsBatchQueryResponseItem is the read model of one custody step.
type GetStepsBatchQueryResponseItem struct {
	ID               kernel.UUID
	ShipmentID       kernel.UUID
	JourneyID        kernel.UUID
	OperatorID       kernel.UUID
	AgentID          kernel.UUID
	Index            int
	State            step.State
	Cost             int64
	HolderAddress    string
	RecipientAddress string
	TxOutRef         string
	ETA              time.Time
	Version          int
	UpdatedAt        time.Time
}

// GetStepsBatchQueryResponse carries one page of steps plus the total number
// of steps matching the filter.
type GetStepsBatchQueryResponse struct {
	Items []GetStepsBatchQueryResponseItem
	Total int64
}
