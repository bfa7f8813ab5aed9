// Package ports defines the contracts between the application core and
// infrastructure: repositories, the unit of work, the message bus, and the
// clients of collaborating services. These interfaces enable dependency
// inversion and testability.
package ports

import (
	"context"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
)

// StepFilter narrows batch step queries. Zero-valued fields are ignored.
type StepFilter struct {
	ShipmentID  *kernel.UUID
	JourneyID   *kernel.UUID
	OperatorID  *kernel.UUID
	AgentID     *kernel.UUID
	SenderID    *kernel.UUID
	RecipientID *kernel.UUID
	HolderID    *kernel.UUID
	State       *step.State
}

// StepRepository defines the persistence contract for custody step
// aggregates.
type StepRepository interface {
	// Add persists a new step aggregate to storage.
	// The step must be valid and not already exist in the repository.
	Add(ctx context.Context, aggregate *step.Step) error

	// Update persists changes to an existing step aggregate with an
	// optimistic concurrency check against the aggregate's version.
	// Returns a VersionIsInvalidError when the stored version no longer
	// matches, meaning a concurrent writer advanced the step first.
	Update(ctx context.Context, aggregate *step.Step) error

	// Get retrieves a step aggregate by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*step.Step, error)

	// GetByShipment retrieves every step of a shipment ordered by chain
	// index. Used to snapshot the chain for status derivation.
	GetByShipment(ctx context.Context, shipmentID kernel.UUID) ([]*step.Step, error)

	// List retrieves steps matching the filter, ordered by creation time,
	// with limit/offset paging. A zero limit means no limit.
	List(ctx context.Context, filter StepFilter, limit, offset int) ([]*step.Step, error)

	// Count returns the number of steps matching the filter.
	Count(ctx context.Context, filter StepFilter) (int64, error)
}
