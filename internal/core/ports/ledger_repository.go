package ports

import (
	"context"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/ledger"
	"custody/internal/core/domain/model/step"
)

// TxRecordFilter narrows ledger queries. Zero-valued fields are ignored.
type TxRecordFilter struct {
	StepID          *kernel.UUID
	State           *step.State
	TransactionHash string
}

// LedgerRepository defines the persistence contract for the append-only
// step lifecycle ledger. Records are only ever added and read, never
// updated or removed.
type LedgerRepository interface {
	// Add appends a new ledger record.
	Add(ctx context.Context, record *ledger.TxRecord) error

	// Get retrieves a ledger record by its unique identifier.
	Get(ctx context.Context, id kernel.UUID) (*ledger.TxRecord, error)

	// List retrieves records matching the filter ordered by creation time
	// ascending, so callers can replay a step's lifecycle.
	List(ctx context.Context, filter TxRecordFilter) ([]*ledger.TxRecord, error)
}
