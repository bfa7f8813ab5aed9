package ledgerrepo

import (
	"context"
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/ledger"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormLedgerRepository implements LedgerRepository using GORM.
type GormLedgerRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormLedgerRepository creates a new GORM ledger repository.
func NewGormLedgerRepository(db *gorm.DB, tracker aggregateTracker) *GormLedgerRepository {
	return &GormLedgerRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add appends a new record to the ledger.
func (r *GormLedgerRepository) Add(ctx context.Context, record *ledger.TxRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	dto := fromDomain(record)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(record.ID(), record)
	return nil
}

// Get retrieves a ledger record by ID.
func (r *GormLedgerRepository) Get(ctx context.Context, id kernel.UUID) (*ledger.TxRecord, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TxRecordDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("ledger record", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// List retrieves records matching the filter ordered by creation time
// ascending.
func (r *GormLedgerRepository) List(ctx context.Context, filter ports.TxRecordFilter) ([]*ledger.TxRecord, error) {
	query := r.db.WithContext(ctx).Model(&TxRecordDTO{}).Order("created_at, id")

	if filter.StepID != nil {
		query = query.Where("step_id = ?", filter.StepID.Bytes())
	}
	if filter.State != nil {
		query = query.Where("state = ?", int(*filter.State))
	}
	if filter.TransactionHash != "" {
		query = query.Where("transaction_hash = ?", filter.TransactionHash)
	}

	var dtos []TxRecordDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	records := make([]*ledger.TxRecord, 0, len(dtos))
	for _, dto := range dtos {
		record, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}
