package steprepo

import (
	"context"
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormStepRepository implements StepRepository using GORM.
type GormStepRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormStepRepository creates a new GORM step repository.
func NewGormStepRepository(db *gorm.DB, tracker aggregateTracker) *GormStepRepository {
	return &GormStepRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a new step to the database.
func (r *GormStepRepository) Add(ctx context.Context, aggregate *step.Step) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing step to the database with an optimistic
// concurrency check: the row is written only when its persisted version still
// matches the version the aggregate was loaded with, and the write bumps the
// version. Zero affected rows mean either a vanished row or a concurrent
// writer; both surface as VersionIsInvalidError so callers reload and retry.
func (r *GormStepRepository) Update(ctx context.Context, aggregate *step.Step) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	dto.Version = aggregate.Version() + 1

	result := r.db.WithContext(ctx).Model(&StepDTO{}).
		Where("id = ? AND version = ?", dto.ID, aggregate.Version()).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidErrorWithCause("step")
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a step by ID.
func (r *GormStepRepository) Get(ctx context.Context, id kernel.UUID) (*step.Step, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto StepDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("step", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetByShipment retrieves all steps of a shipment ordered by chain index.
func (r *GormStepRepository) GetByShipment(ctx context.Context, shipmentID kernel.UUID) ([]*step.Step, error) {
	if err := shipmentID.Validate(); err != nil {
		return nil, err
	}

	var dtos []StepDTO
	if err := r.db.WithContext(ctx).
		Order("chain_index").
		Find(&dtos, "shipment_id = ?", shipmentID.Bytes()).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// List retrieves steps matching the filter with limit/offset paging,
// ordered by creation time and ID for stable pages.
func (r *GormStepRepository) List(ctx context.Context, filter ports.StepFilter, limit, offset int) ([]*step.Step, error) {
	query := applyFilter(r.db.WithContext(ctx).Model(&StepDTO{}), filter).
		Order("created_at, id").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []StepDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainList(dtos)
}

// Count returns the number of steps matching the filter.
func (r *GormStepRepository) Count(ctx context.Context, filter ports.StepFilter) (int64, error) {
	var count int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&StepDTO{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}

func applyFilter(query *gorm.DB, filter ports.StepFilter) *gorm.DB {
	if filter.ShipmentID != nil {
		query = query.Where("shipment_id = ?", filter.ShipmentID.Bytes())
	}
	if filter.JourneyID != nil {
		query = query.Where("journey_id = ?", filter.JourneyID.Bytes())
	}
	if filter.OperatorID != nil {
		query = query.Where("operator_id = ?", filter.OperatorID.Bytes())
	}
	if filter.AgentID != nil {
		query = query.Where("agent_id = ?", filter.AgentID.Bytes())
	}
	if filter.SenderID != nil {
		query = query.Where("sender_id = ?", filter.SenderID.Bytes())
	}
	if filter.RecipientID != nil {
		query = query.Where("recipient_id = ?", filter.RecipientID.Bytes())
	}
	if filter.HolderID != nil {
		query = query.Where("holder_id = ?", filter.HolderID.Bytes())
	}
	if filter.State != nil {
		query = query.Where("state = ?", int(*filter.State))
	}
	return query
}

func toDomainList(dtos []StepDTO) ([]*step.Step, error) {
	steps := make([]*step.Step, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		steps = append(steps, s)
	}

	return steps, nil
}
