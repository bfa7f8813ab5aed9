// Package ledgerrepo provides data transfer objects and mapping functions
// for the step lifecycle ledger. The ledger is append-only: rows are created
// once per transaction attempt and never updated or deleted.
package ledgerrepo

import (
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/ledger"
	"custody/internal/core/domain/model/step"

	"github.com/google/uuid"
)

// TxRecordDTO represents the database structure for persisting ledger
// records, indexed for replaying a step's lifecycle in order.
type TxRecordDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	StepID          uuid.UUID `gorm:"type:uuid;index"`
	TransactionHash string    `gorm:"index"`
	State           int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TableName specifies the database table name for ledger records.
func (TxRecordDTO) TableName() string {
	return "ledger_records"
}

// fromDomain converts a ledger record to its database representation.
func fromDomain(record *ledger.TxRecord) TxRecordDTO {
	return TxRecordDTO{
		ID:              record.ID().Bytes(),
		StepID:          record.StepID().Bytes(),
		TransactionHash: record.TransactionHash(),
		State:           int(record.State()),
		CreatedAt:       record.CreatedAt(),
		UpdatedAt:       record.UpdatedAt(),
	}
}

// toDomain converts a database DTO to a ledger record using RestoreTxRecord.
func toDomain(dto TxRecordDTO) (*ledger.TxRecord, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	stepID, err := kernel.UUIDFromBytes(dto.StepID[:])
	if err != nil {
		return nil, err
	}

	return ledger.RestoreTxRecord(
		id,
		stepID,
		dto.TransactionHash,
		step.State(dto.State),
		dto.CreatedAt,
		dto.UpdatedAt,
	)
}
