// Package steprepo provides data transfer objects and mapping functions for
// step persistence. This package implements the repository pattern for the
// custody step aggregate, handling the conversion between domain entities and
// database representations.
package steprepo

import (
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"

	"github.com/google/uuid"
)

// StepDTO represents the database structure for persisting step aggregates.
// Maps step domain entities to relational database tables with proper
// indexing for efficient querying by shipment, holder and state. The unique
// (shipment_id, chain_index) pair makes chain creation idempotent under
// concurrent redelivery: a second builder racing the first hits the
// constraint instead of duplicating the chain.
type StepDTO struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	ShipmentID        uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_steps_shipment_chain,priority:1"`
	JourneyID         uuid.UUID `gorm:"type:uuid;index"`
	OperatorID        uuid.UUID `gorm:"type:uuid;index"`
	ColonyID          uuid.UUID `gorm:"type:uuid"`
	AgentID           uuid.UUID `gorm:"type:uuid;index"`
	SenderID          uuid.UUID `gorm:"type:uuid"`
	RecipientID       uuid.UUID `gorm:"type:uuid"`
	HolderID          uuid.UUID `gorm:"type:uuid;index"`
	ChainIndex        int       `gorm:"column:chain_index;uniqueIndex:idx_steps_shipment_chain,priority:2"`
	Cost              int64
	HolderAddress     string
	RecipientAddress  string
	OperatorAddress   string
	PerformerAddress  string
	PerformerPolicyID string
	RequesterAddress  string
	RequesterPolicyID string
	TxOutRef          string
	ETA               time.Time `gorm:"column:eta"`
	StartTime         time.Time
	State             int `gorm:"index"`
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName specifies the database table name for step entities.
// Overrides GORM's default naming convention to use "steps".
func (StepDTO) TableName() string {
	return "steps"
}

// fromDomain converts a step domain aggregate to its database representation.
func fromDomain(aggregate *step.Step) StepDTO {
	return StepDTO{
		ID:                aggregate.ID().Bytes(),
		ShipmentID:        aggregate.ShipmentID().Bytes(),
		JourneyID:         aggregate.JourneyID().Bytes(),
		OperatorID:        aggregate.OperatorID().Bytes(),
		ColonyID:          aggregate.ColonyID().Bytes(),
		AgentID:           aggregate.AgentID().Bytes(),
		SenderID:          aggregate.SenderID().Bytes(),
		RecipientID:       aggregate.RecipientID().Bytes(),
		HolderID:          aggregate.HolderID().Bytes(),
		ChainIndex:        aggregate.Index(),
		Cost:              aggregate.Cost(),
		HolderAddress:     aggregate.HolderAddress().String(),
		RecipientAddress:  aggregate.RecipientAddress().String(),
		OperatorAddress:   aggregate.OperatorAddress().String(),
		PerformerAddress:  aggregate.Performer().Address().String(),
		PerformerPolicyID: aggregate.Performer().PolicyID(),
		RequesterAddress:  aggregate.Requester().Address().String(),
		RequesterPolicyID: aggregate.Requester().PolicyID(),
		TxOutRef:          aggregate.TxOutRef(),
		ETA:               aggregate.ETA(),
		StartTime:         aggregate.StartTime(),
		State:             int(aggregate.State()),
		Version:           aggregate.Version(),
		CreatedAt:         aggregate.CreatedAt(),
		UpdatedAt:         aggregate.UpdatedAt(),
	}
}

// toDomain converts a database DTO to a step domain aggregate using
// RestoreStep.
func toDomain(dto StepDTO) (*step.Step, error) {
	ids := make([]kernel.UUID, 9)
	for i, raw := range []uuid.UUID{
		dto.ID, dto.ShipmentID, dto.JourneyID, dto.OperatorID, dto.ColonyID,
		dto.AgentID, dto.SenderID, dto.RecipientID, dto.HolderID,
	} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}

	holderAddress, err := kernel.NewWalletAddress(dto.HolderAddress)
	if err != nil {
		return nil, err
	}
	recipientAddress, err := kernel.NewWalletAddress(dto.RecipientAddress)
	if err != nil {
		return nil, err
	}
	operatorAddress, err := kernel.NewWalletAddress(dto.OperatorAddress)
	if err != nil {
		return nil, err
	}

	performerAddress, err := kernel.NewWalletAddress(dto.PerformerAddress)
	if err != nil {
		return nil, err
	}
	performer, err := kernel.NewCredential(performerAddress, dto.PerformerPolicyID)
	if err != nil {
		return nil, err
	}

	requesterAddress, err := kernel.NewWalletAddress(dto.RequesterAddress)
	if err != nil {
		return nil, err
	}
	requester, err := kernel.NewCredential(requesterAddress, dto.RequesterPolicyID)
	if err != nil {
		return nil, err
	}

	restored, err := step.RestoreStep(step.NewStepParams{
		ID:               ids[0],
		Index:            dto.ChainIndex,
		Cost:             dto.Cost,
		HolderAddress:    holderAddress,
		RecipientAddress: recipientAddress,
		OperatorAddress:  operatorAddress,
		Performer:        performer,
		Requester:        requester,
		ETA:              dto.ETA,
		StartTime:        dto.StartTime,
		TxOutRef:         dto.TxOutRef,
		ShipmentID:       ids[1],
		JourneyID:        ids[2],
		OperatorID:       ids[3],
		ColonyID:         ids[4],
		AgentID:          ids[5],
		SenderID:         ids[6],
		RecipientID:      ids[7],
		HolderID:         ids[8],
	}, step.State(dto.State), dto.Version, dto.CreatedAt, dto.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return restored, nil
}
