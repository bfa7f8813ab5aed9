// Package ledger contains the append-only record of on-chain transaction
// attempts per custody step. Records snapshot the step's state at write time
// and are never mutated afterwards, so timing metrics can be reconstructed
// independently of the step's mutable current-state field.
package ledger

import (
	"errors"
	"fmt"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"
)

// ErrTxRecordIsNotConstructed is returned when a TxRecord was not created
// through NewTxRecord or RestoreTxRecord.
var ErrTxRecordIsNotConstructed = errors.New("TxRecord must be created via NewTxRecord or RestoreTxRecord")

// TxRecord is one immutable entry of the step lifecycle ledger: a step
// reached a state, optionally backed by an on-chain transaction.
//
// Records are append-only: created once per transaction attempt, never
// altered, only filtered. Writers for a given step serialize on the step's
// version, so ledger entries reflect only transitions that passed lifecycle
// validation.
type TxRecord struct {
	id              kernel.UUID
	stepID          kernel.UUID
	transactionHash string
	state           step.State
	createdAt       time.Time
	updatedAt       time.Time

	isConstructed bool
}

// NewTxRecord creates a ledger entry for a step reaching a state.
// transactionHash may be empty when the transition was applied without an
// accompanying on-chain attempt; the record still pins state and time.
func NewTxRecord(id, stepID kernel.UUID, transactionHash string, state step.State) (*TxRecord, error) {
	now := time.Now().UTC()

	r := &TxRecord{
		transactionHash: transactionHash,
		createdAt:       now,
		updatedAt:       now,
		isConstructed:   true,
	}

	if err := errors.Join(
		r.setID(id),
		r.setStepID(stepID),
		r.setState(state),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreTxRecord reconstructs a ledger entry from persistence.
func RestoreTxRecord(id, stepID kernel.UUID, transactionHash string, state step.State, createdAt, updatedAt time.Time) (*TxRecord, error) {
	r, err := NewTxRecord(id, stepID, transactionHash, state)
	if err != nil {
		return nil, err
	}

	r.createdAt = createdAt
	r.updatedAt = updatedAt
	return r, nil
}

// Validate ensures the record was properly constructed.
func (r *TxRecord) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrTxRecordIsNotConstructed
	}
	return nil
}

// ID returns the record's unique identifier.
func (r *TxRecord) ID() kernel.UUID { return r.id }

// StepID returns the step the record belongs to.
func (r *TxRecord) StepID() kernel.UUID { return r.stepID }

// TransactionHash returns the on-chain transaction hash, or the empty string
// when no on-chain attempt accompanied the transition.
func (r *TxRecord) TransactionHash() string { return r.transactionHash }

// State returns the step state snapshotted at write time.
func (r *TxRecord) State() step.State { return r.state }

// CreatedAt returns the append timestamp.
func (r *TxRecord) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last-write timestamp; for an append-only record it
// equals CreatedAt.
func (r *TxRecord) UpdatedAt() time.Time { return r.updatedAt }

func (r *TxRecord) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("txRecordId", err)
	}
	r.id = id
	return nil
}

func (r *TxRecord) setStepID(stepID kernel.UUID) error {
	if err := stepID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("stepId", err)
	}
	r.stepID = stepID
	return nil
}

func (r *TxRecord) setState(state step.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	r.state = state
	return nil
}

// PhaseDuration computes the elapsed time between a step first reaching the
// from state and first reaching the to state, given that step's ledger
// records. Record order does not matter; the earliest entry per state wins.
//
// Returns an ObjectNotFoundError when either phase has no record.
func PhaseDuration(records []*TxRecord, from, to step.State) (time.Duration, error) {
	var fromAt, toAt *time.Time

	for _, r := range records {
		switch r.State() {
		case from:
			if fromAt == nil || r.CreatedAt().Before(*fromAt) {
				at := r.CreatedAt()
				fromAt = &at
			}
		case to:
			if toAt == nil || r.CreatedAt().Before(*toAt) {
				at := r.CreatedAt()
				toAt = &at
			}
		}
	}

	if fromAt == nil {
		return 0, errs.NewObjectNotFoundError("ledger record", fmt.Sprintf("state %s", from))
	}
	if toAt == nil {
		return 0, errs.NewObjectNotFoundError("ledger record", fmt.Sprintf("state %s", to))
	}

	return toAt.Sub(*fromAt), nil
}
