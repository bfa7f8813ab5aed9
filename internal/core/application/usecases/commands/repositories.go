// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
//
// Handlers do not publish to the broker themselves. They return the
// integration events produced by the state change; the caller (the
// orchestration consumer or a job) publishes them after the transaction
// committed.
package commands

import (
	"context"

	"custody/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// StepRepoFactory provides access to the step repository within a transaction.
	StepRepoFactory interface {
		StepRepository() ports.StepRepository
	}

	// LedgerRepoFactory provides access to the ledger repository within a transaction.
	LedgerRepoFactory interface {
		LedgerRepository() ports.LedgerRepository
	}

	// StepUoW manages transactions for step-only operations.
	// Used when commands only modify step aggregates.
	StepUoW interface {
		TxManager
		StepRepoFactory
	}

	// StepUoWFactory creates new step unit of work instances.
	StepUoWFactory interface {
		Create() StepUoW
	}

	// UoW manages transactions across the step and ledger aggregates.
	// Used for commands that advance a step and append its ledger record
	// atomically.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   stepRepo := uow.StepRepository()
	//   ledgerRepo := uow.LedgerRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		StepRepoFactory
		LedgerRepoFactory
	}

	// UoWFactory creates new unit of work instances for cross-aggregate operations.
	UoWFactory interface {
		Create() UoW
	}
)
