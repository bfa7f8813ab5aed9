package commands

import (
	"context"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/ledger"
	"custody/internal/core/domain/model/shipment"
	"custody/internal/core/domain/model/step"
)

// TransitionStepCommandHandler handles the business logic for step lifecycle
// transitions. Loads the step, lets the aggregate validate the transition,
// persists the new state with an optimistic concurrency check and appends a
// ledger record, all within one transaction.
//
// A VersionIsInvalidError from the update means a concurrent writer advanced
// the step first; callers may reload and retry. An InvalidTransitionError
// means the request itself was illegal and retrying cannot help.
type TransitionStepCommandHandler struct {
	uowFactory UoWFactory
}

// NewTransitionStepCommandHandler creates a handler for step transitions.
// Requires a UoWFactory spanning the step and ledger repositories.
func NewTransitionStepCommandHandler(uowFactory UoWFactory) TransitionStepCommandHandler {
	return TransitionStepCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the transition command.
// Always returns a StepStateChangedEvent on success, plus a
// ShipmentStatusChangedEvent when the transition moved the aggregated
// shipment status.
func (h TransitionStepCommandHandler) Handle(
	ctx context.Context,
	cmd TransitionStepCommand,
) ([]IntegrationEvent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stepRepo := uow.StepRepository()

	aggregate, err := stepRepo.Get(ctx, cmd.StepID())
	if err != nil {
		return nil, err
	}

	previousState := aggregate.State()
	if err = aggregate.TransitionTo(cmd.TargetState()); err != nil {
		return nil, err
	}

	if cmd.TransactionHash() != "" {
		if err = aggregate.AttachTxOutRef(cmd.TransactionHash()); err != nil {
			return nil, err
		}
	}

	if err = stepRepo.Update(ctx, aggregate); err != nil {
		return nil, err
	}

	record, err := ledger.NewTxRecord(kernel.NewUUID(), aggregate.ID(), cmd.TransactionHash(), aggregate.State())
	if err != nil {
		return nil, err
	}
	if err = uow.LedgerRepository().Add(ctx, record); err != nil {
		return nil, err
	}

	chain, err := stepRepo.GetByShipment(ctx, aggregate.ShipmentID())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	events := []IntegrationEvent{StepStateChangedEvent{
		StepID:        aggregate.ID().String(),
		ShipmentID:    aggregate.ShipmentID().String(),
		PreviousState: previousState.String(),
		NewState:      aggregate.State().String(),
		ChangedBy:     cmd.ChangedBy(),
		Timestamp:     now,
	}}

	snapshot := shipment.SnapshotOfSteps(chain)
	if statusChanged(chain, aggregate.ID(), previousState, snapshot) {
		events = append(events, ShipmentStatusChangedEvent{
			ShipmentID: aggregate.ShipmentID().String(),
			Status:     snapshot.Status().String(),
			Progress:   snapshot.Progress(),
			Timestamp:  now,
		})
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return events, nil
}

// statusChanged reports whether the aggregated shipment status moved: it
// rebuilds the pre-transition snapshot by putting the advanced step back to
// its previous state and compares the derived statuses.
func statusChanged(
	chain []*step.Step,
	stepID kernel.UUID,
	previousState step.State,
	current shipment.Snapshot,
) bool {
	previousStates := make([]*step.State, current.Len())
	for _, s := range chain {
		state := s.State()
		if s.ID().IsEqual(stepID) {
			state = previousState
		}
		previousStates[s.Index()] = &state
	}

	return shipment.NewSnapshot(previousStates).Status() != current.Status()
}
