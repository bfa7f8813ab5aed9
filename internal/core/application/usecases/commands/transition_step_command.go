package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/guard"
)

var ErrTransitionStepCommandIsNotConstructed = errors.New(
	"TransitionStepCommand must be created via NewTransitionStepCommand constructor",
)

// TransitionStepCommand represents a request to advance a custody step to a
// target lifecycle state, optionally backed by an on-chain transaction hash.
//
// Example:
//
//	cmd, err := NewTransitionStepCommand(stepID, step.PickedUp, "addr1agent", txHash)
//	if err != nil {
//	    return fmt.Errorf("invalid transition request: %w", err)
//	}
//
//	handler := NewTransitionStepCommandHandler(uowFactory)
//	events, err := handler.Handle(ctx, cmd)
type TransitionStepCommand struct { //nolint:recvcheck //using for validation
	stepID          kernel.UUID
	targetState     step.State
	changedBy       string
	transactionHash string

	guard guard.ConstructorGuard
}

// NewTransitionStepCommand creates a command to advance a step's lifecycle.
// changedBy identifies the actor requesting the transition and
// transactionHash references the settling on-chain transaction; both may be
// empty. Whether the transition itself is legal is decided by the aggregate,
// not here.
func NewTransitionStepCommand(
	stepID kernel.UUID,
	targetState step.State,
	changedBy string,
	transactionHash string,
) (TransitionStepCommand, error) {
	cmd := TransitionStepCommand{
		changedBy:       changedBy,
		transactionHash: transactionHash,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setStepID(stepID),
		cmd.setTargetState(targetState),
	); err != nil {
		return TransitionStepCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrTransitionStepCommandIsNotConstructed if validation fails.
func (c TransitionStepCommand) Validate() error {
	return c.guard.Validate(ErrTransitionStepCommandIsNotConstructed)
}

// StepID returns the step to advance.
func (c TransitionStepCommand) StepID() kernel.UUID {
	return c.stepID
}

// TargetState returns the requested lifecycle state.
func (c TransitionStepCommand) TargetState() step.State {
	return c.targetState
}

// ChangedBy returns the actor identifier, or the empty string.
func (c TransitionStepCommand) ChangedBy() string {
	return c.changedBy
}

// TransactionHash returns the on-chain transaction hash, or the empty string
// when the transition carries no settlement.
func (c TransitionStepCommand) TransactionHash() string {
	return c.transactionHash
}

func (c *TransitionStepCommand) setStepID(stepID kernel.UUID) error {
	if err := stepID.Validate(); err != nil {
		return err
	}

	c.stepID = stepID
	return nil
}

func (c *TransitionStepCommand) setTargetState(targetState step.State) error {
	if err := targetState.Validate(); err != nil {
		return err
	}

	c.targetState = targetState
	return nil
}
