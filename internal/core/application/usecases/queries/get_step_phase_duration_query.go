package queries

import (
	"errors"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"
	"custody/internal/pkg/guard"
)

var ErrGetStepPhaseDurationQueryIsNotConstructed = errors.New(
	"GetStepPhaseDurationQuery must be created via NewGetStepPhaseDurationQuery constructor",
)

// GetStepPhaseDurationQuery measures how long a step spent between two
// lifecycle phases using its ledger records.
//
// Example:
//
//	query, err := NewGetStepPhaseDurationQuery(stepID, step.Commenced, step.Fulfilled)
//	if err != nil {
//	    return fmt.Errorf("invalid duration request: %w", err)
//	}
//
//	handler := NewGetStepPhaseDurationQueryHandler(db)
//	resp, err := handler.Handle(ctx, query)
//	fmt.Printf("transit took %s\n", resp.Duration)
type GetStepPhaseDurationQuery struct { //nolint:recvcheck //using for validation
	stepID kernel.UUID
	from   step.State
	to     step.State

	guard guard.ConstructorGuard
}

// NewGetStepPhaseDurationQuery creates a phase duration query.
// Both phase states must be valid lifecycle states.
func NewGetStepPhaseDurationQuery(stepID kernel.UUID, from, to step.State) (GetStepPhaseDurationQuery, error) {
	q := GetStepPhaseDurationQuery{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		q.setStepID(stepID),
		from.Validate(),
		to.Validate(),
	); err != nil {
		return GetStepPhaseDurationQuery{}, err
	}

	if from == to {
		return GetStepPhaseDurationQuery{}, errs.NewValueIsInvalidError("toState")
	}

	q.from = from
	q.to = to
	return q, nil
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetStepPhaseDurationQueryIsNotConstructed if validation fails.
func (q GetStepPhaseDurationQuery) Validate() error {
	return q.guard.Validate(ErrGetStepPhaseDurationQueryIsNotConstructed)
}

// StepID returns the step whose phases are measured.
func (q GetStepPhaseDurationQuery) StepID() kernel.UUID { return q.stepID }

// From returns the phase the measurement starts at.
func (q GetStepPhaseDurationQuery) From() step.State { return q.from }

// To returns the phase the measurement ends at.
func (q GetStepPhaseDurationQuery) To() step.State { return q.to }

func (q *GetStepPhaseDurationQuery) setStepID(stepID kernel.UUID) error {
	if err := stepID.Validate(); err != nil {
		return err
	}

	q.stepID = stepID
	return nil
}

// GetStepPhaseDurationQueryResponse reports the measured phase interval.
type GetStepPhaseDurationQueryResponse struct {
	StepID   kernel.UUID
	From     step.State
	To       step.State
	FromAt   time.Time
	ToAt     time.Time
	Duration time.Duration
}
