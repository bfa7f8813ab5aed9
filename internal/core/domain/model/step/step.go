package step

import (
	"errors"
	"fmt"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

var (
	// ErrStepIsNotConstructed is returned when a Step instance was not created
	// through NewStep or RestoreStep. This ensures all steps are validated.
	ErrStepIsNotConstructed = errors.New("Step must be created via NewStep or RestoreStep")
)

// Step is the aggregate root for one custody hop in a shipment's chain.
// It carries the on-chain settlement parameters of the hop, the off-chain
// entity references mirrored from them, and the lifecycle state.
//
// Step maintains these invariants:
//   - All identifiers are valid UUIDs
//   - Index is non-negative and cost is non-negative
//   - State transitions follow the lifecycle table in state.go
//   - Can only be created through NewStep or RestoreStep
//
// Steps of one shipment form a strict total order by Index; the chain
// builder guarantees holder/recipient continuity across neighbors.
type Step struct {
	id    kernel.UUID
	index int

	// On-chain settlement parameters of the hop.
	cost             int64
	holderAddress    kernel.WalletAddress
	recipientAddress kernel.WalletAddress
	operatorAddress  kernel.WalletAddress
	performer        kernel.Credential
	requester        kernel.Credential
	eta              time.Time
	startTime        time.Time
	txOutRef         string

	// Off-chain entity references mirrored from the on-chain roles.
	shipmentID  kernel.UUID
	journeyID   kernel.UUID
	operatorID  kernel.UUID
	colonyID    kernel.UUID
	agentID     kernel.UUID
	senderID    kernel.UUID
	recipientID kernel.UUID
	holderID    kernel.UUID

	state   State
	version int

	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

// NewStepParams carries the attributes of a step under construction.
// All identifier and address fields are mandatory; TxOutRef may be empty
// until the first on-chain transaction references the step.
type NewStepParams struct {
	ID    kernel.UUID
	Index int

	Cost             int64
	HolderAddress    kernel.WalletAddress
	RecipientAddress kernel.WalletAddress
	OperatorAddress  kernel.WalletAddress
	Performer        kernel.Credential
	Requester        kernel.Credential
	ETA              time.Time
	StartTime        time.Time
	TxOutRef         string

	ShipmentID  kernel.UUID
	JourneyID   kernel.UUID
	OperatorID  kernel.UUID
	ColonyID    kernel.UUID
	AgentID     kernel.UUID
	SenderID    kernel.UUID
	RecipientID kernel.UUID
	HolderID    kernel.UUID
}

// NewStep creates a new, unsaved Step in Pending state.
// This is the only way to create a fresh step; all invariants are checked and
// a joined validation error is returned when any parameter is invalid.
func NewStep(params NewStepParams) (*Step, error) {
	now := time.Now().UTC()

	s := &Step{
		state:         Pending,
		txOutRef:      params.TxOutRef,
		eta:           params.ETA,
		startTime:     params.StartTime,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}

	if err := errors.Join(
		s.setID(params.ID),
		s.setIndex(params.Index),
		s.setCost(params.Cost),
		s.setAddresses(params.HolderAddress, params.RecipientAddress, params.OperatorAddress),
		s.setCredentials(params.Performer, params.Requester),
		s.setReferences(params),
	); err != nil {
		return nil, err
	}

	return s, nil
}

// RestoreStep reconstructs a Step from persistence.
// Unlike NewStep it accepts an arbitrary valid state, the persisted version,
// and the original timestamps.
func RestoreStep(params NewStepParams, state State, version int, createdAt, updatedAt time.Time) (*Step, error) {
	s, err := NewStep(params)
	if err != nil {
		return nil, err
	}

	if err = state.Validate(); err != nil {
		return nil, err
	}
	if version < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("version", fmt.Errorf("%d is negative", version))
	}

	s.state = state
	s.version = version
	s.createdAt = createdAt
	s.updatedAt = updatedAt
	return s, nil
}

// Validate ensures the Step instance was properly constructed.
// Returns ErrStepIsNotConstructed otherwise. Call when reconstructing steps
// from external input to ensure integrity.
func (s *Step) Validate() error {
	if s == nil || !s.isConstructed {
		return ErrStepIsNotConstructed
	}
	return nil
}

// IsEqual compares two steps by their unique identifiers.
func (s *Step) IsEqual(other *Step) bool {
	return other != nil && s.id.IsEqual(other.id)
}

// ID returns the step's unique identifier.
func (s *Step) ID() kernel.UUID { return s.id }

// Index returns the step's 0-based position in the custody chain.
func (s *Step) Index() int { return s.index }

// Cost returns the hop's settlement cost.
func (s *Step) Cost() int64 { return s.cost }

// HolderAddress returns the on-chain address of the current custodian.
func (s *Step) HolderAddress() kernel.WalletAddress { return s.holderAddress }

// RecipientAddress returns the on-chain address of the next custodian.
func (s *Step) RecipientAddress() kernel.WalletAddress { return s.recipientAddress }

// OperatorAddress returns the on-chain address of the hop's operator.
func (s *Step) OperatorAddress() kernel.WalletAddress { return s.operatorAddress }

// Performer returns the credential of the logistics-leg executor.
func (s *Step) Performer() kernel.Credential { return s.performer }

// Requester returns the credential of the shipment initiator: the sender for
// a single-journey shipment, the curator for a mission.
func (s *Step) Requester() kernel.Credential { return s.requester }

// ETA returns the hop's estimated completion time.
func (s *Step) ETA() time.Time { return s.eta }

// StartTime returns the hop's scheduled start time.
func (s *Step) StartTime() time.Time { return s.startTime }

// TxOutRef returns the on-chain transaction output reference of the step,
// or the empty string when no transaction references it yet.
func (s *Step) TxOutRef() string { return s.txOutRef }

// ShipmentID returns the owning shipment's identifier.
func (s *Step) ShipmentID() kernel.UUID { return s.shipmentID }

// JourneyID returns the journey backing this hop.
func (s *Step) JourneyID() kernel.UUID { return s.journeyID }

// OperatorID returns the operator entity id.
func (s *Step) OperatorID() kernel.UUID { return s.operatorID }

// ColonyID returns the operator's colony entity id.
func (s *Step) ColonyID() kernel.UUID { return s.colonyID }

// AgentID returns the agent entity id executing the hop.
func (s *Step) AgentID() kernel.UUID { return s.agentID }

// SenderID returns the shipment sender's entity id.
func (s *Step) SenderID() kernel.UUID { return s.senderID }

// RecipientID returns the entity id of the next custodian.
func (s *Step) RecipientID() kernel.UUID { return s.recipientID }

// HolderID returns the entity id of the current custodian.
func (s *Step) HolderID() kernel.UUID { return s.holderID }

// State returns the step's current lifecycle state.
func (s *Step) State() State { return s.state }

// Version returns the optimistic-concurrency version loaded from persistence.
// Writers must serialize on it: an update only applies when the persisted
// version still matches.
func (s *Step) Version() int { return s.version }

// CreatedAt returns the creation timestamp.
func (s *Step) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns the last modification timestamp.
func (s *Step) UpdatedAt() time.Time { return s.updatedAt }

// TransitionTo moves the step to target if the lifecycle table allows it.
//
// Returns an InvalidTransitionError and leaves the step unchanged when the
// target is not reachable from the current state.
func (s *Step) TransitionTo(target State) error {
	newState, err := s.state.TransitionTo(target)
	if err != nil {
		return err
	}

	s.state = newState
	s.updatedAt = time.Now().UTC()
	return nil
}

// AttachTxOutRef records the on-chain transaction output reference produced
// for this step. The reference must be non-empty.
func (s *Step) AttachTxOutRef(ref string) error {
	if ref == "" {
		return errs.NewValueIsRequiredError("txOutRef")
	}

	s.txOutRef = ref
	s.updatedAt = time.Now().UTC()
	return nil
}

func (s *Step) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	s.id = id
	return nil
}

func (s *Step) setIndex(index int) error {
	if index < 0 {
		return errs.NewValueIsInvalidErrorWithCause("index", fmt.Errorf("%d is negative", index))
	}
	s.index = index
	return nil
}

func (s *Step) setCost(cost int64) error {
	if cost < 0 {
		return errs.NewValueIsInvalidErrorWithCause("cost", fmt.Errorf("%d is negative", cost))
	}
	s.cost = cost
	return nil
}

func (s *Step) setAddresses(holder, recipient, operator kernel.WalletAddress) error {
	if err := errors.Join(holder.Validate(), recipient.Validate(), operator.Validate()); err != nil {
		return fmt.Errorf("step addresses: %w", err)
	}

	s.holderAddress = holder
	s.recipientAddress = recipient
	s.operatorAddress = operator
	return nil
}

func (s *Step) setCredentials(performer, requester kernel.Credential) error {
	if err := errors.Join(performer.Validate(), requester.Validate()); err != nil {
		return fmt.Errorf("step credentials: %w", err)
	}

	s.performer = performer
	s.requester = requester
	return nil
}

func (s *Step) setReferences(params NewStepParams) error {
	refs := map[string]kernel.UUID{
		"shipmentId":  params.ShipmentID,
		"journeyId":   params.JourneyID,
		"operatorId":  params.OperatorID,
		"colonyId":    params.ColonyID,
		"agentId":     params.AgentID,
		"senderId":    params.SenderID,
		"recipientId": params.RecipientID,
		"holderId":    params.HolderID,
	}
	for name, id := range refs {
		if err := id.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(name, err)
		}
	}

	s.shipmentID = params.ShipmentID
	s.journeyID = params.JourneyID
	s.operatorID = params.OperatorID
	s.colonyID = params.ColonyID
	s.agentID = params.AgentID
	s.senderID = params.SenderID
	s.recipientID = params.RecipientID
	s.holderID = params.HolderID
	return nil
}
