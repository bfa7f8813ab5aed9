package services

import (
	"context"
	"fmt"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/shipment"
	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidShipment is returned when a shipment carries neither a journey
// nor a mission with journeys, so no custody chain can be constructed. It is
// a validation failure of the shipment itself, so it wraps ErrValueIsInvalid
// and redelivering the request cannot help.
var ErrInvalidShipment = fmt.Errorf(
	"%w: shipment has neither a journey nor a mission with journeys", errs.ErrValueIsInvalid)

// OperatorContext is the resolved operator/agent context of one journey:
// the operator's settlement address and badge policy, the entity references
// mirrored onto the step, and the agent's own on-chain address when the
// agent settles under a key distinct from the operator's.
type OperatorContext struct {
	OperatorID            kernel.UUID
	ColonyID              kernel.UUID
	AgentID               kernel.UUID
	OperatorWalletAddress kernel.WalletAddress
	OperatorBadgePolicyID string
	AgentAddress          *kernel.WalletAddress
}

// settlementAddress returns the address custody hand-offs settle against:
// the agent's own address when present, the operator's otherwise.
func (c OperatorContext) settlementAddress() kernel.WalletAddress {
	if c.AgentAddress != nil {
		return *c.AgentAddress
	}
	return c.OperatorWalletAddress
}

// OperatorContextResolver resolves a journey's operator/agent context.
// Implementations live behind the service boundary (the operator registry);
// calls must honor ctx cancellation.
type OperatorContextResolver interface {
	ResolveOperatorContext(ctx context.Context, journeyID kernel.UUID) (OperatorContext, error)
}

// ChainBuilder is the domain service that constructs the ordered custody
// chain of a shipment: one Pending step per journey, holder and recipient
// wired across neighbors so the chain provably hands the parcel from the
// sender through every agent and back to the sender's custody endpoints.
//
// Construction runs in two phases: all journeys' operator contexts are
// resolved concurrently (fan-out), then steps are assembled sequentially,
// since step i needs the resolved contexts of both neighbors. The builder is
// pure given resolved inputs; nothing is persisted here.
type ChainBuilder struct {
	resolver OperatorContextResolver
}

// NewChainBuilder creates a ChainBuilder using the given resolver.
func NewChainBuilder(resolver OperatorContextResolver) ChainBuilder {
	return ChainBuilder{resolver: resolver}
}

// Build produces the ordered list of unsaved steps for a resolved shipment.
//
// Chain invariants, for journeys J0..J(N-1) with agents A0..A(N-1) and
// sender S:
//   - step[0].holder == S
//   - step[N-1].recipient == S
//   - step[i].holder == A(i-1) and step[i].recipient == A(i+1) for inner i
//   - N == 1 collapses to holder == recipient == S
//
// Returns ErrInvalidShipment when the shipment carries no journeys.
func (b ChainBuilder) Build(ctx context.Context, sh *shipment.Shipment) ([]*step.Step, error) {
	if err := sh.Validate(); err != nil {
		return nil, err
	}

	journeys := sh.Journeys()
	if len(journeys) == 0 {
		return nil, ErrInvalidShipment
	}

	requester, err := b.requesterCredential(sh)
	if err != nil {
		return nil, err
	}

	contexts, err := b.resolveContexts(ctx, journeys)
	if err != nil {
		return nil, err
	}

	return b.assemble(sh, journeys, contexts, requester)
}

// requesterCredential computes the requester once for the whole chain: the
// sender for a single-journey shipment, the curator with their badge policy
// for a mission.
func (b ChainBuilder) requesterCredential(sh *shipment.Shipment) (kernel.Credential, error) {
	if sh.IsMission() {
		return kernel.NewCredential(sh.Mission.CuratorWalletAddress, sh.Mission.CuratorBadgePolicyID)
	}
	return kernel.NewCredential(sh.SenderWalletAddress, "")
}

// resolveContexts fans out one resolver call per journey and joins before
// returning, so assembly always sees the whole chain's contexts.
func (b ChainBuilder) resolveContexts(ctx context.Context, journeys []shipment.Journey) ([]OperatorContext, error) {
	contexts := make([]OperatorContext, len(journeys))

	g, gctx := errgroup.WithContext(ctx)
	for i, journey := range journeys {
		g.Go(func() error {
			resolved, err := b.resolver.ResolveOperatorContext(gctx, journey.ID)
			if err != nil {
				return fmt.Errorf("resolve operator context for journey %s: %w", journey.ID, err)
			}
			contexts[i] = resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return contexts, nil
}

func (b ChainBuilder) assemble(
	sh *shipment.Shipment,
	journeys []shipment.Journey,
	contexts []OperatorContext,
	requester kernel.Credential,
) ([]*step.Step, error) {
	n := len(journeys)
	steps := make([]*step.Step, 0, n)

	for i, journey := range journeys {
		opCtx := contexts[i]

		performer, err := kernel.NewCredential(opCtx.settlementAddress(), opCtx.OperatorBadgePolicyID)
		if err != nil {
			return nil, err
		}

		holderAddress := sh.SenderWalletAddress
		holderID := sh.SenderID
		if i > 0 {
			holderAddress = contexts[i-1].settlementAddress()
			holderID = contexts[i-1].AgentID
		}

		recipientAddress := sh.SenderWalletAddress
		recipientID := sh.SenderID
		if i < n-1 {
			recipientAddress = contexts[i+1].settlementAddress()
			recipientID = contexts[i+1].AgentID
		}

		built, err := step.NewStep(step.NewStepParams{
			ID:               kernel.NewUUID(),
			Index:            i,
			Cost:             journey.Price,
			HolderAddress:    holderAddress,
			RecipientAddress: recipientAddress,
			OperatorAddress:  opCtx.OperatorWalletAddress,
			Performer:        performer,
			Requester:        requester,
			ETA:              journey.AvailableTo,
			StartTime:        journey.AvailableFrom,
			ShipmentID:       sh.ID,
			JourneyID:        journey.ID,
			OperatorID:       journey.OperatorID,
			ColonyID:         opCtx.ColonyID,
			AgentID:          opCtx.AgentID,
			SenderID:         sh.SenderID,
			RecipientID:      recipientID,
			HolderID:         holderID,
		})
		if err != nil {
			return nil, fmt.Errorf("assemble step %d: %w", i, err)
		}

		steps = append(steps, built)
	}

	return steps, nil
}
