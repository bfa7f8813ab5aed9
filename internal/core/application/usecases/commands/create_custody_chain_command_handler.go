package commands

import (
	"context"
	"time"

	"custody/internal/core/domain/services"
	"custody/internal/core/ports"
)

// CreateCustodyChainCommandHandler handles the business logic for chain
// creation. Fetches the resolved shipment, builds one Pending step per
// journey and persists the whole chain in a single transaction.
//
// The handler is idempotent per shipment: when the chain already exists the
// command is acknowledged without writing and without emitting events, so a
// redelivered shipment.created message cannot duplicate steps.
type CreateCustodyChainCommandHandler struct {
	uowFactory StepUoWFactory
	shipments  ports.ShipmentClient
	builder    services.ChainBuilder
}

// NewCreateCustodyChainCommandHandler creates a handler for chain creation.
// Requires a StepUoWFactory for transactional persistence, a ShipmentClient
// to resolve the shipment and the ChainBuilder domain service.
func NewCreateCustodyChainCommandHandler(
	uowFactory StepUoWFactory,
	shipments ports.ShipmentClient,
	builder services.ChainBuilder,
) CreateCustodyChainCommandHandler {
	return CreateCustodyChainCommandHandler{
		uowFactory: uowFactory,
		shipments:  shipments,
		builder:    builder,
	}
}

// Handle processes the chain creation command.
// Returns one StepCreatedEvent per persisted step, in chain order.
func (h CreateCustodyChainCommandHandler) Handle(
	ctx context.Context,
	cmd CreateCustodyChainCommand,
) ([]IntegrationEvent, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	sh, err := h.shipments.GetShipment(ctx, cmd.ShipmentID())
	if err != nil {
		return nil, err
	}

	steps, err := h.builder.Build(ctx, sh)
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	stepRepo := uow.StepRepository()

	existing, err := stepRepo.GetByShipment(ctx, cmd.ShipmentID())
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	events := make([]IntegrationEvent, 0, len(steps))
	for _, s := range steps {
		if err = stepRepo.Add(ctx, s); err != nil {
			return nil, err
		}
		events = append(events, StepCreatedEvent{
			StepID:     s.ID().String(),
			ShipmentID: s.ShipmentID().String(),
			JourneyID:  s.JourneyID().String(),
			Index:      s.Index(),
			Timestamp:  now,
		})
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return events, nil
}
