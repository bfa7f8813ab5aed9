package commands

import (
	"errors"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/guard"
)

var ErrCreateCustodyChainCommandIsNotConstructed = errors.New(
	"CreateCustodyChainCommand must be created via NewCreateCustodyChainCommand constructor",
)

// CreateCustodyChainCommand represents a request to build the custody chain
// for a shipment that was just created in the shipment service.
//
// Example:
//
//	cmd, err := NewCreateCustodyChainCommand(shipmentID)
//	if err != nil {
//	    return fmt.Errorf("invalid shipment reference: %w", err)
//	}
//
//	handler := NewCreateCustodyChainCommandHandler(uowFactory, shipments, builder)
//	events, err := handler.Handle(ctx, cmd)
type CreateCustodyChainCommand struct { //nolint:recvcheck //using for validation
	shipmentID kernel.UUID

	guard guard.ConstructorGuard
}

// NewCreateCustodyChainCommand creates a command to build a shipment's chain.
// Validates that the shipment ID is a constructed UUID.
func NewCreateCustodyChainCommand(shipmentID kernel.UUID) (CreateCustodyChainCommand, error) {
	cmd := CreateCustodyChainCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := cmd.setShipmentID(shipmentID); err != nil {
		return CreateCustodyChainCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateCustodyChainCommandIsNotConstructed if validation fails.
func (c CreateCustodyChainCommand) Validate() error {
	return c.guard.Validate(ErrCreateCustodyChainCommandIsNotConstructed)
}

// ShipmentID returns the shipment whose chain must be built.
func (c CreateCustodyChainCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

func (c *CreateCustodyChainCommand) setShipmentID(shipmentID kernel.UUID) error {
	if err := shipmentID.Validate(); err != nil {
		return err
	}

	c.shipmentID = shipmentID
	return nil
}
