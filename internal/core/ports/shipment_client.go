package ports

import (
	"context"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/shipment"
)

// ShipmentClient fetches resolved shipment data from the shipment service.
// Shipments live outside this bounded context; the client returns the
// read model the chain builder needs, with the journey/mission relations
// already expanded.
type ShipmentClient interface {
	// GetShipment retrieves a shipment by ID. Returns an
	// ObjectNotFoundError when the shipment service has no such shipment.
	GetShipment(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)
}
