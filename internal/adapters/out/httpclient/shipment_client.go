// Package httpclient provides JSON/HTTP clients for the collaborating
// services: the shipment service owning shipments, journeys and missions,
// and the operator registry resolving journey operator contexts.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/shipment"
	"custody/internal/pkg/errs"
)

const defaultTimeout = 10 * time.Second

// ShipmentClient fetches resolved shipments from the shipment service.
type ShipmentClient struct {
	baseURL string
	client  *http.Client
}

// NewShipmentClient creates a client against the shipment service base URL.
func NewShipmentClient(baseURL string) *ShipmentClient {
	return &ShipmentClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type journeyDTO struct {
	ID            string    `json:"id"`
	OperatorID    string    `json:"operatorId"`
	Price         int64     `json:"price"`
	AvailableFrom time.Time `json:"availableFrom"`
	AvailableTo   time.Time `json:"availableTo"`
}

type missionDTO struct {
	CuratorID            string       `json:"curatorId"`
	CuratorWalletAddress string       `json:"curatorWalletAddress"`
	CuratorBadgePolicyID string       `json:"curatorBadgePolicyId"`
	Journeys             []journeyDTO `json:"journeys"`
}

type shipmentDTO struct {
	ID                  string      `json:"id"`
	SenderID            string      `json:"senderId"`
	SenderWalletAddress string      `json:"senderWalletAddress"`
	Journey             *journeyDTO `json:"journey"`
	Mission             *missionDTO `json:"mission"`
}

// GetShipment retrieves a shipment with its journey/mission relations
// expanded. Returns an ObjectNotFoundError when the shipment service answers
// 404.
func (c *ShipmentClient) GetShipment(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	url := fmt.Sprintf("%s/api/v1/shipments/%s?includeRelations=true", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get shipment %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, errs.NewObjectNotFoundError("shipment", id.String())
	default:
		return nil, fmt.Errorf("get shipment %s: unexpected status %d", id, resp.StatusCode)
	}

	var dto shipmentDTO
	if err = json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("shipment payload", err)
	}

	return shipmentFromDTO(dto)
}

func shipmentFromDTO(dto shipmentDTO) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromString(dto.ID)
	if err != nil {
		return nil, err
	}
	senderID, err := kernel.UUIDFromString(dto.SenderID)
	if err != nil {
		return nil, err
	}
	senderAddress, err := kernel.NewWalletAddress(dto.SenderWalletAddress)
	if err != nil {
		return nil, err
	}

	sh := &shipment.Shipment{
		ID:                  id,
		SenderID:            senderID,
		SenderWalletAddress: senderAddress,
	}

	if dto.Journey != nil {
		journey, journeyErr := journeyFromDTO(*dto.Journey)
		if journeyErr != nil {
			return nil, journeyErr
		}
		sh.Journey = &journey
	}

	if dto.Mission != nil {
		curatorID, curatorErr := kernel.UUIDFromString(dto.Mission.CuratorID)
		if curatorErr != nil {
			return nil, curatorErr
		}
		curatorAddress, curatorErr := kernel.NewWalletAddress(dto.Mission.CuratorWalletAddress)
		if curatorErr != nil {
			return nil, curatorErr
		}

		journeys := make([]shipment.Journey, 0, len(dto.Mission.Journeys))
		for _, j := range dto.Mission.Journeys {
			journey, journeyErr := journeyFromDTO(j)
			if journeyErr != nil {
				return nil, journeyErr
			}
			journeys = append(journeys, journey)
		}

		sh.Mission = &shipment.Mission{
			CuratorID:            curatorID,
			CuratorWalletAddress: curatorAddress,
			CuratorBadgePolicyID: dto.Mission.CuratorBadgePolicyID,
			Journeys:             journeys,
		}
	}

	if err = sh.Validate(); err != nil {
		return nil, err
	}

	return sh, nil
}

func journeyFromDTO(dto journeyDTO) (shipment.Journey, error) {
	id, err := kernel.UUIDFromString(dto.ID)
	if err != nil {
		return shipment.Journey{}, err
	}
	operatorID, err := kernel.UUIDFromString(dto.OperatorID)
	if err != nil {
		return shipment.Journey{}, err
	}

	return shipment.Journey{
		ID:            id,
		OperatorID:    operatorID,
		Price:         dto.Price,
		AvailableFrom: dto.AvailableFrom,
		AvailableTo:   dto.AvailableTo,
	}, nil
}
