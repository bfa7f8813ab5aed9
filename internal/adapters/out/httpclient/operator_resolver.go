package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/services"
	"custody/internal/pkg/errs"
)

// OperatorContextResolver resolves journey operator contexts through the
// operator registry's HTTP API.
type OperatorContextResolver struct {
	baseURL string
	client  *http.Client
}

// NewOperatorContextResolver creates a resolver against the operator
// registry base URL.
func NewOperatorContextResolver(baseURL string) *OperatorContextResolver {
	return &OperatorContextResolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

type operatorContextDTO struct {
	OperatorID            string  `json:"operatorId"`
	ColonyID              string  `json:"colonyId"`
	AgentID               string  `json:"agentId"`
	OperatorWalletAddress string  `json:"operatorWalletAddress"`
	OperatorBadgePolicyID string  `json:"operatorBadgePolicyId"`
	AgentAddress          *string `json:"agentAddress"`
}

// ResolveOperatorContext fetches the operator/agent context of a journey.
// Returns an ObjectNotFoundError when the registry answers 404.
func (r *OperatorContextResolver) ResolveOperatorContext(
	ctx context.Context,
	journeyID kernel.UUID,
) (services.OperatorContext, error) {
	url := fmt.Sprintf("%s/api/v1/journeys/%s/operator-context", r.baseURL, journeyID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.OperatorContext{}, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return services.OperatorContext{}, fmt.Errorf("resolve journey %s: %w", journeyID, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return services.OperatorContext{}, errs.NewObjectNotFoundError("journey", journeyID.String())
	default:
		return services.OperatorContext{}, fmt.Errorf(
			"resolve journey %s: unexpected status %d", journeyID, resp.StatusCode)
	}

	var dto operatorContextDTO
	if err = json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return services.OperatorContext{}, errs.NewValueIsInvalidErrorWithCause("operator context payload", err)
	}

	return operatorContextFromDTO(dto)
}

func operatorContextFromDTO(dto operatorContextDTO) (services.OperatorContext, error) {
	operatorID, err := kernel.UUIDFromString(dto.OperatorID)
	if err != nil {
		return services.OperatorContext{}, err
	}
	colonyID, err := kernel.UUIDFromString(dto.ColonyID)
	if err != nil {
		return services.OperatorContext{}, err
	}
	agentID, err := kernel.UUIDFromString(dto.AgentID)
	if err != nil {
		return services.OperatorContext{}, err
	}
	operatorAddress, err := kernel.NewWalletAddress(dto.OperatorWalletAddress)
	if err != nil {
		return services.OperatorContext{}, err
	}

	resolved := services.OperatorContext{
		OperatorID:            operatorID,
		ColonyID:              colonyID,
		AgentID:               agentID,
		OperatorWalletAddress: operatorAddress,
		OperatorBadgePolicyID: dto.OperatorBadgePolicyID,
	}

	if dto.AgentAddress != nil && *dto.AgentAddress != "" {
		agentAddress, agentErr := kernel.NewWalletAddress(*dto.AgentAddress)
		if agentErr != nil {
			return services.OperatorContext{}, agentErr
		}
		resolved.AgentAddress = &agentAddress
	}

	return resolved, nil
}
