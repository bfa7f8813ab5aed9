package queries_test

import (
	"testing"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"

	"github.com/stretchr/testify/require"
)

// mockAggregateTracker provides a no-op tracker for seeding repositories.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

// buildStep creates a fresh Pending step for the given shipment and index.
func buildStep(t *testing.T, shipmentID kernel.UUID, index int) *step.Step {
	t.Helper()

	holder, err := kernel.NewWalletAddress("addr1holder")
	require.NoError(t, err)
	operator, err := kernel.NewWalletAddress("addr1operator")
	require.NoError(t, err)
	performer, err := kernel.NewCredential(operator, "operator-badge")
	require.NoError(t, err)
	requester, err := kernel.NewCredential(holder, "")
	require.NoError(t, err)

	s, err := step.NewStep(step.NewStepParams{
		ID:               kernel.NewUUID(),
		Index:            index,
		Cost:             2_000_000,
		HolderAddress:    holder,
		RecipientAddress: holder,
		OperatorAddress:  operator,
		Performer:        performer,
		Requester:        requester,
		ETA:              time.Now().Add(3 * time.Hour).UTC(),
		StartTime:        time.Now().UTC(),
		ShipmentID:       shipmentID,
		JourneyID:        kernel.NewUUID(),
		OperatorID:       kernel.NewUUID(),
		ColonyID:         kernel.NewUUID(),
		AgentID:          kernel.NewUUID(),
		SenderID:         kernel.NewUUID(),
		RecipientID:      kernel.NewUUID(),
		HolderID:         kernel.NewUUID(),
	})
	require.NoError(t, err)
	return s
}
