package commands_test

import (
	"context"
	"testing"
	"time"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/ledger"
	"custody/internal/core/domain/model/shipment"
	"custody/internal/core/domain/model/step"
	"custody/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStepRepository struct{ mock.Mock }

func (m *MockStepRepository) Add(ctx context.Context, s *step.Step) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStepRepository) Update(ctx context.Context, s *step.Step) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStepRepository) Get(ctx context.Context, id kernel.UUID) (*step.Step, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*step.Step), args.Error(1)
}

func (m *MockStepRepository) GetByShipment(ctx context.Context, shipmentID kernel.UUID) ([]*step.Step, error) {
	args := m.Called(ctx, shipmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*step.Step), args.Error(1)
}

func (m *MockStepRepository) List(ctx context.Context, filter ports.StepFilter, limit, offset int) ([]*step.Step, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*step.Step), args.Error(1)
}

func (m *MockStepRepository) Count(ctx context.Context, filter ports.StepFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedgerRepository struct{ mock.Mock }

func (m *MockLedgerRepository) Add(ctx context.Context, r *ledger.TxRecord) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockLedgerRepository) Get(ctx context.Context, id kernel.UUID) (*ledger.TxRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.TxRecord), args.Error(1)
}

func (m *MockLedgerRepository) List(ctx context.Context, filter ports.TxRecordFilter) ([]*ledger.TxRecord, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.TxRecord), args.Error(1)
}

type MockStepUoW struct{ mock.Mock }

func (m *MockStepUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStepUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStepUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStepUoW) StepRepository() ports.StepRepository {
	args := m.Called()
	return args.Get(0).(ports.StepRepository)
}

type MockStepUoWFactory struct{ mock.Mock }

func (m *MockStepUoWFactory) Create() commands.StepUoW {
	args := m.Called()
	return args.Get(0).(commands.StepUoW)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) StepRepository() ports.StepRepository {
	args := m.Called()
	return args.Get(0).(ports.StepRepository)
}

func (m *MockUoW) LedgerRepository() ports.LedgerRepository {
	args := m.Called()
	return args.Get(0).(ports.LedgerRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockShipmentClient struct{ mock.Mock }

func (m *MockShipmentClient) GetShipment(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

// restoreStep builds a persisted-looking step at the given index and state.
func restoreStep(t *testing.T, shipmentID kernel.UUID, index int, state step.State) *step.Step {
	t.Helper()

	addr, err := kernel.NewWalletAddress("addr1test")
	require.NoError(t, err)
	cred, err := kernel.NewCredential(addr, "")
	require.NoError(t, err)

	s, err := step.RestoreStep(step.NewStepParams{
		ID:               kernel.NewUUID(),
		Index:            index,
		Cost:             100,
		HolderAddress:    addr,
		RecipientAddress: addr,
		OperatorAddress:  addr,
		Performer:        cred,
		Requester:        cred,
		ETA:              time.Now().Add(time.Hour),
		StartTime:        time.Now(),
		ShipmentID:       shipmentID,
		JourneyID:        kernel.NewUUID(),
		OperatorID:       kernel.NewUUID(),
		ColonyID:         kernel.NewUUID(),
		AgentID:          kernel.NewUUID(),
		SenderID:         kernel.NewUUID(),
		RecipientID:      kernel.NewUUID(),
		HolderID:         kernel.NewUUID(),
	}, state, 1, time.Now(), time.Now())
	require.NoError(t, err)
	return s
}
