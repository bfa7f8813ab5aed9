package step_test

import (
	"testing"
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStepParams(t *testing.T) step.NewStepParams {
	t.Helper()

	holder, err := kernel.NewWalletAddress("addr1holder")
	require.NoError(t, err)
	recipient, err := kernel.NewWalletAddress("addr1recipient")
	require.NoError(t, err)
	operator, err := kernel.NewWalletAddress("addr1operator")
	require.NoError(t, err)
	performer, err := kernel.NewCredential(operator, "badge-policy-1")
	require.NoError(t, err)
	requester, err := kernel.NewCredential(holder, "")
	require.NoError(t, err)

	return step.NewStepParams{
		ID:               kernel.NewUUID(),
		Index:            0,
		Cost:             2_500_000,
		HolderAddress:    holder,
		RecipientAddress: recipient,
		OperatorAddress:  operator,
		Performer:        performer,
		Requester:        requester,
		ETA:              time.Now().Add(48 * time.Hour),
		StartTime:        time.Now().Add(2 * time.Hour),
		ShipmentID:       kernel.NewUUID(),
		JourneyID:        kernel.NewUUID(),
		OperatorID:       kernel.NewUUID(),
		ColonyID:         kernel.NewUUID(),
		AgentID:          kernel.NewUUID(),
		SenderID:         kernel.NewUUID(),
		RecipientID:      kernel.NewUUID(),
		HolderID:         kernel.NewUUID(),
	}
}

func TestNewStep(t *testing.T) {
	t.Run("should create a pending step", func(t *testing.T) {
		params := validStepParams(t)

		s, err := step.NewStep(params)

		require.NoError(t, err)
		require.NoError(t, s.Validate())
		assert.Equal(t, step.Pending, s.State())
		assert.Equal(t, 0, s.Version())
		assert.True(t, s.ID().IsEqual(params.ID))
		assert.Equal(t, params.Cost, s.Cost())
		assert.True(t, s.HolderAddress().IsEqual(params.HolderAddress))
		assert.True(t, s.Performer().IsEqual(params.Performer))
		assert.Empty(t, s.TxOutRef())
		assert.False(t, s.CreatedAt().IsZero())
	})

	t.Run("should reject a negative index", func(t *testing.T) {
		params := validStepParams(t)
		params.Index = -1

		_, err := step.NewStep(params)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a negative cost", func(t *testing.T) {
		params := validStepParams(t)
		params.Cost = -1

		_, err := step.NewStep(params)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject missing entity references", func(t *testing.T) {
		params := validStepParams(t)
		params.AgentID = kernel.UUID{}

		_, err := step.NewStep(params)

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Contains(t, err.Error(), "agentId")
	})

	t.Run("should reject missing addresses", func(t *testing.T) {
		params := validStepParams(t)
		params.RecipientAddress = kernel.WalletAddress{}

		_, err := step.NewStep(params)

		require.Error(t, err)
	})
}

func TestRestoreStep(t *testing.T) {
	t.Run("should rehydrate state, version, and timestamps", func(t *testing.T) {
		params := validStepParams(t)
		created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		updated := created.Add(time.Hour)

		s, err := step.RestoreStep(params, step.Commenced, 4, created, updated)

		require.NoError(t, err)
		assert.Equal(t, step.Commenced, s.State())
		assert.Equal(t, 4, s.Version())
		assert.Equal(t, created, s.CreatedAt())
		assert.Equal(t, updated, s.UpdatedAt())
	})

	t.Run("should reject an invalid persisted state", func(t *testing.T) {
		_, err := step.RestoreStep(validStepParams(t), step.Unknown, 0, time.Now(), time.Now())

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a negative version", func(t *testing.T) {
		_, err := step.RestoreStep(validStepParams(t), step.Pending, -2, time.Now(), time.Now())

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestStep_Validate(t *testing.T) {
	t.Run("zero value is not constructed", func(t *testing.T) {
		var s step.Step

		assert.Equal(t, step.ErrStepIsNotConstructed, s.Validate())
	})

	t.Run("nil step is not constructed", func(t *testing.T) {
		var s *step.Step

		assert.Equal(t, step.ErrStepIsNotConstructed, s.Validate())
	})
}

func TestStep_TransitionTo(t *testing.T) {
	t.Run("should apply an allowed transition", func(t *testing.T) {
		s, err := step.NewStep(validStepParams(t))
		require.NoError(t, err)

		require.NoError(t, s.TransitionTo(step.Accepted))
		assert.Equal(t, step.Accepted, s.State())
	})

	t.Run("should leave the step unchanged on a rejected transition", func(t *testing.T) {
		s, err := step.NewStep(validStepParams(t))
		require.NoError(t, err)
		before := s.UpdatedAt()

		err = s.TransitionTo(step.Fulfilled)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, step.Pending, s.State())
		assert.Equal(t, before, s.UpdatedAt())
	})

	t.Run("should walk the full forward flow", func(t *testing.T) {
		s, err := step.NewStep(validStepParams(t))
		require.NoError(t, err)

		flow := []step.State{
			step.Accepted, step.Initialized, step.Committed, step.PickedUp,
			step.Commenced, step.DroppedOff, step.Fulfilled, step.Claimed, step.Completed,
		}
		for _, target := range flow {
			require.NoError(t, s.TransitionTo(target), "to %s", target)
		}
		assert.Equal(t, step.Completed, s.State())
	})
}

func TestStep_AttachTxOutRef(t *testing.T) {
	s, err := step.NewStep(validStepParams(t))
	require.NoError(t, err)

	t.Run("should record a reference", func(t *testing.T) {
		require.NoError(t, s.AttachTxOutRef("f00d#0"))
		assert.Equal(t, "f00d#0", s.TxOutRef())
	})

	t.Run("should reject an empty reference", func(t *testing.T) {
		require.ErrorIs(t, s.AttachTxOutRef(""), errs.ErrValueIsRequired)
	})
}
