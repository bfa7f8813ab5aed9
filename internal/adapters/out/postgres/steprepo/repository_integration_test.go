package steprepo_test

import (
	"context"
	"testing"
	"time"

	"custody/internal/adapters/out/postgres/steprepo"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockAggregateTracker provides a no-op tracker for repository tests.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

type StepRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *steprepo.GormStepRepository
}

func (suite *StepRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&steprepo.StepDTO{})
	suite.Require().NoError(err)

	suite.repo = steprepo.NewGormStepRepository(db, &mockAggregateTracker{})
}

func (suite *StepRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *StepRepositoryIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE steps").Error
	suite.Require().NoError(err)
}

func (suite *StepRepositoryIntegrationTestSuite) buildStep(shipmentID kernel.UUID, index int) *step.Step {
	holder, err := kernel.NewWalletAddress("addr1holder")
	suite.Require().NoError(err)
	recipient, err := kernel.NewWalletAddress("addr1recipient")
	suite.Require().NoError(err)
	operator, err := kernel.NewWalletAddress("addr1operator")
	suite.Require().NoError(err)
	performer, err := kernel.NewCredential(operator, "operator-badge")
	suite.Require().NoError(err)
	requester, err := kernel.NewCredential(holder, "")
	suite.Require().NoError(err)

	s, err := step.NewStep(step.NewStepParams{
		ID:               kernel.NewUUID(),
		Index:            index,
		Cost:             1_500_000,
		HolderAddress:    holder,
		RecipientAddress: recipient,
		OperatorAddress:  operator,
		Performer:        performer,
		Requester:        requester,
		ETA:              time.Now().Add(6 * time.Hour).UTC(),
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
	suite.Require().NoError(err)
	return s
}

func (suite *StepRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := context.Background()
	created := suite.buildStep(kernel.NewUUID(), 0)

	err := suite.repo.Add(ctx, created)
	suite.Require().NoError(err)

	loaded, err := suite.repo.Get(ctx, created.ID())
	suite.Require().NoError(err)

	suite.True(loaded.ID().IsEqual(created.ID()))
	suite.True(loaded.ShipmentID().IsEqual(created.ShipmentID()))
	suite.True(loaded.JourneyID().IsEqual(created.JourneyID()))
	suite.Equal(created.Index(), loaded.Index())
	suite.Equal(created.Cost(), loaded.Cost())
	suite.True(loaded.HolderAddress().IsEqual(created.HolderAddress()))
	suite.True(loaded.RecipientAddress().IsEqual(created.RecipientAddress()))
	suite.True(loaded.Performer().IsEqual(created.Performer()))
	suite.True(loaded.Requester().IsEqual(created.Requester()))
	suite.Equal(step.Pending, loaded.State())
	suite.Equal(0, loaded.Version())
	suite.Empty(loaded.TxOutRef())
}

func (suite *StepRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repo.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *StepRepositoryIntegrationTestSuite) TestGetByShipment_OrderedByChainIndex() {
	ctx := context.Background()
	shipmentID := kernel.NewUUID()

	// insert out of order
	for _, index := range []int{2, 0, 1} {
		err := suite.repo.Add(ctx, suite.buildStep(shipmentID, index))
		suite.Require().NoError(err)
	}
	err := suite.repo.Add(ctx, suite.buildStep(kernel.NewUUID(), 0))
	suite.Require().NoError(err)

	chain, err := suite.repo.GetByShipment(ctx, shipmentID)
	suite.Require().NoError(err)

	suite.Require().Len(chain, 3)
	for i, s := range chain {
		suite.Equal(i, s.Index())
	}
}

func (suite *StepRepositoryIntegrationTestSuite) TestUpdate_BumpsVersion() {
	ctx := context.Background()
	created := suite.buildStep(kernel.NewUUID(), 0)
	err := suite.repo.Add(ctx, created)
	suite.Require().NoError(err)

	err = created.TransitionTo(step.Accepted)
	suite.Require().NoError(err)
	err = suite.repo.Update(ctx, created)
	suite.Require().NoError(err)

	loaded, err := suite.repo.Get(ctx, created.ID())
	suite.Require().NoError(err)
	suite.Equal(step.Accepted, loaded.State())
	suite.Equal(1, loaded.Version())
}

func (suite *StepRepositoryIntegrationTestSuite) TestUpdate_StaleVersionIsRejected() {
	ctx := context.Background()
	created := suite.buildStep(kernel.NewUUID(), 0)
	err := suite.repo.Add(ctx, created)
	suite.Require().NoError(err)

	// two writers load the same version
	first, err := suite.repo.Get(ctx, created.ID())
	suite.Require().NoError(err)
	second, err := suite.repo.Get(ctx, created.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(first.TransitionTo(step.Accepted))
	suite.Require().NoError(suite.repo.Update(ctx, first))

	suite.Require().NoError(second.TransitionTo(step.Cancelled))
	err = suite.repo.Update(ctx, second)

	suite.Require().ErrorIs(err, errs.ErrVersionIsInvalid)

	loaded, err := suite.repo.Get(ctx, created.ID())
	suite.Require().NoError(err)
	suite.Equal(step.Accepted, loaded.State(), "loser's write must not apply")
}

func (suite *StepRepositoryIntegrationTestSuite) TestUpdate_PersistsTxOutRef() {
	ctx := context.Background()
	created := suite.buildStep(kernel.NewUUID(), 0)
	err := suite.repo.Add(ctx, created)
	suite.Require().NoError(err)

	suite.Require().NoError(created.TransitionTo(step.Accepted))
	suite.Require().NoError(created.AttachTxOutRef("deadbeef#0"))
	suite.Require().NoError(suite.repo.Update(ctx, created))

	loaded, err := suite.repo.Get(ctx, created.ID())
	suite.Require().NoError(err)
	suite.Equal("deadbeef#0", loaded.TxOutRef())
}

func (suite *StepRepositoryIntegrationTestSuite) TestAdd_DuplicateChainIndexIsRejected() {
	ctx := context.Background()
	shipmentID := kernel.NewUUID()

	err := suite.repo.Add(ctx, suite.buildStep(shipmentID, 0))
	suite.Require().NoError(err)

	err = suite.repo.Add(ctx, suite.buildStep(shipmentID, 0))
	suite.Require().Error(err, "second step at the same chain position must hit the unique constraint")

	count, err := suite.repo.Count(ctx, ports.StepFilter{ShipmentID: &shipmentID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	// the same position in a different shipment is fine
	err = suite.repo.Add(ctx, suite.buildStep(kernel.NewUUID(), 0))
	suite.Require().NoError(err)
}

func (suite *StepRepositoryIntegrationTestSuite) TestListAndCount_Filters() {
	ctx := context.Background()
	shipmentID := kernel.NewUUID()

	inShipment := []*step.Step{
		suite.buildStep(shipmentID, 0),
		suite.buildStep(shipmentID, 1),
	}
	other := suite.buildStep(kernel.NewUUID(), 0)

	for _, s := range append(inShipment, other) {
		suite.Require().NoError(suite.repo.Add(ctx, s))
	}

	suite.Require().NoError(inShipment[1].TransitionTo(step.Accepted))
	suite.Require().NoError(suite.repo.Update(ctx, inShipment[1]))

	byShipment := ports.StepFilter{ShipmentID: &shipmentID}
	listed, err := suite.repo.List(ctx, byShipment, 10, 0)
	suite.Require().NoError(err)
	suite.Len(listed, 2)

	count, err := suite.repo.Count(ctx, byShipment)
	suite.Require().NoError(err)
	suite.Equal(int64(2), count)

	accepted := step.Accepted
	listed, err = suite.repo.List(ctx, ports.StepFilter{ShipmentID: &shipmentID, State: &accepted}, 10, 0)
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.True(listed[0].ID().IsEqual(inShipment[1].ID()))

	journeyID := inShipment[0].JourneyID()
	listed, err = suite.repo.List(ctx, ports.StepFilter{JourneyID: &journeyID}, 10, 0)
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.True(listed[0].ID().IsEqual(inShipment[0].ID()))

	senderID := inShipment[1].SenderID()
	listed, err = suite.repo.List(ctx, ports.StepFilter{SenderID: &senderID}, 10, 0)
	suite.Require().NoError(err)
	suite.Require().Len(listed, 1)
	suite.True(listed[0].ID().IsEqual(inShipment[1].ID()))

	recipientID := other.RecipientID()
	count, err = suite.repo.Count(ctx, ports.StepFilter{RecipientID: &recipientID})
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)

	// paging
	listed, err = suite.repo.List(ctx, byShipment, 1, 1)
	suite.Require().NoError(err)
	suite.Len(listed, 1)
}

func TestStepRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(StepRepositoryIntegrationTestSuite))
}
