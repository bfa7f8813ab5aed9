package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	postgres_adapter "custody/internal/adapters/out/postgres"
	"custody/internal/adapters/out/postgres/ledgerrepo"
	"custody/internal/adapters/out/postgres/steprepo"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/ledger"
	"custody/internal/core/domain/model/step"
	"custody/internal/core/ports"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite provides integration testing for the
// GORM-based Unit of Work implementation with a real PostgreSQL database.
// Committed state is verified through a separate database/sql connection so
// the assertions do not depend on the GORM session under test.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	sqlDB     *sql.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	sqlDB, err := sql.Open("postgres", dsn)
	suite.Require().NoError(err)
	suite.sqlDB = sqlDB

	err = db.AutoMigrate(&steprepo.StepDTO{}, &ledgerrepo.TxRecordDTO{})
	suite.Require().NoError(err)

	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE steps, ledger_records").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.sqlDB != nil {
		err := suite.sqlDB.Close()
		suite.Require().NoError(err)
	}
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) buildStep() *step.Step {
	holder, err := kernel.NewWalletAddress("addr1holder")
	suite.Require().NoError(err)
	operator, err := kernel.NewWalletAddress("addr1operator")
	suite.Require().NoError(err)
	performer, err := kernel.NewCredential(operator, "operator-badge")
	suite.Require().NoError(err)
	requester, err := kernel.NewCredential(holder, "")
	suite.Require().NoError(err)

	s, err := step.NewStep(step.NewStepParams{
		ID:               kernel.NewUUID(),
		Index:            0,
		Cost:             1_000_000,
		HolderAddress:    holder,
		RecipientAddress: holder,
		OperatorAddress:  operator,
		Performer:        performer,
		Requester:        requester,
		ETA:              time.Now().Add(time.Hour).UTC(),
		StartTime:        time.Now().UTC(),
		ShipmentID:       kernel.NewUUID(),
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

func (suite *UnitOfWorkIntegrationTestSuite) countRows(table string) int {
	var count int
	err := suite.sqlDB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
	suite.Require().NoError(err)
	return count
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")

	suite.NotNil(uow1.StepRepository(), "First instance should provide step repository")
	suite.NotNil(uow1.LedgerRepository(), "First instance should provide ledger repository")
	suite.NotNil(uow2.StepRepository(), "Second instance should provide step repository")
	suite.NotNil(uow2.LedgerRepository(), "Second instance should provide ledger repository")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	err := uow.Begin(ctx)
	suite.Require().NoError(err, "Should begin transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err, "Multiple begin calls should be safe")

	err = uow.Commit(ctx)
	suite.Require().NoError(err, "Should commit transaction successfully")

	err = uow.Begin(ctx)
	suite.Require().NoError(err)

	err = uow.Rollback(ctx)
	suite.Require().NoError(err, "Should rollback transaction successfully")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommitWithoutBegin_ReturnsError() {
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(context.Background()))
	suite.Require().Error(uow.Rollback(context.Background()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsStepAndLedgerAtomically() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	aggregate := suite.buildStep()
	suite.Require().NoError(uow.StepRepository().Add(ctx, aggregate))

	record, err := ledger.NewTxRecord(kernel.NewUUID(), aggregate.ID(), "a1b2c3", step.Pending)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.LedgerRepository().Add(ctx, record))

	// nothing visible outside the transaction yet
	suite.Equal(0, suite.countRows("steps"))
	suite.Equal(0, suite.countRows("ledger_records"))

	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(1, suite.countRows("steps"))
	suite.Equal(1, suite.countRows("ledger_records"))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsAllWrites() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	aggregate := suite.buildStep()
	suite.Require().NoError(uow.StepRepository().Add(ctx, aggregate))

	record, err := ledger.NewTxRecord(kernel.NewUUID(), aggregate.ID(), "", step.Pending)
	suite.Require().NoError(err)
	suite.Require().NoError(uow.LedgerRepository().Add(ctx, record))

	suite.Require().NoError(uow.Rollback(ctx))

	suite.Equal(0, suite.countRows("steps"))
	suite.Equal(0, suite.countRows("ledger_records"))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRepositoriesOutsideTransaction_WriteImmediately() {
	ctx := context.Background()
	uow := suite.factory.Create()

	aggregate := suite.buildStep()
	suite.Require().NoError(uow.StepRepository().Add(ctx, aggregate))

	suite.Equal(1, suite.countRows("steps"))
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
