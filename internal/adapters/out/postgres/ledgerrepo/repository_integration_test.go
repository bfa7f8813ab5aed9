package ledgerrepo_test

import (
	"context"
	"testing"
	"time"

	"custody/internal/adapters/out/postgres/ledgerrepo"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/ledger"
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

type LedgerRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *ledgerrepo.GormLedgerRepository
}

func (suite *LedgerRepositoryIntegrationTestSuite) SetupSuite() {
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

	err = db.AutoMigrate(&ledgerrepo.TxRecordDTO{})
	suite.Require().NoError(err)

	suite.repo = ledgerrepo.NewGormLedgerRepository(db, &mockAggregateTracker{})
}

func (suite *LedgerRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *LedgerRepositoryIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE ledger_records").Error
	suite.Require().NoError(err)
}

func (suite *LedgerRepositoryIntegrationTestSuite) TestAddAndGet() {
	ctx := context.Background()

	record, err := ledger.NewTxRecord(kernel.NewUUID(), kernel.NewUUID(), "a1b2c3", step.Committed)
	suite.Require().NoError(err)

	err = suite.repo.Add(ctx, record)
	suite.Require().NoError(err)

	loaded, err := suite.repo.Get(ctx, record.ID())
	suite.Require().NoError(err)
	suite.True(loaded.ID().IsEqual(record.ID()))
	suite.True(loaded.StepID().IsEqual(record.StepID()))
	suite.Equal("a1b2c3", loaded.TransactionHash())
	suite.Equal(step.Committed, loaded.State())
}

func (suite *LedgerRepositoryIntegrationTestSuite) TestGet_NotFound() {
	_, err := suite.repo.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *LedgerRepositoryIntegrationTestSuite) TestList_FiltersAndOrder() {
	ctx := context.Background()
	stepID := kernel.NewUUID()
	base := time.Now().UTC().Truncate(time.Second)

	appendRecord := func(state step.State, hash string, at time.Time) *ledger.TxRecord {
		record, err := ledger.RestoreTxRecord(kernel.NewUUID(), stepID, hash, state, at, at)
		suite.Require().NoError(err)
		suite.Require().NoError(suite.repo.Add(ctx, record))
		return record
	}

	appendRecord(step.Commenced, "hash-2", base.Add(2*time.Second))
	appendRecord(step.Accepted, "hash-1", base)
	appendRecord(step.Committed, "", base.Add(time.Second))

	otherRecord, err := ledger.NewTxRecord(kernel.NewUUID(), kernel.NewUUID(), "other", step.Accepted)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Add(ctx, otherRecord))

	records, err := suite.repo.List(ctx, ports.TxRecordFilter{StepID: &stepID})
	suite.Require().NoError(err)

	suite.Require().Len(records, 3)
	suite.Equal(step.Accepted, records[0].State())
	suite.Equal(step.Committed, records[1].State())
	suite.Equal(step.Commenced, records[2].State())

	accepted := step.Accepted
	records, err = suite.repo.List(ctx, ports.TxRecordFilter{StepID: &stepID, State: &accepted})
	suite.Require().NoError(err)
	suite.Require().Len(records, 1)
	suite.Equal("hash-1", records[0].TransactionHash())

	records, err = suite.repo.List(ctx, ports.TxRecordFilter{TransactionHash: "other"})
	suite.Require().NoError(err)
	suite.Require().Len(records, 1)
	suite.True(records[0].StepID().IsEqual(otherRecord.StepID()))
}

func TestLedgerRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerRepositoryIntegrationTestSuite))
}
