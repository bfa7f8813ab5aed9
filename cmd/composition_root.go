package cmd

import (
	"log/slog"
	"strings"

	httpin "custody/internal/adapters/in/http"
	"custody/internal/adapters/in/messaging"
	"custody/internal/adapters/out/httpclient"
	"custody/internal/adapters/out/kafka"
	"custody/internal/adapters/out/postgres"
	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/application/usecases/queries"
	"custody/internal/core/domain/services"
	"custody/internal/jobs"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	registry   *prometheus.Registry
	bus        *kafka.Bus
	shipments  *httpclient.ShipmentClient
	resolver   *httpclient.OperatorContextResolver
	logger     *slog.Logger
}

func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		registry:   prometheus.NewRegistry(),
		bus: kafka.NewBus(
			strings.Split(configs.KafkaHost, ","),
			configs.KafkaConsumerGroup,
			logger,
		),
		shipments: httpclient.NewShipmentClient(configs.ShipmentServiceURL),
		resolver:  httpclient.NewOperatorContextResolver(configs.OperatorServiceURL),
		logger:    logger,
	}
}

func (c *CompositionRoot) Registry() *prometheus.Registry {
	return c.registry
}

func (c *CompositionRoot) CreateCreateCustodyChainCommandHandler() commands.CreateCustodyChainCommandHandler {
	var f commands.StepUoWFactory = FuncStepUoWFactory(func() commands.StepUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateCustodyChainCommandHandler(
		f,
		c.shipments,
		services.NewChainBuilder(c.resolver),
	)
}

func (c *CompositionRoot) CreateTransitionStepCommandHandler() commands.TransitionStepCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionStepCommandHandler(f)
}

func (c *CompositionRoot) CreateGetStepsBatchQueryHandler() queries.GetStepsBatchQueryHandler {
	return queries.NewGetStepsBatchQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStepPhaseDurationQueryHandler() queries.GetStepPhaseDurationQueryHandler {
	return queries.NewGetStepPhaseDurationQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetStepStateCountsQueryHandler() queries.GetStepStateCountsQueryHandler {
	return queries.NewGetStepStateCountsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateConsumer() *messaging.Consumer {
	chainHandler := c.CreateCreateCustodyChainCommandHandler()
	transitionHandler := c.CreateTransitionStepCommandHandler()
	return messaging.NewConsumer(c.bus, chainHandler, transitionHandler, c.logger, c.registry)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(c.CreateGetStepStateCountsQueryHandler(), c.registry, c.logger)
}

func (c *CompositionRoot) CreateHTTPServer() (*httpin.Server, error) {
	return httpin.NewServer(
		c.CreateGetStepsBatchQueryHandler(),
		c.CreateGetStepPhaseDurationQueryHandler(),
		c.registry,
	)
}

type FuncStepUoWFactory func() commands.StepUoW

func (f FuncStepUoWFactory) Create() commands.StepUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}
