// Package messaging wires the message bus into the application core: it
// consumes orchestration events and commands, dispatches them to the command
// handlers and publishes the integration events the handlers produce.
package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"custody/internal/core/application/usecases/commands"
	"custody/internal/core/domain/model/kernel"
	"custody/internal/core/domain/model/step"
	"custody/internal/core/ports"
	"custody/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/errgroup"
)

// Topics consumed by the orchestration consumer.
const (
	TopicShipmentCreated         = "shipment.created"
	TopicStepTransitionRequested = "step.transition.requested"
)

type (
	// chainCreator handles chain creation commands.
	chainCreator interface {
		Handle(ctx context.Context, cmd commands.CreateCustodyChainCommand) ([]commands.IntegrationEvent, error)
	}

	// stepTransitioner handles step transition commands.
	stepTransitioner interface {
		Handle(ctx context.Context, cmd commands.TransitionStepCommand) ([]commands.IntegrationEvent, error)
	}
)

// shipmentCreatedPayload is the wire shape of a shipment.created event.
type shipmentCreatedPayload struct {
	ShipmentID string `json:"shipmentId"`
}

// stepTransitionPayload is the wire shape of a step.transition.requested
// command.
type stepTransitionPayload struct {
	StepID          string `json:"stepId"`
	TargetState     string `json:"targetState"`
	ChangedBy       string `json:"changedBy"`
	TransactionHash string `json:"transactionHash"`
}

// Consumer subscribes to the orchestration topics and drives the command
// handlers. Handler errors propagate unwrapped to the bus, which classifies
// them: poison failures are dead-lettered at once, transient ones are
// retried in place and dead-lettered when the retries run out.
type Consumer struct {
	bus          ports.MessageBus
	chains       chainCreator
	transitions  stepTransitioner
	log          *slog.Logger
	messages     *prometheus.CounterVec
	eventsOut    prometheus.Counter
}

// NewConsumer creates an orchestration consumer. Metrics are registered on
// the given registerer.
func NewConsumer(
	bus ports.MessageBus,
	chains chainCreator,
	transitions stepTransitioner,
	log *slog.Logger,
	reg prometheus.Registerer,
) *Consumer {
	return &Consumer{
		bus:         bus,
		chains:      chains,
		transitions: transitions,
		log:         log,
		messages: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "custody_consumer_messages_total",
			Help: "Messages consumed from orchestration topics by outcome.",
		}, []string{"topic", "outcome"}),
		eventsOut: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "custody_consumer_events_published_total",
			Help: "Integration events published after successful commands.",
		}),
	}
}

// Run subscribes to all orchestration topics and blocks until ctx is
// cancelled or a subscription fails permanently.
func (c *Consumer) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.bus.Subscribe(gctx, TopicShipmentCreated, c.handleShipmentCreated)
	})
	g.Go(func() error {
		return c.bus.Subscribe(gctx, TopicStepTransitionRequested, c.handleStepTransition)
	})

	return g.Wait()
}

func (c *Consumer) handleShipmentCreated(ctx context.Context, msg ports.Message) error {
	var payload shipmentCreatedPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return c.reject(msg, errs.NewValueIsInvalidErrorWithCause("shipment.created payload", err))
	}

	shipmentID, err := kernel.UUIDFromString(payload.ShipmentID)
	if err != nil {
		return c.reject(msg, errs.NewValueIsInvalidErrorWithCause("shipmentId", err))
	}

	cmd, err := commands.NewCreateCustodyChainCommand(shipmentID)
	if err != nil {
		return c.reject(msg, err)
	}

	events, err := c.chains.Handle(ctx, cmd)
	if err != nil {
		return c.fail(msg, err)
	}

	return c.publish(ctx, msg, events)
}

func (c *Consumer) handleStepTransition(ctx context.Context, msg ports.Message) error {
	var payload stepTransitionPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return c.reject(msg, errs.NewValueIsInvalidErrorWithCause("step.transition.requested payload", err))
	}

	stepID, err := kernel.UUIDFromString(payload.StepID)
	if err != nil {
		return c.reject(msg, errs.NewValueIsInvalidErrorWithCause("stepId", err))
	}

	targetState, err := step.StateFromString(payload.TargetState)
	if err != nil {
		return c.reject(msg, err)
	}

	cmd, err := commands.NewTransitionStepCommand(stepID, targetState, payload.ChangedBy, payload.TransactionHash)
	if err != nil {
		return c.reject(msg, err)
	}

	events, err := c.transitions.Handle(ctx, cmd)
	if err != nil {
		return c.fail(msg, err)
	}

	return c.publish(ctx, msg, events)
}

// publish pushes the produced integration events to their topics and
// acknowledges the consumed message.
func (c *Consumer) publish(ctx context.Context, msg ports.Message, events []commands.IntegrationEvent) error {
	out := make([]ports.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(event)
		if err != nil {
			return c.fail(msg, err)
		}
		out = append(out, ports.Message{
			Topic: event.Name(),
			Key:   []byte(event.Key()),
			Value: value,
		})
	}

	if err := c.bus.Publish(ctx, out...); err != nil {
		return c.fail(msg, err)
	}

	c.messages.WithLabelValues(msg.Topic, "ok").Inc()
	c.eventsOut.Add(float64(len(out)))
	return nil
}

// reject counts a message that can never succeed; the bus dead-letters it.
func (c *Consumer) reject(msg ports.Message, err error) error {
	c.messages.WithLabelValues(msg.Topic, "rejected").Inc()
	c.log.Warn("rejecting message", "topic", msg.Topic, "key", string(msg.Key), "error", err)
	return err
}

// fail counts a handler failure; whether it is retried is the bus's call.
func (c *Consumer) fail(msg ports.Message, err error) error {
	c.messages.WithLabelValues(msg.Topic, "failed").Inc()
	c.log.Error("message handling failed",
		"topic", msg.Topic, "key", string(msg.Key), "error", err)
	return err
}
