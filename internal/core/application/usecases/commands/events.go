package commands

import "time"

// Topic names of the integration events produced by command handlers.
const (
	TopicStepCreated           = "step.created"
	TopicStepStateChanged      = "step.state.changed"
	TopicShipmentStatusChanged = "shipment.status.changed"
)

// IntegrationEvent is a domain fact to be published on the message bus after
// the producing transaction committed.
type IntegrationEvent interface {
	// Name returns the topic the event belongs to.
	Name() string

	// Key returns the partitioning key: events sharing a key are
	// delivered in order.
	Key() string
}

// StepCreatedEvent signals that a custody step was created as part of a
// shipment's chain.
type StepCreatedEvent struct {
	StepID     string    `json:"stepId"`
	ShipmentID string    `json:"shipmentId"`
	JourneyID  string    `json:"journeyId"`
	Index      int       `json:"index"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e StepCreatedEvent) Name() string { return TopicStepCreated }
func (e StepCreatedEvent) Key() string  { return e.ShipmentID }

// StepStateChangedEvent signals that a step passed lifecycle validation and
// moved to a new state.
type StepStateChangedEvent struct {
	StepID        string    `json:"stepId"`
	ShipmentID    string    `json:"shipmentId"`
	PreviousState string    `json:"previousState"`
	NewState      string    `json:"newState"`
	ChangedBy     string    `json:"changedBy,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e StepStateChangedEvent) Name() string { return TopicStepStateChanged }
func (e StepStateChangedEvent) Key() string  { return e.StepID }

// ShipmentStatusChangedEvent signals that the aggregated status derived from
// a shipment's step chain changed as a consequence of a step transition.
type ShipmentStatusChangedEvent struct {
	ShipmentID string    `json:"shipmentId"`
	Status     string    `json:"status"`
	Progress   float64   `json:"progress"`
	Timestamp  time.Time `json:"timestamp"`
}

func (e ShipmentStatusChangedEvent) Name() string { return TopicShipmentStatusChanged }
func (e ShipmentStatusChangedEvent) Key() string  { return e.ShipmentID }
