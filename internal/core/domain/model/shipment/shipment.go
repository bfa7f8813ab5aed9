package shipment

import (
	"time"

	"custody/internal/core/domain/model/kernel"
	"custody/internal/pkg/errs"
)

// Journey is one logistics leg offered by an operator. It is owned by an
// external service; this read model carries only what chain construction
// needs.
type Journey struct {
	ID            kernel.UUID
	OperatorID    kernel.UUID
	Price         int64
	AvailableFrom time.Time
	AvailableTo   time.Time
}

// Validate checks the journey's identifiers and price.
func (j Journey) Validate() error {
	if err := j.ID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("journeyId", err)
	}
	if err := j.OperatorID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("operatorId", err)
	}
	if j.Price < 0 {
		return errs.NewValueIsInvalidError("journey price")
	}
	return nil
}

// Mission is a curator-aggregated bundle of journeys forming one multi-hop
// shipment. The journeys list is ordered: journey i hands the parcel to
// journey i+1.
type Mission struct {
	CuratorID            kernel.UUID
	CuratorWalletAddress kernel.WalletAddress
	CuratorBadgePolicyID string
	Journeys             []Journey
}

// Shipment is the read model of the externally-owned shipment aggregate,
// resolved with its journey or mission relations. Exactly one of Journey and
// Mission is expected to be set; a shipment with neither cannot produce a
// custody chain.
type Shipment struct {
	ID                  kernel.UUID
	SenderID            kernel.UUID
	SenderWalletAddress kernel.WalletAddress
	Journey             *Journey
	Mission             *Mission
}

// Journeys returns the ordered logistics legs of the shipment: the single
// journey for a plain shipment, the mission's journey list for a mission.
// Returns nil when the shipment carries neither.
func (s *Shipment) Journeys() []Journey {
	switch {
	case s.Mission != nil:
		return s.Mission.Journeys
	case s.Journey != nil:
		return []Journey{*s.Journey}
	default:
		return nil
	}
}

// IsMission reports whether the shipment is curator-aggregated.
func (s *Shipment) IsMission() bool {
	return s.Mission != nil
}

// Validate checks the shipment's identifiers, sender address, and the
// journeys it carries. It does not require journeys to be present; the chain
// builder reports that case separately.
func (s *Shipment) Validate() error {
	if s == nil {
		return errs.NewValueIsRequiredError("shipment")
	}
	if err := s.ID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("shipmentId", err)
	}
	if err := s.SenderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("senderId", err)
	}
	if err := s.SenderWalletAddress.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("senderWalletAddress", err)
	}

	if s.Mission != nil {
		if err := s.Mission.CuratorID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause("curatorId", err)
		}
		if err := s.Mission.CuratorWalletAddress.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause("curatorWalletAddress", err)
		}
	}

	for _, j := range s.Journeys() {
		if err := j.Validate(); err != nil {
			return err
		}
	}
	return nil
}
