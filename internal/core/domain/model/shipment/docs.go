// Package shipment carries the read model of the externally-owned shipment
// aggregate (shipment, journey, mission) and the pure derivation of a
// shipment's coarse status from the fine-grained states of its custody steps.
//
// The status aggregator deliberately owns no state: it is a pure function
// over an immutable Snapshot, recomputed in full on every step change.
package shipment
