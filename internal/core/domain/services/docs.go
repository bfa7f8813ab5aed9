// Package services provides domain services that orchestrate business
// operations across multiple domain entities of the custody system. It
// implements workflows that don't naturally belong to a single aggregate
// root.
//
// The package includes:
//   - ChainBuilder: a domain service constructing the ordered custody chain
//     of a shipment from its resolved journeys and operator contexts
//
// Domain services coordinate between aggregates, implementing business logic
// that spans multiple bounded contexts following Domain-Driven Design
// principles.
package services
