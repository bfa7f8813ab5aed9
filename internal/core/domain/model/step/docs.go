// Package step contains the custody-step aggregate and its lifecycle state
// machine. A step is one hop's custody-and-settlement record in a shipment's
// chain: it names the current custodian (holder), the next custodian
// (recipient), the executing operator/agent (performer), and the shipment
// initiator (requester), along with the hop's on-chain settlement parameters.
//
// Steps are created once per shipment by the chain builder, mutated only
// through validated state transitions, and never deleted outside shipment
// cancellation cascades.
package step
