package kernel

import (
	"fmt"

	"custody/internal/pkg/errs"
)

// maxWalletAddressLength bounds the bech32/base58 representations seen on the
// settlement chain; anything longer is malformed input.
const maxWalletAddressLength = 256

// WalletAddress is a value object for an on-chain address used in step
// settlement parameters (holder, recipient, operator, performer, requester).
//
// The zero value is invalid; construct via NewWalletAddress. WalletAddress is
// immutable and safe for concurrent use.
type WalletAddress struct {
	value string
}

// NewWalletAddress creates a WalletAddress from its string form.
// The address must be non-empty and within the chain's length bounds; the
// service treats it as opaque beyond that, since signing and broadcast live
// in an external collaborator.
func NewWalletAddress(value string) (WalletAddress, error) {
	if value == "" {
		return WalletAddress{}, errs.NewValueIsRequiredError("walletAddress")
	}
	if len(value) > maxWalletAddressLength {
		return WalletAddress{}, errs.NewValueIsOutOfRangeError("walletAddress length", len(value), 1, maxWalletAddressLength)
	}

	return WalletAddress{value: value}, nil
}

// String returns the address in its on-chain string form.
func (a WalletAddress) String() string {
	return a.value
}

// IsEqual compares two wallet addresses for equality.
func (a WalletAddress) IsEqual(other WalletAddress) bool {
	return a.value == other.value
}

// Validate checks that the address was properly constructed.
func (a WalletAddress) Validate() error {
	if a.value == "" {
		return errs.NewValueIsRequiredError("WalletAddress must be created via NewWalletAddress")
	}
	return nil
}

// Credential is a value object pairing an on-chain address with an optional
// badge policy id. It models the performer and requester roles of a step:
// a mission requester carries the curator's badge policy, a single-journey
// requester carries none.
//
// The zero value is invalid; construct via NewCredential. Credential is
// immutable and safe for concurrent use.
type Credential struct {
	address  WalletAddress
	policyID string
}

// NewCredential creates a Credential. policyID may be empty, which means the
// credential carries no badge policy.
func NewCredential(address WalletAddress, policyID string) (Credential, error) {
	if err := address.Validate(); err != nil {
		return Credential{}, fmt.Errorf("credential address: %w", err)
	}

	return Credential{
		address:  address,
		policyID: policyID,
	}, nil
}

// Address returns the credential's on-chain address.
func (c Credential) Address() WalletAddress {
	return c.address
}

// PolicyID returns the badge policy id, or the empty string when the
// credential carries none.
func (c Credential) PolicyID() string {
	return c.policyID
}

// HasPolicy reports whether the credential carries a badge policy.
func (c Credential) HasPolicy() bool {
	return c.policyID != ""
}

// IsEqual compares two credentials for equality.
func (c Credential) IsEqual(other Credential) bool {
	return c.address.IsEqual(other.address) && c.policyID == other.policyID
}

// Validate checks that the credential was properly constructed.
func (c Credential) Validate() error {
	return c.address.Validate()
}
