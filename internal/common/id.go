package common

import "github.com/google/uuid"

// NewID returns a canonically formatted 128-bit random identifier.
func NewID() string {
	return uuid.New().String()
}

// NewOrderID and NewTradeID are named wrappers over NewID so call sites
// read as what they're minting rather than a bare NewID().
func NewOrderID() string { return NewID() }
func NewTradeID() string { return NewID() }
