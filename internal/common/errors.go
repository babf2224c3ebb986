package common

import "errors"

// Error kinds per the engine's error taxonomy. These are domain errors,
// not exceptions: callers are expected to branch on errors.Is against
// these sentinels, wrapping them with %w for context.
var (
	// ErrValidation flags a malformed order at construction time: a
	// non-positive quantity or price, a missing price on a non-market
	// order, a price present on a market order, or an empty symbol. No
	// state is mutated before this is returned.
	ErrValidation = errors.New("validation error")

	// ErrUnknownSymbol is returned by Cancel when no book exists for the
	// given symbol. It is a structured not-found, never a panic or a
	// generic error. BBO and Snapshot report the same condition through
	// their false second return value instead of this error.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrUnknownOrder is returned by Cancel when the order id does not
	// resolve to a resting order (already terminal, or never existed).
	ErrUnknownOrder = errors.New("unknown order")

	// ErrInsufficientLiquidity names the "killed for lack of liquidity"
	// case, which is not really an error condition: a FOK order that
	// cannot be filled completely is cancelled with zero fills. Submit
	// does not return it; such an order is reported as CANCELLED with a
	// nil Err.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity for fill-or-kill")

	// ErrInternalInvariant marks a state that correct code should never
	// reach (e.g. a FOK precheck passed but execution left a residual).
	// It is logged and the order is rolled to CANCELLED; it is never
	// silently swallowed.
	ErrInternalInvariant = errors.New("internal invariant violation")
)
