package engine

import (
	"time"

	"vela/internal/common"
)

// Result is the outcome of a Submit call: the order's final status for
// this submission, how much of it filled, and every trade this
// submission generated, in execution order.
type Result struct {
	OrderID           string
	Status            common.OrderStatus
	FilledQuantity    common.Decimal
	RemainingQuantity common.Decimal
	Trades            []common.Trade
	Timestamp         time.Time
	Err               error // non-nil when Status == Rejected, or with CANCELLED on ErrInternalInvariant
}

// CancelResult is the outcome of a Cancel call.
type CancelResult struct {
	OrderID   string
	Status    common.OrderStatus
	Timestamp time.Time
	Err       error // non-nil on not-found
}
