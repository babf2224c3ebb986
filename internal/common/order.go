package common

import (
	"fmt"
	"time"
)

// Order is a single inbound instruction to buy or sell a quantity of a
// symbol, tracked through its lifecycle from PENDING to a terminal state.
//
// Quantity is immutable after construction; FilledQuantity is
// monotonically non-decreasing; RemainingQuantity is always
// Quantity - FilledQuantity and is kept in lock-step by Fill.
type Order struct {
	OrderID           string
	Symbol            string
	OrderType         OrderType
	Side              Side
	Quantity          Decimal
	Price             *Decimal // present iff OrderType != Market
	Timestamp         time.Time
	Status            OrderStatus
	FilledQuantity    Decimal
	RemainingQuantity Decimal
	Owner             string // optional: attribution, not used by matching
}

// OrderSpec is the external request shape accepted by Submit: the wire
// representation before an Order is minted (§6 of the spec). Quantity and
// Price arrive as canonical decimal strings.
type OrderSpec struct {
	Symbol    string
	OrderType OrderType
	Side      Side
	Quantity  string
	Price     *string // nil for Market orders
}

// NewOrder validates spec and constructs a PENDING Order with a freshly
// minted OrderID and microsecond-precision arrival timestamp. It returns
// ErrValidation (wrapped with detail) on any construction-invariant
// violation; no partial state is ever produced.
func NewOrder(spec OrderSpec) (*Order, error) {
	if spec.Symbol == "" {
		return nil, fmt.Errorf("%w: symbol must not be empty", ErrValidation)
	}

	qty, err := ParsePositiveDecimal(spec.Quantity)
	if err != nil {
		return nil, fmt.Errorf("%w: quantity: %v", ErrValidation, err)
	}

	var price *Decimal
	switch {
	case spec.OrderType == Market && spec.Price != nil:
		return nil, fmt.Errorf("%w: market orders must not carry a price", ErrValidation)
	case spec.OrderType != Market && spec.Price == nil:
		return nil, fmt.Errorf("%w: %s orders require a price", ErrValidation, spec.OrderType)
	case spec.Price != nil:
		p, err := ParsePositiveDecimal(*spec.Price)
		if err != nil {
			return nil, fmt.Errorf("%w: price: %v", ErrValidation, err)
		}
		price = &p
	}

	now := time.Now().UTC()
	return &Order{
		OrderID:           NewOrderID(),
		Symbol:            spec.Symbol,
		OrderType:         spec.OrderType,
		Side:              spec.Side,
		Quantity:          qty,
		Price:             price,
		Timestamp:         now,
		Status:            Pending,
		FilledQuantity:    Zero,
		RemainingQuantity: qty,
	}, nil
}

// IsMarketable reports whether this order could be immediately matched
// given the current top of book. It is informational (transports use it
// to decide whether an order will "rest" or "cross" before submitting);
// the matching loop itself re-derives the same condition per fill and
// does not call this.
func (o *Order) IsMarketable(bestBid, bestAsk *Decimal) bool {
	if o.OrderType == Market {
		return true
	}
	switch o.Side {
	case Buy:
		return bestAsk != nil && o.Price != nil && o.Price.GreaterThanOrEqual(*bestAsk)
	case Sell:
		return bestBid != nil && o.Price != nil && o.Price.LessThanOrEqual(*bestBid)
	default:
		return false
	}
}

// Fill applies a partial or complete fill of qty, transitioning Status to
// PARTIAL or FILLED as appropriate. It is an invariant violation to fill
// more than RemainingQuantity or a non-positive amount; callers (the
// matching loop) are expected to never do so, so this panics rather than
// returning an error that would have to be handled mid-match.
func (o *Order) Fill(qty Decimal) {
	if !qty.IsPositive() {
		panic("common: Fill requires a positive quantity")
	}
	if qty.GreaterThan(o.RemainingQuantity) {
		panic("common: Fill quantity exceeds remaining quantity")
	}

	o.FilledQuantity = o.FilledQuantity.Add(qty)
	o.RemainingQuantity = o.RemainingQuantity.Sub(qty)

	if o.RemainingQuantity.IsZero() {
		o.Status = Filled
	} else if o.FilledQuantity.IsPositive() {
		o.Status = Partial
	}
}
