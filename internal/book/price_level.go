// Package book implements the per-symbol order book: price-indexed FIFO
// queues of resting orders, kept in two btrees (bids descending, asks
// ascending) with an O(1) order-id index for cancellation.
package book

import "vela/internal/common"

// PriceLevel is the FIFO queue of resting orders at one price, plus their
// aggregate remaining quantity. Orders are appended at the tail and
// matched from the head, preserving strict time priority within the
// level.
type PriceLevel struct {
	Price         common.Decimal
	Orders        []*common.Order
	TotalQuantity common.Decimal
}

// NewPriceLevel creates an empty level at price.
func NewPriceLevel(price common.Decimal) *PriceLevel {
	return &PriceLevel{Price: price, TotalQuantity: common.Zero}
}

// Append adds order to the tail of the level and folds its remaining
// quantity into the aggregate.
func (l *PriceLevel) Append(order *common.Order) {
	l.Orders = append(l.Orders, order)
	l.TotalQuantity = l.TotalQuantity.Add(order.RemainingQuantity)
}

// Remove deletes the order with orderID from anywhere in the level
// (cancellation is rare, so this is allowed to be O(level size)). It
// reports whether an order was found and removed.
func (l *PriceLevel) Remove(orderID string) bool {
	for i, o := range l.Orders {
		if o.OrderID == orderID {
			l.TotalQuantity = l.TotalQuantity.Sub(o.RemainingQuantity)
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return true
		}
	}
	return false
}

// Adjust updates the aggregate quantity by delta (typically negative,
// following a partial fill of a resting order already reflected in the
// order's own RemainingQuantity).
func (l *PriceLevel) Adjust(delta common.Decimal) {
	l.TotalQuantity = l.TotalQuantity.Add(delta)
}

// PeekHead returns the order at the front of the FIFO without removing
// it, or nil if the level is empty.
func (l *PriceLevel) PeekHead() *common.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	return l.Orders[0]
}

// PopHead removes and returns the order at the front of the FIFO, or nil
// if the level is empty.
func (l *PriceLevel) PopHead() *common.Order {
	if len(l.Orders) == 0 {
		return nil
	}
	head := l.Orders[0]
	l.Orders = l.Orders[1:]
	return head
}

// IsEmpty reports whether the level has no orders or zero aggregate
// quantity — either condition means the level should be dropped from its
// side of the book.
func (l *PriceLevel) IsEmpty() bool {
	return len(l.Orders) == 0 || l.TotalQuantity.IsZero()
}
