package engine

import (
	"vela/internal/book"
	"vela/internal/common"
)

// matchOrder is the heart of the engine: it sweeps order against the
// contra side of b, best price outward, filling at the resting order's
// price (never the taker's), in strict FIFO within each price level. It
// never skips a better resting price to reach a worse one (no
// trade-through) and never partially re-prices a level.
//
// Ported from original_source's _match_order, restructured into the
// teacher's shared book-mutation shape (one loop walking best price,
// inner loop draining the level's FIFO).
func (e *MatchingEngine) matchOrder(order *common.Order, b *book.OrderBook) []common.Trade {
	var trades []common.Trade

	contraSide := order.Side.Opposite()

	for order.RemainingQuantity.IsPositive() {
		bestPrice := bestContraPrice(b, contraSide)
		if bestPrice == nil {
			break // contra side exhausted
		}

		// No-trade-through test: if the order carries a limit price and
		// the best contra price is worse than it, stop. We never skip a
		// better resting price to reach a worse one.
		if order.Price != nil {
			if order.Side == common.Buy && bestPrice.GreaterThan(*order.Price) {
				break
			}
			if order.Side == common.Sell && bestPrice.LessThan(*order.Price) {
				break
			}
		}

		for order.RemainingQuantity.IsPositive() {
			resting, ok := headOfLevel(b, contraSide, *bestPrice)
			if !ok {
				break // level drained or vanished; re-derive best price
			}

			fill := common.Min(order.RemainingQuantity, resting.RemainingQuantity)

			trade := common.NewTrade(order.Symbol, *bestPrice, fill, order.Side, resting.OrderID, order.OrderID)

			order.Fill(fill)
			resting.Fill(fill)
			b.UpdateAfterPartialFill(resting, fill)

			trades = append(trades, trade)
			e.appendTrade(trade)
			e.metrics.tradesExecuted.Inc()

			e.log.Info().
				Str("symbol", order.Symbol).
				Str("price", bestPrice.String()).
				Str("quantity", fill.String()).
				Str("maker_order_id", resting.OrderID).
				Str("taker_order_id", order.OrderID).
				Msg("trade executed")

			e.notifyTrade(trade)
		}
	}

	return trades
}

// bestContraPrice returns the best resting price on side of b, or nil if
// that side is empty.
func bestContraPrice(b *book.OrderBook, side common.Side) *common.Decimal {
	if side == common.Buy {
		return b.BestBid()
	}
	return b.BestAsk()
}

// headOfLevel returns the order at the front of the FIFO queue at price
// on side, or (nil, false) if that level no longer exists or is empty.
// It re-reads the book each call because UpdateAfterPartialFill may have
// collapsed the level out from under us when the previous fill fully
// consumed the head order.
func headOfLevel(b *book.OrderBook, side common.Side, price common.Decimal) (*common.Order, bool) {
	levels := b.Asks
	if side == common.Buy {
		levels = b.Bids
	}
	level, ok := levels.Get(&book.PriceLevel{Price: price})
	if !ok {
		return nil, false
	}
	head := level.PeekHead()
	if head == nil {
		return nil, false
	}
	return head, true
}

// canFillCompletely walks the contra side of b from best outward,
// accumulating total_quantity of each level whose price is acceptable to
// order's limit, and reports whether the accumulated quantity reaches
// order.Quantity before the price window closes. It reads only; it
// mutates nothing. Ported from original_source's _can_fill_completely.
func (e *MatchingEngine) canFillCompletely(order *common.Order, b *book.OrderBook) bool {
	remaining := order.Quantity
	contraSide := order.Side.Opposite()

	levels := b.Asks
	if contraSide == common.Buy {
		levels = b.Bids
	}

	for _, level := range levels.Items() {
		if order.Price != nil {
			if order.Side == common.Buy && level.Price.GreaterThan(*order.Price) {
				break
			}
			if order.Side == common.Sell && level.Price.LessThan(*order.Price) {
				break
			}
		}

		if level.TotalQuantity.GreaterThanOrEqual(remaining) {
			return true
		}
		remaining = remaining.Sub(level.TotalQuantity)
	}

	return !remaining.IsPositive()
}

// Cancel removes orderID from symbol's book, setting it to CANCELLED and
// emitting a BBO update. Cancelling an unknown symbol or an unknown
// order id is a structured not-found, never a panic.
func (e *MatchingEngine) Cancel(symbol, orderID string) CancelResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	b, ok := e.books[symbol]
	if !ok {
		return CancelResult{
			OrderID:   orderID,
			Timestamp: nowStamp(),
			Err:       common.ErrUnknownSymbol,
		}
	}

	order := b.RemoveOrder(orderID)
	if order == nil {
		return CancelResult{
			OrderID:   orderID,
			Timestamp: nowStamp(),
			Err:       common.ErrUnknownOrder,
		}
	}

	order.Status = common.Cancelled
	e.notifyBBO(symbol)

	e.log.Info().Str("order_id", orderID).Str("symbol", symbol).Msg("order cancelled")

	return CancelResult{
		OrderID:   orderID,
		Status:    common.Cancelled,
		Timestamp: nowStamp(),
	}
}
