package engine

import (
	"time"

	"vela/internal/book"
	"vela/internal/common"
)

// Submit validates and processes spec, dispatching on order type per the
// table in the specification: LIMIT crosses then rests its residual;
// MARKET and IOC cross then cancel their residual; FOK either fills
// completely or is cancelled with zero fills. The matching loop and any
// resulting book mutation happen atomically under the engine's single
// gate — Submit either completes with a definite status, or reports
// REJECTED without having mutated anything.
func (e *MatchingEngine) Submit(spec common.OrderSpec) Result {
	order, err := common.NewOrder(spec)
	if err != nil {
		e.log.Error().Err(err).Str("symbol", spec.Symbol).Msg("order rejected at construction")
		return Result{
			Status:    common.Rejected,
			Timestamp: nowStamp(),
			Err:       err,
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.log.Info().
		Str("order_id", order.OrderID).
		Str("symbol", order.Symbol).
		Str("order_type", order.OrderType.String()).
		Str("side", order.Side.String()).
		Str("quantity", order.Quantity.String()).
		Msg("order received")

	b := e.getOrCreateBook(order.Symbol)

	var trades []common.Trade
	var procErr error
	switch order.OrderType {
	case common.Market:
		trades = e.processMarket(order, b)
	case common.Limit:
		trades = e.processLimit(order, b)
	case common.IOC:
		trades = e.processIOC(order, b)
	case common.FOK:
		trades, procErr = e.processFOK(order, b)
	default:
		order.Status = common.Rejected
		e.metrics.ordersSubmitted.WithLabelValues(order.OrderType.String(), order.Status.String()).Inc()
		return Result{
			OrderID:   order.OrderID,
			Status:    common.Rejected,
			Timestamp: nowStamp(),
			Err:       common.ErrValidation,
		}
	}

	e.metrics.matchLatency.Observe(time.Since(start).Seconds())
	e.metrics.ordersSubmitted.WithLabelValues(order.OrderType.String(), order.Status.String()).Inc()
	e.notifyBBO(order.Symbol)

	return Result{
		OrderID:           order.OrderID,
		Status:            order.Status,
		FilledQuantity:    order.FilledQuantity,
		RemainingQuantity: order.RemainingQuantity,
		Trades:            trades,
		Timestamp:         nowStamp(),
		Err:               procErr,
	}
}

// processMarket executes a market order against any available contra
// price; any unfilled residual is cancelled (insufficient liquidity).
func (e *MatchingEngine) processMarket(order *common.Order, b *book.OrderBook) []common.Trade {
	trades := e.matchOrder(order, b)
	if order.RemainingQuantity.IsPositive() {
		order.Status = common.Cancelled
		e.log.Warn().
			Str("order_id", order.OrderID).
			Str("filled", order.FilledQuantity.String()).
			Str("requested", order.Quantity.String()).
			Msg("market order could not be fully filled, cancelling remainder")
	}
	return trades
}

// processLimit crosses at the order's own price or better, then rests
// any residual on the book at that price.
func (e *MatchingEngine) processLimit(order *common.Order, b *book.OrderBook) []common.Trade {
	trades := e.matchOrder(order, b)
	if order.RemainingQuantity.IsPositive() {
		b.AddOrder(order)
		e.log.Info().
			Str("order_id", order.OrderID).
			Str("remaining", order.RemainingQuantity.String()).
			Str("price", order.Price.String()).
			Msg("limit order resting on book")
	}
	return trades
}

// processIOC crosses at the order's own price or better, then cancels
// any residual rather than resting it.
func (e *MatchingEngine) processIOC(order *common.Order, b *book.OrderBook) []common.Trade {
	trades := e.matchOrder(order, b)
	if order.RemainingQuantity.IsPositive() {
		order.Status = common.Cancelled
		e.log.Info().
			Str("order_id", order.OrderID).
			Str("filled", order.FilledQuantity.String()).
			Str("cancelled", order.RemainingQuantity.String()).
			Msg("ioc order cancelled")
	}
	return trades
}

// processFOK prechecks sufficient cumulative contra liquidity at
// acceptable prices before doing anything; if insufficient, the order is
// cancelled with zero fills and the book is never touched. Otherwise it
// executes exactly like a limit order's crossing phase, and must finish
// with zero remaining quantity.
func (e *MatchingEngine) processFOK(order *common.Order, b *book.OrderBook) ([]common.Trade, error) {
	if !e.canFillCompletely(order, b) {
		// Not an error condition: a FOK that cannot be filled completely
		// is cancelled with zero fills. Err is left nil so callers don't
		// mistake this for a rejection.
		order.Status = common.Cancelled
		e.log.Info().Str("order_id", order.OrderID).Msg("fok order killed: insufficient liquidity")
		return nil, nil
	}

	trades := e.matchOrder(order, b)

	if order.RemainingQuantity.IsPositive() {
		// Unreachable in correct code: the precheck and this match run
		// under the same engine-wide mutex, so the liquidity observed
		// by canFillCompletely cannot have changed underneath us. If it
		// ever does happen, surface it rather than silently cancelling.
		e.metrics.fokInvariant.Inc()
		e.log.Error().
			Str("order_id", order.OrderID).
			Str("remaining", order.RemainingQuantity.String()).
			Msg("internal invariant violation: fok precheck passed but execution left a residual")
		order.Status = common.Cancelled
		return trades, common.ErrInternalInvariant
	}

	return trades, nil
}
