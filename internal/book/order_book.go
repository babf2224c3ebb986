package book

import (
	"sync"
	"time"

	"github.com/tidwall/btree"
	"vela/internal/common"
)

// PriceLevels is a btree of price levels for one side of a book, ordered
// by whichever comparator NewOrderBook installed (descending for bids,
// ascending for asks) so that the tree's minimum is always the best
// price for that side.
type PriceLevels = btree.BTreeG[*PriceLevel]

// OrderBook holds one symbol's resting liquidity: two price-indexed
// btrees plus an order-id index for O(1) cancel lookup. Every order in
// orders appears in exactly one PriceLevel in the matching side; no
// PriceLevel with zero orders or zero aggregate quantity is ever left in
// the tree.
type OrderBook struct {
	Symbol string

	mu sync.RWMutex

	Bids *PriceLevels // descending: best bid (highest price) first
	Asks *PriceLevels // ascending: best ask (lowest price) first

	orders map[string]*common.Order
}

// New constructs an empty order book for symbol.
func New(symbol string) *OrderBook {
	bids := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.GreaterThan(b.Price)
	})
	asks := btree.NewBTreeG(func(a, b *PriceLevel) bool {
		return a.Price.LessThan(b.Price)
	})
	return &OrderBook{
		Symbol: symbol,
		Bids:   bids,
		Asks:   asks,
		orders: make(map[string]*common.Order),
	}
}

func (b *OrderBook) sideFor(side common.Side) *PriceLevels {
	if side == common.Buy {
		return b.Bids
	}
	return b.Asks
}

// AddOrder rests order on its own side of the book at its own price. The
// caller must ensure order.RemainingQuantity > 0 and order.Price != nil
// (true of the LIMIT residuals, the only orders the engine rests, by
// construction).
func (b *OrderBook) AddOrder(order *common.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	levels := b.sideFor(order.Side)
	price := *order.Price

	level, ok := levels.GetMut(&PriceLevel{Price: price})
	if !ok {
		level = NewPriceLevel(price)
		levels.Set(level)
	}
	level.Append(order)
	b.orders[order.OrderID] = order
}

// RemoveOrder detaches the order identified by orderID from its price
// level and the id index, collapsing the level if it becomes empty. It
// returns the removed order, or nil if orderID is not resting.
func (b *OrderBook) RemoveOrder(orderID string) *common.Order {
	b.mu.Lock()
	defer b.mu.Unlock()

	order, ok := b.orders[orderID]
	if !ok {
		return nil
	}

	levels := b.sideFor(order.Side)
	level, ok := levels.GetMut(&PriceLevel{Price: *order.Price})
	if !ok {
		// Index and tree disagree; nothing sane to do but drop the
		// stale index entry.
		delete(b.orders, orderID)
		return nil
	}

	if level.Remove(orderID) {
		delete(b.orders, orderID)
	}
	if level.IsEmpty() {
		levels.Delete(level)
	}
	return order
}

// UpdateAfterPartialFill folds a fill of size filled into the level
// backing order (whose RemainingQuantity the caller has already
// decremented). If the order has been fully consumed it is popped from
// the head of the level and the id index; if the level becomes empty it
// is dropped from its side of the tree.
func (b *OrderBook) UpdateAfterPartialFill(order *common.Order, filled common.Decimal) {
	b.mu.Lock()
	defer b.mu.Unlock()

	levels := b.sideFor(order.Side)
	level, ok := levels.GetMut(&PriceLevel{Price: *order.Price})
	if !ok {
		return
	}

	level.Adjust(filled.Neg())

	if order.RemainingQuantity.IsZero() {
		level.PopHead()
		delete(b.orders, order.OrderID)
	}
	if level.IsEmpty() {
		levels.Delete(level)
	}
}

// BestBid returns the highest resting bid price, or nil if the bid side
// is empty.
func (b *OrderBook) BestBid() *common.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bestPriceLocked(b.Bids)
}

// BestAsk returns the lowest resting ask price, or nil if the ask side is
// empty.
func (b *OrderBook) BestAsk() *common.Decimal {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bestPriceLocked(b.Asks)
}

func (b *OrderBook) bestPriceLocked(levels *PriceLevels) *common.Decimal {
	level, ok := levels.Min()
	if !ok {
		return nil
	}
	p := level.Price
	return &p
}

// BBO bundles the best prices on both sides with their aggregated top-
// level quantities, stamped with the current time.
func (b *OrderBook) BBO() common.BBO {
	b.mu.RLock()
	defer b.mu.RUnlock()

	bbo := common.BBO{
		Symbol:          b.Symbol,
		BestBidQuantity: common.Zero,
		BestAskQuantity: common.Zero,
		Timestamp:       time.Now().UTC(),
	}
	if lvl, ok := b.Bids.Min(); ok {
		p := lvl.Price
		bbo.BestBid = &p
		bbo.BestBidQuantity = lvl.TotalQuantity
	}
	if lvl, ok := b.Asks.Min(); ok {
		p := lvl.Price
		bbo.BestAsk = &p
		bbo.BestAskQuantity = lvl.TotalQuantity
	}
	return bbo
}

// Snapshot returns an L2 depth view of up to depth levels per side,
// best-to-worst.
func (b *OrderBook) Snapshot(depth int) common.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := common.Snapshot{Symbol: b.Symbol, Timestamp: time.Now().UTC()}
	for i, lvl := range b.Bids.Items() {
		if i >= depth {
			break
		}
		snap.Bids = append(snap.Bids, common.PriceLevelView{Price: lvl.Price, Quantity: lvl.TotalQuantity})
	}
	for i, lvl := range b.Asks.Items() {
		if i >= depth {
			break
		}
		snap.Asks = append(snap.Asks, common.PriceLevelView{Price: lvl.Price, Quantity: lvl.TotalQuantity})
	}
	return snap
}

// OrderByID returns the resting order for orderID, if any, for callers
// (the engine's cancel path) that need to inspect it before removing it.
func (b *OrderBook) OrderByID(orderID string) (*common.Order, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	o, ok := b.orders[orderID]
	return o, ok
}
