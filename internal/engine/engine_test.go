package engine

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"vela/internal/common"
	"vela/internal/engineconfig"
)

func newTestEngine() *MatchingEngine {
	return New(engineconfig.Config{}, nil, WithLogger(zerolog.Nop()))
}

func limitSpec(symbol string, side common.Side, qty, price string) common.OrderSpec {
	return common.OrderSpec{Symbol: symbol, OrderType: common.Limit, Side: side, Quantity: qty, Price: &price}
}

func marketSpec(symbol string, side common.Side, qty string) common.OrderSpec {
	return common.OrderSpec{Symbol: symbol, OrderType: common.Market, Side: side, Quantity: qty}
}

func iocSpec(symbol string, side common.Side, qty, price string) common.OrderSpec {
	return common.OrderSpec{Symbol: symbol, OrderType: common.IOC, Side: side, Quantity: qty, Price: &price}
}

func fokSpec(symbol string, side common.Side, qty, price string) common.OrderSpec {
	return common.OrderSpec{Symbol: symbol, OrderType: common.FOK, Side: side, Quantity: qty, Price: &price}
}

// A resting sell crosses an incoming buy at the resting (maker) price.
func TestSubmitSimpleCross(t *testing.T) {
	e := newTestEngine()

	restResult := e.Submit(limitSpec("BTC-USDT", common.Sell, "5", "100"))
	assert.NoError(t, restResult.Err)
	assert.Equal(t, common.Pending, restResult.Status)

	result := e.Submit(limitSpec("BTC-USDT", common.Buy, "3", "101"))
	assert.NoError(t, result.Err)
	assert.Equal(t, common.Filled, result.Status)
	assert.Len(t, result.Trades, 1)
	assert.Equal(t, "100", result.Trades[0].Price.String())
	assert.Equal(t, "3", result.Trades[0].Quantity.String())
}

// Two resting orders at the same price fill in arrival order (FIFO).
func TestSubmitPriceTimePriority(t *testing.T) {
	e := newTestEngine()

	first := e.Submit(limitSpec("BTC-USDT", common.Sell, "2", "100"))
	second := e.Submit(limitSpec("BTC-USDT", common.Sell, "2", "100"))
	assert.NoError(t, first.Err)
	assert.NoError(t, second.Err)

	result := e.Submit(marketSpec("BTC-USDT", common.Buy, "3"))
	assert.NoError(t, result.Err)
	assert.Len(t, result.Trades, 2)
	assert.Equal(t, "2", result.Trades[0].Quantity.String())
	assert.Equal(t, first.OrderID, result.Trades[0].MakerOrderID)
	assert.Equal(t, "1", result.Trades[1].Quantity.String())
	assert.Equal(t, second.OrderID, result.Trades[1].MakerOrderID)
}

// A limit buy below the best ask must never trade through to a worse
// price; it rests instead.
func TestSubmitNoTradeThrough(t *testing.T) {
	e := newTestEngine()

	e.Submit(limitSpec("BTC-USDT", common.Sell, "1", "105"))

	result := e.Submit(limitSpec("BTC-USDT", common.Buy, "1", "100"))
	assert.NoError(t, result.Err)
	assert.Empty(t, result.Trades)
	assert.Equal(t, common.Pending, result.Status)

	bbo, ok := e.BBO("BTC-USDT")
	assert.True(t, ok)
	assert.Equal(t, "100", bbo.BestBid.String())
	assert.Equal(t, "105", bbo.BestAsk.String())
}

// An IOC that cannot be fully filled executes its crossable quantity and
// cancels the remainder rather than resting.
func TestSubmitIOCPartialCancelsResidual(t *testing.T) {
	e := newTestEngine()

	e.Submit(limitSpec("BTC-USDT", common.Sell, "2", "100"))

	result := e.Submit(iocSpec("BTC-USDT", common.Buy, "5", "100"))
	assert.NoError(t, result.Err)
	assert.Equal(t, common.Cancelled, result.Status)
	assert.Equal(t, "2", result.FilledQuantity.String())
	assert.Equal(t, "3", result.RemainingQuantity.String())

	bbo, _ := e.BBO("BTC-USDT")
	assert.Nil(t, bbo.BestAsk)
}

// A FOK order that cannot be completely filled is killed with zero fills
// and never touches the book.
func TestSubmitFOKKilledInsufficientLiquidity(t *testing.T) {
	e := newTestEngine()

	e.Submit(limitSpec("BTC-USDT", common.Sell, "2", "100"))

	result := e.Submit(fokSpec("BTC-USDT", common.Buy, "5", "100"))
	assert.NoError(t, result.Err)
	assert.Equal(t, common.Cancelled, result.Status)
	assert.Empty(t, result.Trades)
	assert.True(t, result.FilledQuantity.IsZero())

	bbo, _ := e.BBO("BTC-USDT")
	assert.Equal(t, "2", bbo.BestAskQuantity.String())
}

// A FOK order whose quantity is satisfied across multiple price levels
// fills completely.
func TestSubmitFOKFilledAcrossLevels(t *testing.T) {
	e := newTestEngine()

	e.Submit(limitSpec("BTC-USDT", common.Sell, "2", "100"))
	e.Submit(limitSpec("BTC-USDT", common.Sell, "3", "101"))

	result := e.Submit(fokSpec("BTC-USDT", common.Buy, "5", "101"))
	assert.NoError(t, result.Err)
	assert.Equal(t, common.Filled, result.Status)
	assert.Len(t, result.Trades, 2)
	assert.Equal(t, "100", result.Trades[0].Price.String())
	assert.Equal(t, "101", result.Trades[1].Price.String())
}

func TestSubmitRejectsInvalidSpec(t *testing.T) {
	e := newTestEngine()

	result := e.Submit(common.OrderSpec{OrderType: common.Limit, Quantity: "1"})
	assert.ErrorIs(t, result.Err, common.ErrValidation)
	assert.Equal(t, common.Rejected, result.Status)
}

func TestCancelUnknownSymbolAndOrder(t *testing.T) {
	e := newTestEngine()

	result := e.Cancel("BTC-USDT", "missing")
	assert.ErrorIs(t, result.Err, common.ErrUnknownSymbol)

	e.Submit(limitSpec("BTC-USDT", common.Buy, "1", "100"))
	result = e.Cancel("BTC-USDT", "missing")
	assert.ErrorIs(t, result.Err, common.ErrUnknownOrder)
}

func TestCancelRestingOrder(t *testing.T) {
	e := newTestEngine()

	placed := e.Submit(limitSpec("BTC-USDT", common.Buy, "1", "100"))
	result := e.Cancel("BTC-USDT", placed.OrderID)
	assert.NoError(t, result.Err)
	assert.Equal(t, common.Cancelled, result.Status)

	bbo, _ := e.BBO("BTC-USDT")
	assert.Nil(t, bbo.BestBid)
}

func TestTradeLogAccumulates(t *testing.T) {
	e := newTestEngine()

	e.Submit(limitSpec("BTC-USDT", common.Sell, "1", "100"))
	e.Submit(marketSpec("BTC-USDT", common.Buy, "1"))

	assert.Len(t, e.TradeLog(), 1)
}

func TestSubscribersAreInvoked(t *testing.T) {
	e := newTestEngine()

	var trades int
	var bboUpdates int
	e.RegisterTradeSubscriber(func(common.Trade) { trades++ })
	e.RegisterBBOSubscriber(func(string) { bboUpdates++ })

	e.Submit(limitSpec("BTC-USDT", common.Sell, "1", "100"))
	e.Submit(marketSpec("BTC-USDT", common.Buy, "1"))

	assert.Equal(t, 1, trades)
	assert.Equal(t, 2, bboUpdates)
}

func TestSubscriberPanicIsIsolated(t *testing.T) {
	e := newTestEngine()

	e.RegisterBBOSubscriber(func(string) { panic("boom") })

	assert.NotPanics(t, func() {
		e.Submit(limitSpec("BTC-USDT", common.Buy, "1", "100"))
	})
}
