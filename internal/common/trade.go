package common

import (
	"encoding/json"
	"time"
)

// Trade is an immutable record of one execution between a resting maker
// order and an incoming taker order. The execution price is always the
// maker's resting price — price improvement accrues to the taker as a
// direct consequence of the no-trade-through rule plus the book's
// best-price discipline.
type Trade struct {
	TradeID       string
	Symbol        string
	Price         Decimal
	Quantity      Decimal
	Timestamp     time.Time
	AggressorSide Side
	MakerOrderID  string
	TakerOrderID  string
	MakerFee      *Decimal // optional decoration; never populated by the core
	TakerFee      *Decimal // optional decoration; never populated by the core
}

// NewTrade mints a Trade at the resting order's price, stamped with the
// current time.
func NewTrade(symbol string, price, quantity Decimal, aggressorSide Side, makerOrderID, takerOrderID string) Trade {
	return Trade{
		TradeID:       NewTradeID(),
		Symbol:        symbol,
		Price:         price,
		Quantity:      quantity,
		Timestamp:     time.Now().UTC(),
		AggressorSide: aggressorSide,
		MakerOrderID:  makerOrderID,
		TakerOrderID:  takerOrderID,
	}
}

type tradeWire struct {
	TradeID       string  `json:"trade_id"`
	Symbol        string  `json:"symbol"`
	Price         string  `json:"price"`
	Quantity      string  `json:"quantity"`
	Timestamp     string  `json:"timestamp"`
	AggressorSide string  `json:"aggressor_side"`
	MakerOrderID  string  `json:"maker_order_id"`
	TakerOrderID  string  `json:"taker_order_id"`
	MakerFee      *string `json:"maker_fee,omitempty"`
	TakerFee      *string `json:"taker_fee,omitempty"`
}

// MarshalJSON renders the canonical wire form: decimal strings, a
// lowercase side, and a microsecond-precision ISO-8601 UTC timestamp with
// a trailing Z.
func (t Trade) MarshalJSON() ([]byte, error) {
	w := tradeWire{
		TradeID:       t.TradeID,
		Symbol:        t.Symbol,
		Price:         t.Price.String(),
		Quantity:      t.Quantity.String(),
		Timestamp:     t.Timestamp.Format("2006-01-02T15:04:05.000000Z"),
		AggressorSide: t.AggressorSide.String(),
		MakerOrderID:  t.MakerOrderID,
		TakerOrderID:  t.TakerOrderID,
	}
	if t.MakerFee != nil {
		s := t.MakerFee.String()
		w.MakerFee = &s
	}
	if t.TakerFee != nil {
		s := t.TakerFee.String()
		w.TakerFee = &s
	}
	return json.Marshal(w)
}
