package common

import (
	"encoding/json"
	"time"
)

// BBO is the Best Bid and Offer for a symbol: the top of each side of the
// book plus its aggregated quantity. Either side is nil when that half of
// the book is empty.
type BBO struct {
	Symbol          string
	BestBid         *Decimal
	BestBidQuantity Decimal
	BestAsk         *Decimal
	BestAskQuantity Decimal
	Timestamp       time.Time
}

type bboWire struct {
	Symbol          string  `json:"symbol"`
	BestBid         *string `json:"best_bid"`
	BestBidQuantity string  `json:"best_bid_quantity"`
	BestAsk         *string `json:"best_ask"`
	BestAskQuantity string  `json:"best_ask_quantity"`
	Timestamp       string  `json:"timestamp"`
}

func (b BBO) MarshalJSON() ([]byte, error) {
	w := bboWire{
		Symbol:          b.Symbol,
		BestBidQuantity: b.BestBidQuantity.String(),
		BestAskQuantity: b.BestAskQuantity.String(),
		Timestamp:       b.Timestamp.Format("2006-01-02T15:04:05.000000Z"),
	}
	if b.BestBid != nil {
		s := b.BestBid.String()
		w.BestBid = &s
	}
	if b.BestAsk != nil {
		s := b.BestAsk.String()
		w.BestAsk = &s
	}
	return json.Marshal(w)
}

// PriceLevelView is one aggregated row of an L2 snapshot: a price and the
// total resting quantity at that price, with no per-order detail.
type PriceLevelView struct {
	Price    Decimal
	Quantity Decimal
}

// Snapshot is an L2 depth view: up to depth price levels per side,
// best-to-worst ordered.
type Snapshot struct {
	Symbol    string
	Bids      []PriceLevelView
	Asks      []PriceLevelView
	Timestamp time.Time
}

type snapshotWire struct {
	Symbol    string      `json:"symbol"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
	Timestamp string      `json:"timestamp"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	w := snapshotWire{
		Symbol:    s.Symbol,
		Bids:      make([][2]string, len(s.Bids)),
		Asks:      make([][2]string, len(s.Asks)),
		Timestamp: s.Timestamp.Format("2006-01-02T15:04:05.000000Z"),
	}
	for i, lvl := range s.Bids {
		w.Bids[i] = [2]string{lvl.Price.String(), lvl.Quantity.String()}
	}
	for i, lvl := range s.Asks {
		w.Asks[i] = [2]string{lvl.Price.String(), lvl.Quantity.String()}
	}
	return json.Marshal(w)
}
