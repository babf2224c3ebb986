package common

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBBOMarshalJSONEmptySide(t *testing.T) {
	bbo := BBO{
		Symbol:          "BTC-USDT",
		BestBidQuantity: Zero,
		BestAskQuantity: Zero,
		Timestamp:       time.Unix(0, 0).UTC(),
	}

	raw, err := json.Marshal(bbo)
	assert.NoError(t, err)

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["best_bid"])
	assert.Nil(t, decoded["best_ask"])
}

func TestSnapshotMarshalJSON(t *testing.T) {
	price, _ := ParseDecimal("100")
	qty, _ := ParseDecimal("5")

	snap := Snapshot{
		Symbol:    "BTC-USDT",
		Bids:      []PriceLevelView{{Price: price, Quantity: qty}},
		Timestamp: time.Unix(0, 0).UTC(),
	}

	raw, err := json.Marshal(snap)
	assert.NoError(t, err)

	var decoded struct {
		Bids [][2]string `json:"bids"`
		Asks [][2]string `json:"asks"`
	}
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, [][2]string{{"100", "5"}}, decoded.Bids)
	assert.Empty(t, decoded.Asks)
}
