// Package ingest handles the market data feed and tick parsing.
package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/intrinsictime/engine/internal/store"
)

// bookTicker is the Binance bookTicker payload: best bid/ask for one symbol.
type bookTicker struct {
	UpdateID int64  `json:"u"`
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// streamEnvelope wraps payloads on combined streams.
type streamEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// subscribeReply is the acknowledgement sent for SUBSCRIBE requests.
type subscribeReply struct {
	Result json.RawMessage `json:"result"`
	ID     int64           `json:"id"`
}

// ParseTick parses a raw WebSocket message into a Tick. The second return
// value is false for messages that are not book ticker updates (subscribe
// acknowledgements, unknown payloads). Prices are converted to scaled
// integers at the given decimal scale; the tick time is the receive time,
// since the spot bookTicker stream carries no exchange timestamp.
func ParseTick(data []byte, scale int32, receivedMs int64) (store.Tick, bool, error) {
	payload := data

	// Combined streams wrap the payload in {"stream": ..., "data": ...}.
	var env streamEnvelope
	if err := json.Unmarshal(data, &env); err == nil && len(env.Data) > 0 {
		payload = env.Data
	}

	var bt bookTicker
	if err := json.Unmarshal(payload, &bt); err != nil {
		return store.Tick{}, false, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if bt.Symbol == "" || bt.BidPrice == "" || bt.AskPrice == "" {
		// Probably a subscribe acknowledgement; not an error.
		var ack subscribeReply
		if err := json.Unmarshal(payload, &ack); err == nil && ack.ID != 0 {
			return store.Tick{}, false, nil
		}
		return store.Tick{}, false, nil
	}

	bid, err := store.ScalePrice(bt.BidPrice, scale)
	if err != nil {
		return store.Tick{}, false, fmt.Errorf("bad bid for %s: %w", bt.Symbol, err)
	}
	ask, err := store.ScalePrice(bt.AskPrice, scale)
	if err != nil {
		return store.Tick{}, false, fmt.Errorf("bad ask for %s: %w", bt.Symbol, err)
	}

	return store.Tick{
		Symbol: bt.Symbol,
		Bid:    bid,
		Ask:    ask,
		Time:   receivedMs,
	}, true, nil
}
