package feed

import "encoding/json"

// subscribeRequest is the combined-stream subscription frame.
type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

// streamFrame wraps every message on a combined-stream socket.
type streamFrame struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// tickerPayload is the venue's 24h rolling-window ticker message.
// Numeric fields arrive as strings; json.Number keeps them off float64.
type tickerPayload struct {
	Event       string      `json:"e"` // "24hrTicker"
	EventTimeMS int64       `json:"E"`
	Symbol      string      `json:"s"`
	LastPrice   json.Number `json:"c"`
	PriceChange json.Number `json:"p"`
	ChangePct   json.Number `json:"P"`
	High        json.Number `json:"h"`
	Low         json.Number `json:"l"`
	Volume      json.Number `json:"v"`
	QuoteVolume json.Number `json:"q"`
}

const tickerEvent = "24hrTicker"

// streamName returns the per-instrument ticker channel name.
func streamName(symbol string) string {
	return symbol + "@ticker"
}
