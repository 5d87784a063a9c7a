package feed

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/internal/infra"
	"nexchain_go/pkg/quant"

	"github.com/gorilla/websocket"
)

// Worker maintains the single combined-stream ticker connection using
// BaseWSWorker. Every instrument's ticker channel rides on one socket.
type Worker struct {
	base    *infra.BaseWSWorker
	url     string
	symbols []string
	inbox   chan<- *domain.PriceTick
}

// NewWorker creates a feed worker subscribed to the given instruments.
func NewWorker(url string, symbols []string, reconnectDelay time.Duration, inbox chan<- *domain.PriceTick) *Worker {
	w := &Worker{
		url:     url,
		symbols: symbols,
		inbox:   inbox,
	}
	w.base = infra.NewBaseWSWorker(w)
	w.base.Reconnect = infra.ReconnectPolicy{Delay: reconnectDelay}
	return w
}

// ID returns the worker identifier.
func (w *Worker) ID() string { return "FEED" }

// GetURL returns the combined-stream endpoint.
func (w *Worker) GetURL() string { return w.url }

// Connect starts the WebSocket connection.
func (w *Worker) Connect(ctx context.Context) error {
	w.base.Start(ctx)
	return nil
}

// Disconnect terminates the connection.
func (w *Worker) Disconnect() {
	w.base.Stop()
}

// OnConnect subscribes to every instrument's ticker channel.
func (w *Worker) OnConnect(ctx context.Context, conn *websocket.Conn) error {
	params := make([]string, 0, len(w.symbols))
	for _, s := range w.symbols {
		params = append(params, streamName(strings.ToLower(s)))
	}

	req := subscribeRequest{Method: "SUBSCRIBE", Params: params, ID: 1}
	b, _ := json.Marshal(req)
	return w.base.Write(websocket.TextMessage, b)
}

// OnMessage decodes a combined-stream frame into a PriceTick.
// Malformed frames are dropped silently; parse failure is not fatal.
func (w *Worker) OnMessage(ctx context.Context, msg []byte) {
	var frame streamFrame
	if err := json.Unmarshal(msg, &frame); err != nil || len(frame.Data) == 0 {
		return
	}

	var payload tickerPayload
	if err := json.Unmarshal(frame.Data, &payload); err != nil || payload.Event != tickerEvent {
		return
	}
	if payload.Symbol == "" {
		return
	}

	// The last price gates trigger evaluation; a frame that cannot
	// produce a positive price is malformed and must not be published.
	last, err := quant.ParsePriceMicros(payload.LastPrice.String())
	if err != nil || last <= 0 {
		return
	}

	tick := domain.AcquireTick()
	// Table keys, config instruments and order symbols share lowercase.
	tick.Symbol = strings.ToLower(payload.Symbol)
	tick.LastMicros = last
	tick.ChangePct24h = quant.ToPercentMicrosStr(payload.ChangePct.String())
	tick.ChangeMicros24h = quant.ToPriceMicrosStr(payload.PriceChange.String())
	tick.HighMicros24h = quant.ToPriceMicrosStr(payload.High.String())
	tick.LowMicros24h = quant.ToPriceMicrosStr(payload.Low.String())
	tick.VolumeSats = quant.ToQtySatsStr(payload.Volume.String())
	tick.QuoteVolumeMicros = int64(quant.ToPriceMicrosStr(payload.QuoteVolume.String()))
	tick.Ts = quant.MillisToTimeStamp(payload.EventTimeMS)

	select {
	case w.inbox <- tick:
	default:
		// Drop if the inbox is full, but release to the pool to prevent a leak.
		domain.ReleaseTick(tick)
	}
}

// OnPing is a no-op: the venue sends protocol-level pings and the
// websocket library answers them with pongs during reads.
func (w *Worker) OnPing(ctx context.Context, conn *websocket.Conn) error {
	return nil
}
