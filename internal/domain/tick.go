package domain

import (
	"sync"

	"nexchain_go/pkg/quant"
)

// PriceTick is one inbound 24h-ticker update for a single instrument.
// A tick is an immutable snapshot; the next tick for the same symbol
// supersedes it wholesale, fields are never merged.
type PriceTick struct {
	Symbol            string              `json:"symbol"`
	LastMicros        quant.PriceMicros   `json:"last"`
	ChangePct24h      quant.PercentMicros `json:"change_pct_24h"`
	ChangeMicros24h   quant.PriceMicros   `json:"change_24h"`
	HighMicros24h     quant.PriceMicros   `json:"high_24h"`
	LowMicros24h      quant.PriceMicros   `json:"low_24h"`
	VolumeSats        quant.QtySats       `json:"volume"`
	QuoteVolumeMicros int64               `json:"quote_volume"`
	Ts                quant.TimeStamp     `json:"ts"`
}

// IsUp reports whether the instrument moved up over the last 24h.
func (t *PriceTick) IsUp() bool {
	return t.ChangePct24h > 0
}

// LivePriceTable maps symbol -> latest published tick. At most one entry
// per symbol; entries are replaced wholesale on flush, never mutated.
type LivePriceTable map[string]PriceTick

// Clone returns an independent copy safe to hand to consumers.
func (t LivePriceTable) Clone() LivePriceTable {
	out := make(LivePriceTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// tickPool recycles PriceTick events on the feed -> ingestion hotpath.
var tickPool = sync.Pool{
	New: func() any { return &PriceTick{} },
}

// AcquireTick returns a zeroed tick from the pool.
func AcquireTick() *PriceTick {
	return tickPool.Get().(*PriceTick)
}

// ReleaseTick resets the tick and returns it to the pool.
func ReleaseTick(t *PriceTick) {
	*t = PriceTick{}
	tickPool.Put(t)
}

// WarmupTicks pre-populates the pool to avoid first-burst allocations.
func WarmupTicks() {
	ticks := make([]*PriceTick, 0, 64)
	for i := 0; i < 64; i++ {
		ticks = append(ticks, AcquireTick())
	}
	for _, t := range ticks {
		ReleaseTick(t)
	}
}
