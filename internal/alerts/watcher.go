package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/pkg/quant"
)

// Lister is the alert-service surface the watcher needs.
type Lister interface {
	List(ctx context.Context, ownerID string) ([]*domain.AlertConfig, error)
	Delete(ctx context.Context, alertID string) error
}

// Notifier receives fired alerts. The watcher guarantees at most one
// call per alert.
type Notifier func(alert domain.AlertConfig, price quant.PriceMicros)

// Watcher holds a user's armed alerts and fires them against published
// price snapshots. An alert is one-shot: firing deactivates it locally
// before the notification goes out, so a repeat snapshot at the same
// price cannot fire it twice, then the alert is deleted from the
// service in the background.
type Watcher struct {
	client       Lister
	ownerID      string
	pollInterval time.Duration

	mu    sync.Mutex
	cache map[string]*domain.AlertConfig

	fireWG sync.WaitGroup

	Notify Notifier
}

// NewWatcher creates a watcher polling the alert service every pollInterval.
func NewWatcher(client Lister, ownerID string, pollInterval time.Duration) *Watcher {
	if pollInterval <= 0 {
		pollInterval = 30 * time.Second
	}
	return &Watcher{
		client:       client,
		ownerID:      ownerID,
		pollInterval: pollInterval,
		cache:        make(map[string]*domain.AlertConfig),
	}
}

// Refresh replaces the cache with the service's current alert set.
// An alert already fired locally stays inactive even if the delete has
// not landed yet, so a slow delete cannot re-arm it.
func (w *Watcher) Refresh(ctx context.Context) error {
	fetched, err := w.client.List(ctx, w.ownerID)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	next := make(map[string]*domain.AlertConfig, len(fetched))
	for _, a := range fetched {
		if prev, ok := w.cache[a.ID]; ok && !prev.IsActive() {
			a.SetActive(false)
		}
		next[a.ID] = a
	}
	w.cache = next
	return nil
}

// Evaluate fires every active alert whose condition the snapshot satisfies.
func (w *Watcher) Evaluate(ctx context.Context, table domain.LivePriceTable) {
	type firing struct {
		alert domain.AlertConfig
		price quant.PriceMicros
	}
	var fired []firing

	w.mu.Lock()
	for _, a := range w.cache {
		tick, ok := table[a.Symbol]
		if !ok {
			continue
		}
		if a.CheckCondition(tick.LastMicros) {
			a.SetActive(false)
			fired = append(fired, firing{alert: *a, price: tick.LastMicros})
		}
	}
	w.mu.Unlock()

	for _, f := range fired {
		slog.Info("Price alert fired",
			"alert", f.alert.ID, "symbol", f.alert.Symbol,
			"target", f.alert.TargetMicros, "price", f.price)
		if w.Notify != nil {
			w.Notify(f.alert, f.price)
		}

		w.fireWG.Add(1)
		go func(id string) {
			defer w.fireWG.Done()
			callCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			defer cancel()
			if err := w.client.Delete(callCtx, id); err != nil {
				slog.Warn("Failed to delete fired alert", "alert", id, "err", err)
				return
			}
			w.mu.Lock()
			delete(w.cache, id)
			w.mu.Unlock()
		}(f.alert.ID)
	}
}

// Active returns the alerts still armed.
func (w *Watcher) Active() []domain.AlertConfig {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]domain.AlertConfig, 0, len(w.cache))
	for _, a := range w.cache {
		if a.IsActive() {
			out = append(out, *a)
		}
	}
	return out
}

// Run polls the alert service and evaluates each published snapshot
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, snapshots <-chan domain.LivePriceTable) {
	if err := w.Refresh(ctx); err != nil {
		slog.Warn("Initial alert refresh failed", "err", err)
	}

	poll := time.NewTicker(w.pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			w.fireWG.Wait()
			return
		case table, ok := <-snapshots:
			if !ok {
				w.fireWG.Wait()
				return
			}
			w.Evaluate(ctx, table)
		case <-poll.C:
			if err := w.Refresh(ctx); err != nil {
				slog.Warn("Alert refresh failed", "err", err)
			}
		}
	}
}
