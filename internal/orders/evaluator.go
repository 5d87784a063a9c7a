package orders

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/pkg/quant"
)

// Executor is the slice of the persistence client the evaluator needs.
type Executor interface {
	ListPending(ctx context.Context, ownerID string) ([]domain.PendingOrder, error)
	Execute(ctx context.Context, orderID string, price quant.PriceMicros) (*domain.PendingOrder, error)
	Cancel(ctx context.Context, orderID string) error
}

// cachedOrder is a read-only copy of a server-side order plus the local
// marks the evaluator maintains on it.
type cachedOrder struct {
	order domain.PendingOrder
	kind  domain.TriggerKind

	// inFlight guards against duplicate execute calls for the same order
	// while one is outstanding.
	inFlight bool

	// optimisticRemoval tags an order whose cancel request is on the wire.
	// Tagged orders are skipped by evaluation; a failed cancel rolls the
	// tag back, a successful one drops the entry.
	optimisticRemoval bool
}

// Evaluator decides, per pending conditional order, whether current market
// conditions satisfy its trigger, and requests execution exactly once per
// satisfied order. The pending cache is a read-only mirror of server
// state, reconciled on every refresh.
type Evaluator struct {
	client       Executor
	ownerID      string
	execTimeout  time.Duration
	pollInterval time.Duration

	mu    sync.Mutex
	cache map[string]*cachedOrder

	refreshCh chan struct{}
	execWG    sync.WaitGroup

	// OnExecuted, if set, is invoked after a confirmed execution.
	OnExecuted func(domain.PendingOrder)
}

// NewEvaluator creates an evaluator for one owner's pending orders.
func NewEvaluator(client Executor, ownerID string, execTimeout, pollInterval time.Duration) *Evaluator {
	if execTimeout <= 0 {
		execTimeout = 15 * time.Second
	}
	if pollInterval <= 0 {
		pollInterval = 10 * time.Second
	}
	return &Evaluator{
		client:       client,
		ownerID:      ownerID,
		execTimeout:  execTimeout,
		pollInterval: pollInterval,
		cache:        make(map[string]*cachedOrder),
		refreshCh:    make(chan struct{}, 1),
	}
}

// RefreshOrders fetches the owner's pending orders and replaces the local
// cache wholesale. Local marks survive for orders still present server-side.
func (e *Evaluator) RefreshOrders(ctx context.Context) error {
	fetched, err := e.client.ListPending(ctx, e.ownerID)
	if err != nil {
		return err
	}

	next := make(map[string]*cachedOrder, len(fetched))
	for i := range fetched {
		o := fetched[i]
		if !o.IsPending() {
			continue
		}
		kind, err := domain.ResolveTrigger(&o)
		if err != nil {
			slog.Warn("Skipping unresolvable order", "order", o.ID, "err", err)
			continue
		}
		next[o.ID] = &cachedOrder{order: o, kind: kind}
	}

	e.mu.Lock()
	for id, prev := range e.cache {
		if cur, ok := next[id]; ok {
			cur.inFlight = prev.inFlight
			cur.optimisticRemoval = prev.optimisticRemoval
		}
	}
	e.cache = next
	e.mu.Unlock()

	return nil
}

// Evaluate applies every cached order's trigger against the published
// table. Orders whose instrument has no table entry are skipped this
// cycle. A satisfied order is marked in-flight and executed exactly once.
func (e *Evaluator) Evaluate(ctx context.Context, table domain.LivePriceTable) {
	type firing struct {
		id    string
		price quant.PriceMicros
	}
	var firings []firing

	e.mu.Lock()
	for id, c := range e.cache {
		if c.inFlight || c.optimisticRemoval {
			continue
		}
		tick, ok := table[c.order.Symbol]
		if !ok {
			continue // not yet evaluable
		}
		if c.kind.Satisfied(&c.order, tick.LastMicros) {
			c.inFlight = true
			firings = append(firings, firing{id: id, price: tick.LastMicros})
		}
	}
	e.mu.Unlock()

	for _, f := range firings {
		e.execWG.Add(1)
		go e.execute(ctx, f.id, f.price)
	}
}

func (e *Evaluator) execute(ctx context.Context, orderID string, price quant.PriceMicros) {
	defer e.execWG.Done()

	callCtx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	executed, err := e.client.Execute(callCtx, orderID, price)
	if err != nil {
		slog.Warn("Order execution failed, will retry next cycle",
			"order", orderID, "err", err)
		e.mu.Lock()
		if c, ok := e.cache[orderID]; ok {
			c.inFlight = false
		}
		e.mu.Unlock()
		return
	}

	slog.Info("Order executed", "order", orderID, "price", price)

	e.mu.Lock()
	delete(e.cache, orderID)
	e.mu.Unlock()

	if e.OnExecuted != nil && executed != nil {
		e.OnExecuted(*executed)
	}

	// Authoritative state now lives server-side; reconcile soon.
	e.RequestRefresh()
}

// Cancel requests cancellation. The cache entry is tagged for optimistic
// removal immediately and dropped on success; a failed cancel rolls the
// tag back so the order becomes evaluable again.
func (e *Evaluator) Cancel(ctx context.Context, orderID string) error {
	e.mu.Lock()
	if c, ok := e.cache[orderID]; ok {
		c.optimisticRemoval = true
	}
	e.mu.Unlock()

	callCtx, cancel := context.WithTimeout(ctx, e.execTimeout)
	defer cancel()

	if err := e.client.Cancel(callCtx, orderID); err != nil {
		e.mu.Lock()
		if c, ok := e.cache[orderID]; ok {
			c.optimisticRemoval = false
		}
		e.mu.Unlock()
		return err
	}

	e.mu.Lock()
	delete(e.cache, orderID)
	e.mu.Unlock()
	return nil
}

// RequestRefresh signals the run loop to refresh outside the poll cadence.
func (e *Evaluator) RequestRefresh() {
	select {
	case e.refreshCh <- struct{}{}:
	default:
	}
}

// Pending returns a read-only copy of the cached pending orders,
// excluding entries tagged for optimistic removal.
func (e *Evaluator) Pending() []domain.PendingOrder {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]domain.PendingOrder, 0, len(e.cache))
	for _, c := range e.cache {
		if c.optimisticRemoval {
			continue
		}
		out = append(out, c.order)
	}
	return out
}

// Run glues the evaluator to its inputs: the published-table subscription
// and the poll/refresh timers. It blocks until ctx is cancelled.
func (e *Evaluator) Run(ctx context.Context, snapshots <-chan domain.LivePriceTable) {
	if err := e.RefreshOrders(ctx); err != nil {
		slog.Warn("Initial order refresh failed", "err", err)
	}

	poll := time.NewTicker(e.pollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			e.execWG.Wait()
			return
		case table, ok := <-snapshots:
			if !ok {
				e.execWG.Wait()
				return
			}
			e.Evaluate(ctx, table)
		case <-poll.C:
			if err := e.RefreshOrders(ctx); err != nil {
				slog.Warn("Order refresh failed", "err", err)
			}
		case <-e.refreshCh:
			if err := e.RefreshOrders(ctx); err != nil {
				slog.Warn("Order refresh failed", "err", err)
			}
		}
	}
}
