package ticker

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"nexchain_go/internal/domain"
)

// Connector is the streaming price-feed connection owned by the service.
type Connector interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// ConnectorFactory builds a connector subscribed to the given instruments,
// delivering ticks into inbox. Injected so tests can fake the feed.
type ConnectorFactory func(instruments []string, inbox chan<- *domain.PriceTick) Connector

const defaultInboxSize = 1024

// Service is the ticker ingestion loop. Inbound ticks accumulate in a
// write buffer keyed by instrument (last-write-wins) and are flushed into
// the published LivePriceTable on a fixed cadence, so consumers observe
// the flush rate rather than the raw message rate.
type Service struct {
	factory       ConnectorFactory
	flushInterval time.Duration

	mu          sync.Mutex // lifecycle state below
	running     bool
	instruments []string
	conn        Connector
	inbox       chan *domain.PriceTick
	cancel      context.CancelFunc
	wg          sync.WaitGroup

	pubMu     sync.RWMutex
	published domain.LivePriceTable

	subMu sync.Mutex
	subs  []chan domain.LivePriceTable
}

// NewService creates a stopped ingestion service.
func NewService(flushInterval time.Duration, factory ConnectorFactory) *Service {
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &Service{
		factory:       factory,
		flushInterval: flushInterval,
		published:     make(domain.LivePriceTable),
	}
}

// Start opens the feed connection for the given instrument set and runs
// the buffer/flush loop. Calling Start again with the same set is a no-op;
// a different set tears the connection down and reconnects.
func (s *Service) Start(ctx context.Context, instruments []string) error {
	set := normalize(instruments)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		if equalSets(s.instruments, set) {
			return nil
		}
		slog.Info("Instrument set changed, reconnecting", "old", len(s.instruments), "new", len(set))
		s.stopLocked()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.instruments = set
	s.inbox = make(chan *domain.PriceTick, defaultInboxSize)
	s.conn = s.factory(set, s.inbox)

	s.wg.Add(1)
	go s.run(loopCtx, s.inbox)

	if err := s.conn.Connect(loopCtx); err != nil {
		s.stopLocked()
		return err
	}

	s.running = true
	slog.Info("Ticker ingestion started", "instruments", len(set), "flush_interval", s.flushInterval)
	return nil
}

// Stop closes the connection, stops the flush loop and releases all held
// state. Safe to call multiple times.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Service) stopLocked() {
	if s.conn != nil {
		s.conn.Disconnect()
		s.conn = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.wg.Wait()

	s.pubMu.Lock()
	s.published = make(domain.LivePriceTable)
	s.pubMu.Unlock()

	s.running = false
	s.instruments = nil
	s.inbox = nil
}

// run owns the write buffer. It is the only goroutine touching it, which
// keeps the single-execution-context model without extra locking.
func (s *Service) run(ctx context.Context, inbox <-chan *domain.PriceTick) {
	defer s.wg.Done()

	buffer := make(map[string]domain.PriceTick)
	flush := time.NewTicker(s.flushInterval)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case tick := <-inbox:
			// Last-write-wins per instrument within a flush window;
			// intermediate ticks are not queued.
			buffer[tick.Symbol] = *tick
			domain.ReleaseTick(tick)
		case <-flush.C:
			if len(buffer) == 0 {
				continue
			}
			s.flush(buffer)
			for k := range buffer {
				delete(buffer, k)
			}
		}
	}
}

func (s *Service) flush(buffer map[string]domain.PriceTick) {
	s.pubMu.Lock()
	for sym, tick := range buffer {
		s.published[sym] = tick
	}
	snapshot := s.published.Clone()
	s.pubMu.Unlock()

	s.broadcast(snapshot)
}

// Snapshot returns a copy of the currently published table.
func (s *Service) Snapshot() domain.LivePriceTable {
	s.pubMu.RLock()
	defer s.pubMu.RUnlock()
	return s.published.Clone()
}

// Subscribe returns a channel receiving the published table after each
// flush. Delivery is latest-wins: a slow consumer only ever misses
// intermediate snapshots, never the freshest one.
func (s *Service) Subscribe() <-chan domain.LivePriceTable {
	ch := make(chan domain.LivePriceTable, 1)
	s.subMu.Lock()
	s.subs = append(s.subs, ch)
	s.subMu.Unlock()
	return ch
}

func (s *Service) broadcast(snapshot domain.LivePriceTable) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			// Replace the stale pending snapshot with the fresh one.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snapshot:
			default:
			}
		}
	}
}

func normalize(instruments []string) []string {
	seen := make(map[string]struct{}, len(instruments))
	out := make([]string, 0, len(instruments))
	for _, in := range instruments {
		sym := strings.ToLower(strings.TrimSpace(in))
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func equalSets(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
