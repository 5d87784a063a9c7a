package ticker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/pkg/quant"
)

// fakeConnector captures the inbox so tests can inject ticks directly.
type fakeConnector struct {
	inbox       chan<- *domain.PriceTick
	instruments []string
	connects    int32
	disconnects int32
}

func (f *fakeConnector) Connect(ctx context.Context) error {
	atomic.AddInt32(&f.connects, 1)
	return nil
}

func (f *fakeConnector) Disconnect() {
	atomic.AddInt32(&f.disconnects, 1)
}

type fakeFeed struct {
	conns []*fakeConnector
}

func (f *fakeFeed) factory(instruments []string, inbox chan<- *domain.PriceTick) Connector {
	c := &fakeConnector{inbox: inbox, instruments: instruments}
	f.conns = append(f.conns, c)
	return c
}

func (f *fakeFeed) send(symbol string, priceMicros quant.PriceMicros) {
	tick := domain.AcquireTick()
	tick.Symbol = symbol
	tick.LastMicros = priceMicros
	f.conns[len(f.conns)-1].inbox <- tick
}

func waitForSnapshot(t *testing.T, sub <-chan domain.LivePriceTable) domain.LivePriceTable {
	t.Helper()
	select {
	case snap := <-sub:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("no flush observed")
		return nil
	}
}

func TestService_LastWriteWinsWithinFlushWindow(t *testing.T) {
	feed := &fakeFeed{}
	svc := NewService(50*time.Millisecond, feed.factory)
	sub := svc.Subscribe()

	if err := svc.Start(context.Background(), []string{"bitcoin"}); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()

	feed.send("bitcoin", 61000*quant.PriceScale)
	feed.send("bitcoin", 60950*quant.PriceScale)
	feed.send("bitcoin", 61010*quant.PriceScale)

	snap := waitForSnapshot(t, sub)
	if got := snap["bitcoin"].LastMicros; got != 61010*quant.PriceScale {
		t.Errorf("published price = %s, want 61010", got)
	}
}

func TestService_FlushMergesWithPriorState(t *testing.T) {
	feed := &fakeFeed{}
	svc := NewService(30*time.Millisecond, feed.factory)
	sub := svc.Subscribe()

	if err := svc.Start(context.Background(), []string{"btcusdt", "ethusdt"}); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()

	feed.send("BTCUSDT", 61000*quant.PriceScale)
	first := waitForSnapshot(t, sub)
	if _, ok := first["BTCUSDT"]; !ok {
		t.Fatal("first flush missing BTCUSDT")
	}

	feed.send("ETHUSDT", 3000*quant.PriceScale)
	var merged domain.LivePriceTable
	for {
		merged = waitForSnapshot(t, sub)
		if _, ok := merged["ETHUSDT"]; ok {
			break
		}
	}

	// Prior entry survives a flush that only carried the other instrument
	if got := merged["BTCUSDT"].LastMicros; got != 61000*quant.PriceScale {
		t.Errorf("BTCUSDT = %s after merge, want 61000", got)
	}
	if got := merged["ETHUSDT"].LastMicros; got != 3000*quant.PriceScale {
		t.Errorf("ETHUSDT = %s after merge, want 3000", got)
	}
}

func TestService_StartIdempotentForSameSet(t *testing.T) {
	feed := &fakeFeed{}
	svc := NewService(time.Second, feed.factory)

	ctx := context.Background()
	if err := svc.Start(ctx, []string{"btcusdt", "ethusdt"}); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()

	// Same set, different order and casing: no reconnect
	if err := svc.Start(ctx, []string{"ETHUSDT", "btcusdt"}); err != nil {
		t.Fatal(err)
	}
	if len(feed.conns) != 1 {
		t.Errorf("expected 1 connector for identical set, got %d", len(feed.conns))
	}
}

func TestService_RestartsOnInstrumentSetChange(t *testing.T) {
	feed := &fakeFeed{}
	svc := NewService(time.Second, feed.factory)

	ctx := context.Background()
	if err := svc.Start(ctx, []string{"btcusdt"}); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()

	if err := svc.Start(ctx, []string{"btcusdt", "solusdt"}); err != nil {
		t.Fatal(err)
	}

	if len(feed.conns) != 2 {
		t.Fatalf("expected a second connector after set change, got %d", len(feed.conns))
	}
	if atomic.LoadInt32(&feed.conns[0].disconnects) != 1 {
		t.Error("old connector was not disconnected")
	}
	want := []string{"btcusdt", "solusdt"}
	got := feed.conns[1].instruments
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("new connector instruments = %v, want %v", got, want)
	}
}

func TestService_StopClearsStateAndIsReentrant(t *testing.T) {
	feed := &fakeFeed{}
	svc := NewService(20*time.Millisecond, feed.factory)
	sub := svc.Subscribe()

	if err := svc.Start(context.Background(), []string{"btcusdt"}); err != nil {
		t.Fatal(err)
	}

	feed.send("BTCUSDT", 61000*quant.PriceScale)
	waitForSnapshot(t, sub)

	svc.Stop()
	svc.Stop() // must be safe

	if len(svc.Snapshot()) != 0 {
		t.Error("published table should be cleared on teardown")
	}
}

func TestService_SnapshotIsACopy(t *testing.T) {
	feed := &fakeFeed{}
	svc := NewService(20*time.Millisecond, feed.factory)
	sub := svc.Subscribe()

	if err := svc.Start(context.Background(), []string{"btcusdt"}); err != nil {
		t.Fatal(err)
	}
	defer svc.Stop()

	feed.send("BTCUSDT", 61000*quant.PriceScale)
	waitForSnapshot(t, sub)

	snap := svc.Snapshot()
	snap["BTCUSDT"] = domain.PriceTick{Symbol: "BTCUSDT", LastMicros: 1}

	if got := svc.Snapshot()["BTCUSDT"].LastMicros; got != 61000*quant.PriceScale {
		t.Error("mutating a consumer snapshot leaked into the published table")
	}
}
