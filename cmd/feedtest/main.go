package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"nexchain_go/internal/domain"
	"nexchain_go/internal/feed"
)

// feedtest connects to a live ticker stream and prints whatever arrives,
// proving the subscribe handshake and the fixed-point parse path without
// the rest of the system.
func main() {
	url := flag.String("url", "wss://stream.binance.com:9443/stream", "combined stream endpoint")
	symbols := flag.String("symbols", "btcusdt,ethusdt", "comma-separated instruments")
	duration := flag.Duration("for", 15*time.Second, "how long to listen")
	flag.Parse()

	instruments := strings.Split(*symbols, ",")

	fmt.Println("=== NexChain Feed Probe ===")
	fmt.Printf("endpoint:    %s\n", *url)
	fmt.Printf("instruments: %s\n", strings.Join(instruments, ", "))
	fmt.Println()

	inbox := make(chan *domain.PriceTick, 256)
	worker := feed.NewWorker(*url, instruments, 3*time.Second, inbox)

	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	if err := worker.Connect(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "connect failed: %v\n", err)
		os.Exit(1)
	}
	defer worker.Disconnect()

	count := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			fmt.Printf("✅ received %d ticks, all prices parsed as int64 micros\n", count)
			return
		case tick := <-inbox:
			count++
			arrow := "▼"
			if tick.IsUp() {
				arrow = "▲"
			}
			fmt.Printf("%s %-10s last=$%s (%d micros) 24h=%s%%\n",
				arrow, tick.Symbol, tick.LastMicros, int64(tick.LastMicros), tick.ChangePct24h)
			domain.ReleaseTick(tick)
		}
	}
}
