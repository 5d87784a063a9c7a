package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"nexchain_go/internal/alerts"
	"nexchain_go/internal/app"
	"nexchain_go/internal/domain"
	"nexchain_go/internal/feed"
	"nexchain_go/internal/orders"
	"nexchain_go/internal/ticker"
	"nexchain_go/pkg/quant"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Ticker ingestion: one websocket feed, buffered writes, fixed flush
	svc := ticker.NewService(cfg.FlushInterval(), func(instruments []string, inbox chan<- *domain.PriceTick) ticker.Connector {
		return feed.NewWorker(cfg.Feed.WSURL, instruments, cfg.ReconnectDelay(), inbox)
	})
	if err := svc.Start(ctx, cfg.Feed.Instruments); err != nil {
		slog.Error("❌ Failed to start ticker service", slog.Any("error", err))
		os.Exit(1)
	}
	defer svc.Stop()
	slog.InfoContext(ctx, "✅ Ticker service started", slog.Int("instruments", len(cfg.Feed.Instruments)))

	// 5. Pending order evaluator on the published snapshots
	ordersClient := orders.NewClient(cfg.Orders.BaseURL, cfg.ExecuteTimeout(), cfg.Orders.RequestsPerSec)
	evaluator := orders.NewEvaluator(ordersClient, cfg.Orders.OwnerID, cfg.ExecuteTimeout(), cfg.PollInterval())
	go evaluator.Run(ctx, svc.Subscribe())
	slog.InfoContext(ctx, "✅ Order evaluator started", slog.String("owner", cfg.Orders.OwnerID))

	// 6. Price alert watcher on its own snapshot stream
	alertsClient := alerts.NewClient(cfg.Orders.BaseURL, cfg.ExecuteTimeout(), cfg.Orders.RequestsPerSec)
	watcher := alerts.NewWatcher(alertsClient, cfg.Orders.OwnerID, cfg.PollInterval())
	watcher.Notify = func(a domain.AlertConfig, price quant.PriceMicros) {
		slog.Info("🔔 Price alert", "symbol", a.Symbol, "target", a.TargetMicros, "price", price)
	}
	go watcher.Run(ctx, svc.Subscribe())
	slog.InfoContext(ctx, "✅ Alert watcher started")

	slog.InfoContext(ctx, "✨ NexChain live sync fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
