package app

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"nexchain_go/internal/domain"
	"nexchain_go/internal/infra"
	"nexchain_go/internal/storage"
)

// Bootstrap orchestrates the application startup sequence.
type Bootstrap struct {
	Config *infra.Config
	Store  *storage.Store

	unlock func()
}

// NewBootstrap creates a new Bootstrap instance.
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize loads configuration and installs the process-wide logger.
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping NexChain...")

	// Runtime warmup (GC optimization)
	domain.WarmupTicks()

	cfg, err := infra.LoadConfig(infra.ResolveConfigPath())
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	slog.Info("✅ Configuration loaded",
		"app", cfg.App.Name,
		"instruments", len(cfg.Feed.Instruments))
	return nil
}

// InitStore opens the SQLite order store under the workspace directory.
// A lock file blocks a second process from opening the same database.
func (b *Bootstrap) InitStore() error {
	workDir := infra.GetWorkspaceDir()
	dataDir := filepath.Join(workDir, "data")

	if err := infra.EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	unlock, err := infra.CreateLockFile(workDir)
	if err != nil {
		return err
	}
	b.unlock = unlock

	dbPath := filepath.Join(dataDir, "orders.db")
	store, err := storage.NewStore(dbPath)
	if err != nil {
		unlock()
		return err
	}
	b.Store = store

	slog.Info("✅ Order store initialized (WAL-mode)", "path", dbPath)
	return nil
}

// Close releases the store and the instance lock.
func (b *Bootstrap) Close() {
	if b.Store != nil {
		b.Store.Close()
	}
	if b.unlock != nil {
		b.unlock()
	}
}
