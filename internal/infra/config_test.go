package infra

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `
app:
  name: nexchain-live
  version: 0.1.0
feed:
  ws_url: wss://stream.example.com/stream
  instruments: [btcusdt, ethusdt]
  flush_interval_ms: 1000
orders:
  base_url: http://localhost:8090
  owner_id: user-1
logging:
  level: debug
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if len(cfg.Feed.Instruments) != 2 {
		t.Errorf("got %d instruments, want 2", len(cfg.Feed.Instruments))
	}
	if cfg.FlushInterval() != time.Second {
		t.Errorf("FlushInterval = %s, want 1s", cfg.FlushInterval())
	}

	// Defaults fill the omitted fields
	if cfg.ReconnectDelay() != 3*time.Second {
		t.Errorf("ReconnectDelay = %s, want 3s", cfg.ReconnectDelay())
	}
	if cfg.PollInterval() != 10*time.Second {
		t.Errorf("PollInterval = %s, want 10s", cfg.PollInterval())
	}
	if cfg.ExecuteTimeout() != 15*time.Second {
		t.Errorf("ExecuteTimeout = %s, want 15s", cfg.ExecuteTimeout())
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("NEXCHAIN_ORDERS_OWNER_ID", "user-from-env")

	cfg, err := LoadConfig(writeTestConfig(t, testYAML))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Orders.OwnerID != "user-from-env" {
		t.Errorf("OwnerID = %q, want env override to win", cfg.Orders.OwnerID)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad ws url", `
feed:
  ws_url: http://not-a-ws-url
  instruments: [btcusdt]
orders:
  base_url: http://localhost:8090
  owner_id: u
`},
		{"no instruments", `
feed:
  ws_url: wss://stream.example.com/stream
  instruments: []
orders:
  base_url: http://localhost:8090
  owner_id: u
`},
		{"no owner", `
feed:
  ws_url: wss://stream.example.com/stream
  instruments: [btcusdt]
orders:
  base_url: http://localhost:8090
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeTestConfig(t, tt.yaml)); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
