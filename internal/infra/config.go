package infra

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds every runtime setting. Values are loaded from YAML first,
// then overridden by NEXCHAIN_* environment variables.
type Config struct {
	App struct {
		Name    string `yaml:"name" envconfig:"app_name"`
		Version string `yaml:"version" envconfig:"app_version"`
	} `yaml:"app"`

	Feed struct {
		WSURL            string   `yaml:"ws_url" envconfig:"feed_ws_url"`
		Instruments      []string `yaml:"instruments" envconfig:"feed_instruments"`
		FlushIntervalMS  int      `yaml:"flush_interval_ms" envconfig:"feed_flush_interval_ms"`
		ReconnectDelayMS int      `yaml:"reconnect_delay_ms" envconfig:"feed_reconnect_delay_ms"`
	} `yaml:"feed"`

	Orders struct {
		BaseURL           string  `yaml:"base_url" envconfig:"orders_base_url"`
		OwnerID           string  `yaml:"owner_id" envconfig:"owner_id"`
		PollIntervalSec   int     `yaml:"poll_interval_sec" envconfig:"orders_poll_interval_sec"`
		ExecuteTimeoutSec int     `yaml:"execute_timeout_sec" envconfig:"orders_execute_timeout_sec"`
		RequestsPerSec    float64 `yaml:"requests_per_sec" envconfig:"orders_requests_per_sec"`
	} `yaml:"orders"`

	Server struct {
		ListenAddr     string   `yaml:"listen_addr" envconfig:"server_listen_addr"`
		AllowedOrigins []string `yaml:"allowed_origins" envconfig:"server_allowed_origins"`
	} `yaml:"server"`

	Logging struct {
		Level string `yaml:"level" envconfig:"log_level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the config file, then layers environment
// overrides on top. A missing .env file is not an error.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if err := envconfig.Process("nexchain", &cfg); err != nil {
		return nil, fmt.Errorf("env override failed: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "nexchain-live"
	}
	if c.Feed.FlushIntervalMS == 0 {
		c.Feed.FlushIntervalMS = 1000
	}
	if c.Feed.ReconnectDelayMS == 0 {
		c.Feed.ReconnectDelayMS = 3000
	}
	if c.Orders.PollIntervalSec == 0 {
		c.Orders.PollIntervalSec = 10
	}
	if c.Orders.ExecuteTimeoutSec == 0 {
		c.Orders.ExecuteTimeoutSec = 15
	}
	if c.Orders.RequestsPerSec == 0 {
		c.Orders.RequestsPerSec = 5
	}
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = ":8090"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Feed.WSURL == "" || (!strings.HasPrefix(c.Feed.WSURL, "ws://") && !strings.HasPrefix(c.Feed.WSURL, "wss://")) {
		return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
	}
	if len(c.Feed.Instruments) == 0 {
		return fmt.Errorf("at least one feed instrument is required")
	}
	if c.Feed.FlushIntervalMS <= 0 {
		return fmt.Errorf("flush interval must be positive")
	}
	if c.Feed.ReconnectDelayMS <= 0 {
		return fmt.Errorf("reconnect delay must be positive")
	}
	if c.Orders.BaseURL == "" {
		return fmt.Errorf("orders base URL is required")
	}
	if c.Orders.OwnerID == "" {
		return fmt.Errorf("orders owner id is required")
	}
	return nil
}

// FlushInterval returns the ticker flush cadence.
func (c *Config) FlushInterval() time.Duration {
	return time.Duration(c.Feed.FlushIntervalMS) * time.Millisecond
}

// ReconnectDelay returns the fixed feed reconnect delay.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.Feed.ReconnectDelayMS) * time.Millisecond
}

// PollInterval returns the pending-order poll cadence.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Orders.PollIntervalSec) * time.Second
}

// ExecuteTimeout returns the deadline applied to execute/cancel calls.
func (c *Config) ExecuteTimeout() time.Duration {
	return time.Duration(c.Orders.ExecuteTimeoutSec) * time.Second
}
