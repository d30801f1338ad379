package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Sync       SyncConfig       `yaml:"sync"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Database   DatabaseConfig   `yaml:"database"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
	JWTSecret       string  `yaml:"jwt_secret"`
}

// SyncConfig holds the schedule sync loop configuration.
type SyncConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"` // Ignored by YAML parser
	Timezone        string        `yaml:"timezone"`
	// GraceMinutes of 0 (or omitted) selects the 15 minute default; set a
	// negative value for no grace at all.
	GraceMinutes    int           `yaml:"grace_minutes"`
	Grace           time.Duration `yaml:"-"` // Ignored by YAML parser

	// Upstream spellings of each canonical schedule status.
	StatusPendingValues    []string `yaml:"status_pending_values"`
	StatusInProgressValues []string `yaml:"status_in_progress_values"`
	StatusCompletedValues  []string `yaml:"status_completed_values"`
	StatusDelayedValues    []string `yaml:"status_delayed_values"`
}

// Location resolves the configured sync timezone, falling back to the server's
// local zone when it is unset or unknown. Both the sync loop and the API
// handlers classify against this zone so their views of "today" agree.
func (c SyncConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Warning: failed to load timezone %q: %v. Using system local time.", c.Timezone, err)
		return time.Local
	}
	return loc
}

// UpstreamConfig holds the schedule store / notification dispatcher connection settings.
type UpstreamConfig struct {
	BaseURL        string            `yaml:"base_url"`
	Token          string            `yaml:"token"`
	Headers        map[string]string `yaml:"headers"`
	PageSize       int               `yaml:"page_size"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Sync.IntervalSeconds <= 0 {
		cfg.Sync.IntervalSeconds = 60
	}
	cfg.Sync.Interval = time.Duration(cfg.Sync.IntervalSeconds) * time.Second

	if cfg.Sync.GraceMinutes == 0 {
		cfg.Sync.GraceMinutes = 15
	} else if cfg.Sync.GraceMinutes < 0 {
		cfg.Sync.GraceMinutes = 0
	}
	cfg.Sync.Grace = time.Duration(cfg.Sync.GraceMinutes) * time.Minute

	if len(cfg.Sync.StatusPendingValues) == 0 {
		cfg.Sync.StatusPendingValues = []string{"Pending"}
	}
	if len(cfg.Sync.StatusInProgressValues) == 0 {
		cfg.Sync.StatusInProgressValues = []string{"In Progress"}
	}
	if len(cfg.Sync.StatusCompletedValues) == 0 {
		cfg.Sync.StatusCompletedValues = []string{"Completed"}
	}
	if len(cfg.Sync.StatusDelayedValues) == 0 {
		cfg.Sync.StatusDelayedValues = []string{"Delayed"}
	}

	if cfg.Upstream.PageSize <= 0 {
		cfg.Upstream.PageSize = 100
	}
	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
