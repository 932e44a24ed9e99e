// Package config loads the TOML files of mib-cli and mibd.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pior/wifimib"
	"github.com/pior/wifimib/mib"
	"github.com/rs/zerolog"
)

// ClientConfig configures mib-cli.
type ClientConfig struct {
	Servers             []string
	Timeout             time.Duration
	DialTimeout         time.Duration
	MaxConns            int32
	MaxConnLifetime     time.Duration
	MaxConnIdleTime     time.Duration
	HealthCheckInterval time.Duration
	Pool                string // "channel" or "puddle"
	CircuitBreaker      CircuitBreakerConfig
	LogLevel            string
}

type CircuitBreakerConfig struct {
	Enabled     bool
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Servers:     []string{"127.0.0.1:5065"},
		Timeout:     2 * time.Second,
		DialTimeout: time.Second,
		MaxConns:    4,
		Pool:        "channel",
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
		},
		LogLevel: "warn",
	}
}

type clientFile struct {
	Servers             []string `toml:"servers"`
	Timeout             string   `toml:"timeout"`
	DialTimeout         string   `toml:"dial_timeout"`
	MaxConns            int32    `toml:"max_conns"`
	MaxConnLifetime     string   `toml:"max_conn_lifetime"`
	MaxConnIdleTime     string   `toml:"max_conn_idle_time"`
	HealthCheckInterval string   `toml:"health_check_interval"`
	Pool                string   `toml:"pool"`
	LogLevel            string   `toml:"log_level"`
	CircuitBreaker      struct {
		Enabled     bool   `toml:"enabled"`
		MaxRequests uint32 `toml:"max_requests"`
		Interval    string `toml:"interval"`
		Timeout     string `toml:"timeout"`
	} `toml:"circuit_breaker"`
}

// LoadClientConfig overlays the file at path on DefaultClientConfig.
func LoadClientConfig(path string) (ClientConfig, error) {
	cfg := DefaultClientConfig()

	var raw clientFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}

	if meta.IsDefined("servers") {
		cfg.Servers = normalizeList(raw.Servers)
	}
	if meta.IsDefined("max_conns") {
		cfg.MaxConns = raw.MaxConns
	}
	if meta.IsDefined("pool") {
		cfg.Pool = strings.ToLower(strings.TrimSpace(raw.Pool))
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("circuit_breaker", "enabled") {
		cfg.CircuitBreaker.Enabled = raw.CircuitBreaker.Enabled
	}
	if meta.IsDefined("circuit_breaker", "max_requests") {
		cfg.CircuitBreaker.MaxRequests = raw.CircuitBreaker.MaxRequests
	}

	durations := []struct {
		key []string
		raw string
		dst *time.Duration
	}{
		{[]string{"timeout"}, raw.Timeout, &cfg.Timeout},
		{[]string{"dial_timeout"}, raw.DialTimeout, &cfg.DialTimeout},
		{[]string{"max_conn_lifetime"}, raw.MaxConnLifetime, &cfg.MaxConnLifetime},
		{[]string{"max_conn_idle_time"}, raw.MaxConnIdleTime, &cfg.MaxConnIdleTime},
		{[]string{"health_check_interval"}, raw.HealthCheckInterval, &cfg.HealthCheckInterval},
		{[]string{"circuit_breaker", "interval"}, raw.CircuitBreaker.Interval, &cfg.CircuitBreaker.Interval},
		{[]string{"circuit_breaker", "timeout"}, raw.CircuitBreaker.Timeout, &cfg.CircuitBreaker.Timeout},
	}
	for _, d := range durations {
		if !meta.IsDefined(d.key...) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return ClientConfig{}, fmt.Errorf("parse %s: %w", strings.Join(d.key, "."), err)
		}
		*d.dst = v
	}

	if err := ValidateClientConfig(cfg); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

func ValidateClientConfig(cfg ClientConfig) error {
	if len(cfg.Servers) == 0 {
		return fmt.Errorf("client config missing servers")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("client config timeout must be positive")
	}
	if cfg.MaxConns <= 0 {
		return fmt.Errorf("client config max_conns must be positive")
	}
	switch cfg.Pool {
	case "channel", "puddle":
	default:
		return fmt.Errorf("client config pool must be channel or puddle, got %q", cfg.Pool)
	}
	return nil
}

// ClientOptions builds the wifimib configuration described by cfg.
func (cfg ClientConfig) ClientOptions(logger *zerolog.Logger) wifimib.Config {
	opts := wifimib.Config{
		MaxSize:             cfg.MaxConns,
		MaxConnLifetime:     cfg.MaxConnLifetime,
		MaxConnIdleTime:     cfg.MaxConnIdleTime,
		HealthCheckInterval: cfg.HealthCheckInterval,
		Logger:              logger,
	}
	if cfg.DialTimeout > 0 {
		opts.Dialer = &net.Dialer{Timeout: cfg.DialTimeout}
	}
	if cfg.Pool == "puddle" {
		opts.Pool = wifimib.NewPuddlePool
	}
	if cfg.CircuitBreaker.Enabled {
		cb := cfg.CircuitBreaker
		opts.NewCircuitBreaker = wifimib.NewCircuitBreakerConfig(cb.MaxRequests, cb.Interval, cb.Timeout, logger)
	}
	return opts
}

// SimConfig configures mibd.
type SimConfig struct {
	Addr     string
	DataDir  string
	ReadOnly []uint16
	LogLevel string
	Entries  []EntryConfig
}

// EntryConfig is an entry loaded into the simulator at startup.
// Key uses the mib.ParseKey format, Value the mib.ParseValue one.
type EntryConfig struct {
	Key   string `toml:"key"`
	Type  string `toml:"type"`
	Value string `toml:"value"`
}

func DefaultSimConfig() SimConfig {
	return SimConfig{
		Addr:     "127.0.0.1:5065",
		LogLevel: "info",
	}
}

type simFile struct {
	Addr     string        `toml:"addr"`
	DataDir  string        `toml:"data_dir"`
	ReadOnly []string      `toml:"read_only"`
	LogLevel string        `toml:"log_level"`
	Entries  []EntryConfig `toml:"entries"`
}

// LoadSimConfig overlays the file at path on DefaultSimConfig.
func LoadSimConfig(path string) (SimConfig, error) {
	cfg := DefaultSimConfig()

	var raw simFile
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return SimConfig{}, fmt.Errorf("load simulator config: %w", err)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("data_dir") {
		cfg.DataDir = strings.TrimSpace(raw.DataDir)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("read_only") {
		for _, s := range raw.ReadOnly {
			psid, err := strconv.ParseUint(strings.TrimSpace(s), 0, 16)
			if err != nil {
				return SimConfig{}, fmt.Errorf("parse read_only %q: %w", s, err)
			}
			cfg.ReadOnly = append(cfg.ReadOnly, uint16(psid))
		}
	}
	cfg.Entries = raw.Entries

	if err := ValidateSimConfig(cfg); err != nil {
		return SimConfig{}, err
	}
	return cfg, nil
}

func ValidateSimConfig(cfg SimConfig) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("simulator config missing addr")
	}
	if _, err := cfg.SeedEntries(); err != nil {
		return err
	}
	return nil
}

// SeedEntries parses the configured entries.
func (cfg SimConfig) SeedEntries() ([]mib.Entry, error) {
	entries := make([]mib.Entry, 0, len(cfg.Entries))
	for i, e := range cfg.Entries {
		key, err := mib.ParseKey(strings.TrimSpace(e.Key))
		if err != nil {
			return nil, fmt.Errorf("entry[%d] invalid key: %w", i, err)
		}
		typ, err := mib.ParseType(strings.TrimSpace(e.Type))
		if err != nil {
			return nil, fmt.Errorf("entry[%d] %v: %w", i, key, err)
		}
		if typ == mib.TypeNone {
			return nil, fmt.Errorf("entry[%d] %v: none cannot be stored", i, key)
		}
		value, err := mib.ParseValue(typ, e.Value)
		if err != nil {
			return nil, fmt.Errorf("entry[%d] %v: %w", i, key, err)
		}
		entries = append(entries, mib.Entry{Key: key, Value: value})
	}
	return entries, nil
}

func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
