// Package config loads and watches the packetd configuration.
package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/dherrin/packetd/pkg/dgram"
)

// Config holds the global configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" yaml:"ratelimit"`
	Metrics   MetricsConfig   `mapstructure:"metrics" yaml:"metrics"`
	Compress  CompressConfig  `mapstructure:"compress" yaml:"compress"`
}

// ServerConfig holds the dispatch server configuration
type ServerConfig struct {
	// Addr is the UDP bind address.
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Workers is the worker-range value: a single integer disables pooling,
	// "lo:hi" enables the distribution scheduler over those slots.
	Workers string `mapstructure:"workers" yaml:"workers"`
	// ReadBuffer is the receive buffer size in bytes.
	ReadBuffer int `mapstructure:"read_buffer" yaml:"read_buffer"`
}

// WorkerRange parses and validates the configured worker range.
func (c ServerConfig) WorkerRange() (dgram.Range, error) {
	return dgram.ParseRange(c.Workers)
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	Path  string `mapstructure:"path" yaml:"path"`
}

// RateLimitConfig throttles packet intake when enabled
type RateLimitConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Limit   int  `mapstructure:"limit" yaml:"limit"` // packets per second
	Burst   int  `mapstructure:"burst" yaml:"burst"`
}

// MetricsConfig exposes Prometheus metrics when enabled
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"` // metrics endpoint address
}

// CompressConfig enables transparent payload decompression when enabled
type CompressConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// Validate checks cross-field constraints before the app boots on them.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr must not be empty")
	}
	if _, err := c.Server.WorkerRange(); err != nil {
		return fmt.Errorf("server.workers: %w", err)
	}
	if c.RateLimit.Enabled && c.RateLimit.Limit <= 0 {
		return errors.New("ratelimit.limit must be positive when enabled")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return errors.New("metrics.addr must not be empty when enabled")
	}
	return nil
}

// Manager defines the configuration manager interface
type Manager interface {
	Load() error
	GetConfig() *Config
	Watch(onChange func(newConfig *Config))
}

type viperManager struct {
	v      *viper.Viper
	config *Config
	mu     sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configPath string) Manager {
	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.SetEnvPrefix("PACKETD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("server.addr", ":9090")
	v.SetDefault("server.workers", "1")
	v.SetDefault("server.read_buffer", 64*1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("ratelimit.burst", 1)
	v.SetDefault("metrics.addr", ":9091")

	return &viperManager{
		v:      v,
		config: &Config{},
	}
}

func (m *viperManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.v.ReadInConfig(); err != nil {
		// If config file not found, we can proceed with defaults/env
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := m.v.Unmarshal(m.config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return m.config.Validate()
}

func (m *viperManager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *viperManager) Watch(onChange func(newConfig *Config)) {
	m.v.OnConfigChange(func(e fsnotify.Event) {
		m.mu.Lock()
		if err := m.v.Unmarshal(m.config); err == nil {
			if onChange != nil {
				// Execute callback in a separate goroutine to avoid blocking
				go onChange(m.config)
			}
		}
		m.mu.Unlock()
	})
	m.v.WatchConfig()
}
