package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClickHouseConfig holds the connection settings for the durable store.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// SinkConfig holds the flush thresholds for the batched sink. A flush is
// triggered when any one of them is reached.
type SinkConfig struct {
	MaxRows     int    `yaml:"max_rows"`
	MaxBytes    int    `yaml:"max_bytes"`
	FlushPeriod string `yaml:"flush_period"`
}

// CacheConfig bounds the IP-to-MAC learning table. A zero max_entries keeps
// every learned entry for the process lifetime.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// NATSConfig enables mirroring of canonical rows to a NATS subject.
type NATSConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// LogConfig selects the logging verbosity.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Config is the top-level configuration struct for the collector.
type Config struct {
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Sink       SinkConfig       `yaml:"sink"`
	Cache      CacheConfig      `yaml:"cache"`
	NATS       NATSConfig       `yaml:"nats"`
	Log        LogConfig        `yaml:"log"`
}

// Default returns the configuration used when no config file is present.
// The sink thresholds mirror a 1 MiB / 1000 row / 5 s inserter.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads the configuration from a YAML file and fills unset fields
// with their defaults.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.ClickHouse.Host == "" {
		c.ClickHouse.Host = "localhost"
	}
	if c.ClickHouse.Port == 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "default"
	}
	if c.ClickHouse.Username == "" {
		c.ClickHouse.Username = "default"
	}
	if c.Sink.MaxRows <= 0 {
		c.Sink.MaxRows = 1000
	}
	if c.Sink.MaxBytes <= 0 {
		c.Sink.MaxBytes = 1024 * 1024
	}
	if c.Sink.FlushPeriod == "" {
		c.Sink.FlushPeriod = "5s"
	}
	if c.NATS.URL == "" {
		c.NATS.URL = "nats://localhost:4222"
	}
	if c.NATS.Subject == "" {
		c.NATS.Subject = "flowsight.rows"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
