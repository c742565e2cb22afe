package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	// 1. Write a partial config file.
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("clickhouse:\n  host: \"ch.internal\"\nsink:\n  max_rows: 50\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// 2. Load it and check explicit values plus filled defaults.
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.ClickHouse.Host != "ch.internal" {
		t.Errorf("Host = %s, want ch.internal", cfg.ClickHouse.Host)
	}
	if cfg.Sink.MaxRows != 50 {
		t.Errorf("MaxRows = %d, want 50", cfg.Sink.MaxRows)
	}
	if cfg.Sink.FlushPeriod != "5s" {
		t.Errorf("FlushPeriod default = %s, want 5s", cfg.Sink.FlushPeriod)
	}
	if cfg.ClickHouse.Port != 9000 {
		t.Errorf("Port default = %d, want 9000", cfg.ClickHouse.Port)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want os.ErrNotExist in chain", err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Sink.MaxRows != 1000 || cfg.Sink.MaxBytes != 1024*1024 || cfg.Sink.FlushPeriod != "5s" {
		t.Errorf("sink defaults = %+v", cfg.Sink)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS enabled by default")
	}
	if cfg.Cache.MaxEntries != 0 {
		t.Errorf("MaxEntries default = %d, want 0 (unbounded)", cfg.Cache.MaxEntries)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level default = %s, want info", cfg.Log.Level)
	}
}
