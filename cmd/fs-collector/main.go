package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FlowSight/internal/config"
	"FlowSight/internal/ingest"
	"FlowSight/internal/metrics"
	"FlowSight/internal/publish"
	"FlowSight/internal/sink"

	"github.com/sirupsen/logrus"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	args := os.Args[1:]
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: fs-collector <ipfix bind address> <metrics bind address> [config path]")
		os.Exit(1)
	}
	ipfixAddr, metricsAddr := args[0], args[1]

	configPath := defaultConfigPath
	if len(args) >= 3 {
		configPath = args[2]
	}

	cfg, err := config.LoadConfig(configPath)
	if errors.Is(err, os.ErrNotExist) {
		logrus.Infof("No config file at %s, using defaults.", configPath)
		cfg = config.Default()
	} else if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logrus.Fatalf("Invalid log level %q: %v", cfg.Log.Level, err)
	}
	logrus.SetLevel(level)

	period, err := time.ParseDuration(cfg.Sink.FlushPeriod)
	if err != nil || period <= 0 {
		logrus.Fatalf("Invalid sink flush_period %q", cfg.Sink.FlushPeriod)
	}

	writer, err := sink.NewClickHouseWriter(cfg.ClickHouse)
	if err != nil {
		logrus.Fatalf("Failed to create ClickHouse writer: %v", err)
	}

	batcher := sink.NewBatcher(writer, cfg.Sink.MaxRows, cfg.Sink.MaxBytes, period)

	var pub *publish.Publisher
	if cfg.NATS.Enabled {
		pub, err = publish.NewPublisher(cfg.NATS)
		if err != nil {
			logrus.Fatalf("Failed to connect to NATS: %v", err)
		}
	}

	m := metrics.New()

	ingestor, err := ingest.New(ipfixAddr, ingest.NewMACCache(cfg.Cache.MaxEntries), batcher, m, pub)
	if err != nil {
		logrus.Fatalf("Failed to start ingestion: %v", err)
	}

	server := metrics.NewServer(metricsAddr, m)
	if err := server.Start(); err != nil {
		logrus.Fatalf("Failed to bind metrics listener: %v", err)
	}

	batcher.Start()
	ingestor.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logrus.Println("Shutdown signal received, stopping collector...")
	ingestor.Stop()
	batcher.Stop()
	if pub != nil {
		pub.Close()
	}
	if err := server.Stop(); err != nil {
		logrus.Errorf("Metrics server shutdown: %v", err)
	}
	if err := writer.Close(); err != nil {
		logrus.Errorf("Closing ClickHouse connection: %v", err)
	}
	logrus.Println("Shutdown complete.")
}
