package sink

import (
	"context"
	"fmt"

	"FlowSight/internal/config"
	"FlowSight/internal/model"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sirupsen/logrus"
)

const createTableStatement = `
CREATE TABLE IF NOT EXISTS ipfix (
    insertionTime Int64,
    clientMac     UInt64,
    clientIPv4    IPv4,
    clientIPv6    IPv6,
    clientPort    UInt16,
    serverIPv4    IPv4,
    serverIPv6    IPv6,
    serverPort    UInt16,
    protocol      UInt8,
    packets       UInt32,
    bytes         UInt32,
    isDownload    Bool
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(toDateTime(insertionTime))
ORDER BY (insertionTime);
`

// ClickHouseWriter implements model.RowWriter against a ClickHouse table.
type ClickHouseWriter struct {
	conn  driver.Conn
	ready bool
}

// NewClickHouseWriter opens a connection to ClickHouse. An unreachable store
// at startup is not fatal: table bootstrap is retried on the first commit, so
// the collector degrades to metrics-only operation during an outage.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	conn, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open clickhouse connection: %w", err)
	}

	w := &ClickHouseWriter{conn: conn}
	if err := w.bootstrap(context.Background()); err != nil {
		logrus.Warnf("ClickHouse unavailable at startup, will retry on first flush: %v", err)
	} else {
		logrus.Println("Successfully connected to ClickHouse and ensured table exists.")
	}
	return w, nil
}

func connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	return clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: false,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
}

// bootstrap pings the store and ensures the target table exists.
func (w *ClickHouseWriter) bootstrap(ctx context.Context) error {
	if err := w.conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	if err := w.conn.Exec(ctx, createTableStatement); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	w.ready = true
	return nil
}

// Commit inserts a batch of canonical rows, in order.
func (w *ClickHouseWriter) Commit(ctx context.Context, rows []model.CanonicalRow) error {
	if !w.ready {
		if err := w.bootstrap(ctx); err != nil {
			return err
		}
	}

	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO ipfix")
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, row := range rows {
		err = batch.Append(
			row.InsertionTime,
			row.ClientMAC,
			row.ClientIPv4,
			row.ClientIPv6,
			row.ClientPort,
			row.ServerIPv4,
			row.ServerIPv6,
			row.ServerPort,
			row.Protocol,
			row.Packets,
			row.Bytes,
			row.IsDownload,
		)
		if err != nil {
			return fmt.Errorf("failed to append row to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}
	return nil
}

// Close shuts down the underlying connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
