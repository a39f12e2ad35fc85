// Package analytics writes query-performance events to ClickHouse. The
// sink is optional: the service runs without it and only slow-query
// reporting degrades.
package analytics

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"go.uber.org/zap"

	"github.com/haalarikone/haku-api/internal/config"
	"github.com/haalarikone/haku-api/internal/models"
)

type Client struct {
	conn   driver.Conn
	logger *zap.Logger
}

func NewClient(cfg config.ClickHouseConfig, logger *zap.Logger) (*Client, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: cfg.Addresses,
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": int(cfg.QueryTimeout.Seconds()),
		},
		DialTimeout:  cfg.DialTimeout,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
	})
	if err != nil {
		return nil, fmt.Errorf("opening clickhouse connection: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("pinging clickhouse: %w", err)
	}

	logger.Info("clickhouse client connected", zap.Strings("addresses", cfg.Addresses))

	return &Client{
		conn:   conn,
		logger: logger,
	}, nil
}

func (c *Client) EnsureTables(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS query_events (
			query_hash   String,
			locale       LowCardinality(String),
			source       LowCardinality(String),
			gibberish    UInt8,
			duration_ms  Float64,
			total_count  Int64,
			severity     LowCardinality(String),
			trace_id     String,
			ts           DateTime64(3, 'UTC')
		)
		ENGINE = MergeTree
		PARTITION BY toYYYYMM(ts)
		ORDER BY (ts, query_hash)
		TTL toDateTime(ts) + INTERVAL 90 DAY
	`
	if err := c.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating query_events table: %w", err)
	}
	return nil
}

// WriteQueryEvent implements observability.AnalyticsWriter.
func (c *Client) WriteQueryEvent(ctx context.Context, event *models.QueryEvent) error {
	gibberish := uint8(0)
	if event.Gibberish {
		gibberish = 1
	}

	err := c.conn.AsyncInsert(ctx, `
		INSERT INTO query_events
			(query_hash, locale, source, gibberish, duration_ms, total_count, severity, trace_id, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		false,
		event.QueryHash,
		event.Locale,
		event.Source,
		gibberish,
		event.DurationMs,
		event.TotalCount,
		event.Severity,
		event.TraceID,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("inserting query event: %w", err)
	}
	return nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *Client) Close() error {
	return c.conn.Close()
}
