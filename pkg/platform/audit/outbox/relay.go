// Package outbox relays audit rows from the transactional outbox to Kafka.
// The audit_log table is the read model; Kafka carries the stream to the
// suite's downstream consumers (retention, alerting, analytics).
package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Record is one unpublished outbox row.
type Record struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	Payload       []byte
}

// Producer publishes one record to the audit topic. The Kafka-backed
// implementation lives in kafka.go; tests supply a fake.
type Producer interface {
	Produce(ctx context.Context, key []byte, value []byte) error
}

// Relay polls the outbox table and publishes pending rows in insertion
// order. Rows are marked published only after the producer acknowledges, so
// a crash between produce and mark yields at-least-once delivery.
type Relay struct {
	db       *sql.DB
	producer Producer
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// NewRelay creates a relay worker. Interval and batch size fall back to
// sensible defaults when zero.
func NewRelay(db *sql.DB, producer Producer, logger *slog.Logger, interval time.Duration, batch int) *Relay {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batch <= 0 {
		batch = 100
	}
	return &Relay{db: db, producer: producer, logger: logger, interval: interval, batch: batch}
}

// Run polls until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.Drain(ctx); err != nil {
				r.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

// Drain publishes one batch of pending rows and returns how many were
// relayed. A produce failure stops the batch; already-published rows stay
// marked, the rest are retried next tick.
func (r *Relay) Drain(ctx context.Context) (int, error) {
	records, err := r.fetchPending(ctx)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, rec := range records {
		if err := r.producer.Produce(ctx, []byte(rec.ID.String()), rec.Payload); err != nil {
			return published, fmt.Errorf("produce outbox row %s: %w", rec.ID, err)
		}
		if err := r.markPublished(ctx, rec.ID); err != nil {
			return published, fmt.Errorf("mark outbox row %s: %w", rec.ID, err)
		}
		published++
	}
	return published, nil
}

func (r *Relay) fetchPending(ctx context.Context) ([]Record, error) {
	const query = `
		SELECT id, aggregate_type, aggregate_id, payload
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, r.batch)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.AggregateType, &rec.AggregateID, &rec.Payload); err != nil {
			return nil, fmt.Errorf("scan outbox row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *Relay) markPublished(ctx context.Context, rowID uuid.UUID) error {
	const query = `UPDATE audit_outbox SET published_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, rowID)
	return err
}
