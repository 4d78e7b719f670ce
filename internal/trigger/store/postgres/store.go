package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lekha/internal/trigger"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
	txcontext "lekha/pkg/platform/tx"
)

// Store implements trigger.EventStore on PostgreSQL.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Create(ctx context.Context, event *trigger.ComplianceEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	const query = `
		INSERT INTO compliance_events (id, user_id, firm_id, event_type, payload, processed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(event.ID), uuid.UUID(event.UserID), uuid.UUID(event.FirmID),
		event.Type.String(), payload, event.Processed, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, eventID id.EventID) (*trigger.ComplianceEvent, error) {
	const query = `
		SELECT id, user_id, firm_id, event_type, payload, processed, created_at, processed_at
		FROM compliance_events WHERE id = $1
	`
	event, err := scanEvent(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(eventID)))
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *Store) MarkProcessed(ctx context.Context, eventID id.EventID, at time.Time) error {
	const query = `
		UPDATE compliance_events SET processed = TRUE, processed_at = $2 WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query, uuid.UUID(eventID), at)
	if err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListByFirm(ctx context.Context, firmID id.FirmID, limit int) ([]*trigger.ComplianceEvent, error) {
	query := `
		SELECT id, user_id, firm_id, event_type, payload, processed, created_at, processed_at
		FROM compliance_events WHERE firm_id = $1 ORDER BY created_at DESC
	`
	args := []any{uuid.UUID(firmID)}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*trigger.ComplianceEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		out = append(out, event)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*trigger.ComplianceEvent, error) {
	var event trigger.ComplianceEvent
	var eventID, userID, firmID uuid.UUID
	var eventType string
	var payload []byte

	err := row.Scan(&eventID, &userID, &firmID, &eventType, &payload,
		&event.Processed, &event.CreatedAt, &event.ProcessedAt)
	if err != nil {
		return nil, err
	}

	event.ID = id.EventID(eventID)
	event.UserID = id.UserID(userID)
	event.FirmID = id.FirmID(firmID)
	event.Type = id.SystemEventType(eventType)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &event.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal event payload: %w", err)
		}
	}
	return &event, nil
}
