package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	id "lekha/pkg/domain"
	audit "lekha/pkg/platform/audit"
	txcontext "lekha/pkg/platform/tx"
)

// Store implements audit.Store on PostgreSQL using a transactional outbox.
// Each Append writes the row to audit_log for reads and a mirror row to the
// outbox table; the relay worker publishes outbox rows to Kafka and marks
// them published. Both inserts share the caller's transaction when one is
// present in context.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// outboxPayload is the JSON structure published to Kafka. Field names match
// audit.Entry for deserialization by downstream consumers.
type outboxPayload struct {
	ID          string         `json:"ID"`
	UserID      string         `json:"UserID,omitempty"`
	FirmID      string         `json:"FirmID,omitempty"`
	Action      string         `json:"Action"`
	EntityType  string         `json:"EntityType"`
	EntityID    string         `json:"EntityID"`
	Details     map[string]any `json:"Details,omitempty"`
	PerformedBy string         `json:"PerformedBy"`
	Timestamp   string         `json:"Timestamp"`
}

func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	exec := s.execer(ctx)

	details, err := json.Marshal(entry.Details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	const insertLog = `
		INSERT INTO audit_log
			(id, user_id, firm_id, action, entity_type, entity_id, details, performed_by, immutable, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9)
	`
	_, err = exec.ExecContext(ctx, insertLog,
		uuid.UUID(entry.ID), uuid.UUID(entry.UserID), uuid.UUID(entry.FirmID),
		string(entry.Action), string(entry.EntityType), entry.EntityID,
		details, entry.PerformedBy, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	payload := outboxPayload{
		ID:          entry.ID.String(),
		Action:      string(entry.Action),
		EntityType:  string(entry.EntityType),
		EntityID:    entry.EntityID,
		Details:     entry.Details,
		PerformedBy: entry.PerformedBy,
		Timestamp:   entry.Timestamp.Format(time.RFC3339Nano),
	}
	if !entry.UserID.IsNil() {
		payload.UserID = entry.UserID.String()
	}
	if !entry.FirmID.IsNil() {
		payload.FirmID = entry.FirmID.String()
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	const insertOutbox = `
		INSERT INTO audit_outbox (id, aggregate_type, aggregate_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	aggregateType := string(entry.EntityType)
	if aggregateType == "" {
		aggregateType = "audit"
	}
	_, err = exec.ExecContext(ctx, insertOutbox,
		uuid.UUID(entry.ID), aggregateType, entry.EntityID, payloadBytes, entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert outbox row: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	query, args := buildListQuery(filter, true)

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		// A missing composite index surfaces here on some deployments.
		// Fall back to the unordered query and sort client-side.
		query, args = buildListQuery(filter, false)
		rows, err = s.execer(ctx).QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("query audit log: %w", err)
		}
		entries, err := scanEntries(rows)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Timestamp.After(entries[j].Timestamp)
		})
		if filter.Limit > 0 && len(entries) > filter.Limit {
			entries = entries[:filter.Limit]
		}
		return entries, nil
	}
	return scanEntries(rows)
}

func buildListQuery(filter audit.Filter, ordered bool) (string, []any) {
	query := `
		SELECT id, user_id, firm_id, action, entity_type, entity_id, details, performed_by, created_at
		FROM audit_log
		WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != "" {
		query += " AND user_id = " + arg(filter.UserID)
	}
	if filter.FirmID != "" {
		query += " AND firm_id = " + arg(filter.FirmID)
	}
	if filter.EntityType != "" {
		query += " AND entity_type = " + arg(string(filter.EntityType))
	}
	if filter.EntityID != "" {
		query += " AND entity_id = " + arg(filter.EntityID)
	}
	if filter.Action != "" {
		query += " AND action = " + arg(string(filter.Action))
	}
	if ordered {
		query += " ORDER BY created_at DESC"
		if filter.Limit > 0 {
			query += " LIMIT " + arg(filter.Limit)
		}
	}
	return query, args
}

func scanEntries(rows *sql.Rows) ([]audit.Entry, error) {
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var entryID, userID, firmID uuid.UUID
		var action, entityType, entityID, performedBy string
		var details []byte
		var createdAt time.Time
		if err := rows.Scan(&entryID, &userID, &firmID, &action, &entityType, &entityID, &details, &performedBy, &createdAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry := audit.Entry{
			ID:          id.EventID(entryID),
			UserID:      id.UserID(userID),
			FirmID:      id.FirmID(firmID),
			Action:      audit.Action(action),
			EntityType:  audit.EntityType(entityType),
			EntityID:    entityID,
			PerformedBy: performedBy,
			Timestamp:   createdAt,
			Immutable:   true,
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshal audit details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
