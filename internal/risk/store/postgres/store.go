package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"lekha/internal/risk"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
	txcontext "lekha/pkg/platform/tx"
)

// Store implements risk.Store on PostgreSQL.
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

const riskColumns = `id, user_id, firm_id, risk_type, severity, description, task_id, details,
	action_description, action_priority, estimated_penalty, status, detected_at, resolved_at`

func (s *Store) Create(ctx context.Context, r *risk.ComplianceRisk) error {
	details, err := json.Marshal(r.Details)
	if err != nil {
		return fmt.Errorf("marshal risk details: %w", err)
	}

	const query = `
		INSERT INTO compliance_risks (` + riskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	var taskID any
	if !r.TaskID.IsNil() {
		taskID = uuid.UUID(r.TaskID)
	}
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(r.ID), uuid.UUID(r.UserID), uuid.UUID(r.FirmID),
		r.Type.String(), r.Severity.String(), r.Description, taskID, details,
		r.Action.Description, r.Action.Priority.String(), r.Action.EstimatedPenalty,
		string(r.Status), r.DetectedAt, r.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("insert risk: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, riskID id.RiskID) (*risk.ComplianceRisk, error) {
	const query = `SELECT ` + riskColumns + ` FROM compliance_risks WHERE id = $1`
	r, err := scanRisk(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(riskID)))
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get risk: %w", err)
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, r *risk.ComplianceRisk) error {
	const query = `
		UPDATE compliance_risks
		SET severity = $2, status = $3, resolved_at = $4
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(r.ID), r.Severity.String(), string(r.Status), r.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("update risk: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListByFirm(ctx context.Context, firmID id.FirmID, filter risk.ListFilter) ([]*risk.ComplianceRisk, error) {
	query := `SELECT ` + riskColumns + ` FROM compliance_risks WHERE firm_id = $1`
	args := []any{uuid.UUID(firmID)}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		query += " AND status = " + arg(string(filter.Status))
	}
	if filter.Type != "" {
		query += " AND risk_type = " + arg(filter.Type.String())
	}
	query += " ORDER BY detected_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list risks: %w", err)
	}
	defer rows.Close()

	var out []*risk.ComplianceRisk
	for rows.Next() {
		r, err := scanRisk(rows)
		if err != nil {
			return nil, fmt.Errorf("scan risk: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRisk(row rowScanner) (*risk.ComplianceRisk, error) {
	var r risk.ComplianceRisk
	var riskID, userID, firmID uuid.UUID
	var taskID uuid.NullUUID
	var riskType, severity, priority, status string
	var details []byte

	err := row.Scan(&riskID, &userID, &firmID, &riskType, &severity, &r.Description,
		&taskID, &details, &r.Action.Description, &priority, &r.Action.EstimatedPenalty,
		&status, &r.DetectedAt, &r.ResolvedAt)
	if err != nil {
		return nil, err
	}

	r.ID = id.RiskID(riskID)
	r.UserID = id.UserID(userID)
	r.FirmID = id.FirmID(firmID)
	r.Type = risk.Type(riskType)
	r.Severity = risk.Severity(severity)
	r.Action.Priority = id.TaskPriority(priority)
	r.Status = risk.Status(status)
	if taskID.Valid {
		r.TaskID = id.TaskID(taskID.UUID)
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &r.Details); err != nil {
			return nil, fmt.Errorf("unmarshal risk details: %w", err)
		}
	}
	return &r, nil
}
