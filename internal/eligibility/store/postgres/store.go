// Package postgres implements the recommendation store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"lekha/internal/eligibility"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
	txcontext "lekha/pkg/platform/tx"
)

const recommendationColumns = `
	id, user_id, firm_id, type, reason, details, status, created_at, updated_at`

// Store implements eligibility.Store on PostgreSQL.
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

func (s *Store) Create(ctx context.Context, rec *eligibility.PlanRecommendation) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("marshal recommendation details: %w", err)
	}

	const query = `
		INSERT INTO recommendations
			(id, user_id, firm_id, type, reason, details, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(rec.ID), uuid.UUID(rec.UserID), uuid.UUID(rec.FirmID),
		string(rec.Type), rec.Reason, details, string(rec.Status),
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert recommendation: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, recID id.RecommendationID) (*eligibility.PlanRecommendation, error) {
	const query = `SELECT` + recommendationColumns + ` FROM recommendations WHERE id = $1`
	rec, err := scanRecommendation(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(recID)))
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recommendation: %w", err)
	}
	return rec, nil
}

func (s *Store) Update(ctx context.Context, rec *eligibility.PlanRecommendation) error {
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return fmt.Errorf("marshal recommendation details: %w", err)
	}

	const query = `
		UPDATE recommendations SET
			reason = $2, details = $3, status = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(rec.ID), rec.Reason, details, string(rec.Status), rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update recommendation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update recommendation rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListByFirm(ctx context.Context, firmID id.FirmID) ([]*eligibility.PlanRecommendation, error) {
	const query = `SELECT` + recommendationColumns + ` FROM recommendations
		WHERE firm_id = $1 ORDER BY created_at DESC`

	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(firmID))
	if err != nil {
		return nil, fmt.Errorf("list recommendations: %w", err)
	}
	defer rows.Close()

	var out []*eligibility.PlanRecommendation
	for rows.Next() {
		rec, err := scanRecommendation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recommendation: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recommendations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecommendation(row rowScanner) (*eligibility.PlanRecommendation, error) {
	var rec eligibility.PlanRecommendation
	var recID, userID, firmID uuid.UUID
	var recType, status string
	var details []byte

	err := row.Scan(
		&recID, &userID, &firmID, &recType, &rec.Reason, &details,
		&status, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.ID = id.RecommendationID(recID)
	rec.UserID = id.UserID(userID)
	rec.FirmID = id.FirmID(firmID)
	rec.Type = eligibility.RecommendationType(recType)
	rec.Status = eligibility.Status(status)
	if len(details) > 0 {
		if err := json.Unmarshal(details, &rec.Details); err != nil {
			return nil, fmt.Errorf("unmarshal recommendation details: %w", err)
		}
	}
	return &rec, nil
}
