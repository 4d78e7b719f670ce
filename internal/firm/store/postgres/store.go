package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"lekha/internal/firm"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
	txcontext "lekha/pkg/platform/tx"
)

// Store implements firm.Store on PostgreSQL.
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

func (s *Store) Get(ctx context.Context, firmID id.FirmID) (*firm.Profile, error) {
	const query = `
		SELECT id, owner_id, name, entity_type, gstin, pan, tan,
			employee_count, annual_turnover, registered_at, updated_at
		FROM firms WHERE id = $1
	`
	var profile firm.Profile
	var profileID, ownerID uuid.UUID
	var entityType string

	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(firmID)).Scan(
		&profileID, &ownerID, &profile.Name, &entityType,
		&profile.GSTIN, &profile.PAN, &profile.TAN,
		&profile.EmployeeCount, &profile.AnnualTurnover,
		&profile.RegisteredAt, &profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get firm: %w", err)
	}

	profile.ID = id.FirmID(profileID)
	profile.OwnerID = id.UserID(ownerID)
	profile.EntityType = id.EntityType(entityType)
	return &profile, nil
}

func (s *Store) Upsert(ctx context.Context, profile *firm.Profile) error {
	const query = `
		INSERT INTO firms
			(id, owner_id, name, entity_type, gstin, pan, tan, employee_count, annual_turnover, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, entity_type = EXCLUDED.entity_type,
			gstin = EXCLUDED.gstin, pan = EXCLUDED.pan, tan = EXCLUDED.tan,
			employee_count = EXCLUDED.employee_count,
			annual_turnover = EXCLUDED.annual_turnover,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(profile.ID), uuid.UUID(profile.OwnerID), profile.Name,
		profile.EntityType.String(), profile.GSTIN, profile.PAN, profile.TAN,
		profile.EmployeeCount, profile.AnnualTurnover,
		profile.RegisteredAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert firm: %w", err)
	}
	return nil
}

func (s *Store) ListIDs(ctx context.Context) ([]id.FirmID, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, `SELECT id FROM firms ORDER BY registered_at`)
	if err != nil {
		return nil, fmt.Errorf("list firm ids: %w", err)
	}
	defer rows.Close()

	var ids []id.FirmID
	for rows.Next() {
		var firmID uuid.UUID
		if err := rows.Scan(&firmID); err != nil {
			return nil, fmt.Errorf("scan firm id: %w", err)
		}
		ids = append(ids, id.FirmID(firmID))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate firm ids: %w", err)
	}
	return ids, nil
}
