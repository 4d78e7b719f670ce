// Package postgres implements the vault document store on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"lekha/internal/vault"
	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
	txcontext "lekha/pkg/platform/tx"
)

const documentColumns = `
	id, user_id, firm_id, name, document_type, content_type,
	size_bytes, storage_ref, tags, task_id, uploaded_at, updated_at`

// Store implements vault.Store on PostgreSQL.
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

func (s *Store) Create(ctx context.Context, doc *vault.Document) error {
	const query = `
		INSERT INTO documents
			(id, user_id, firm_id, name, document_type, content_type,
			size_bytes, storage_ref, tags, task_id, uploaded_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(doc.ID), uuid.UUID(doc.UserID), uuid.UUID(doc.FirmID),
		doc.Name, doc.DocumentType, doc.ContentType,
		doc.SizeBytes, doc.StorageRef, pq.Array(doc.Tags),
		nullableTaskID(doc.TaskID), doc.UploadedAt, doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, docID id.DocumentID) (*vault.Document, error) {
	const query = `SELECT` + documentColumns + ` FROM documents WHERE id = $1`
	doc, err := scanDocument(s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(docID)))
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *Store) Update(ctx context.Context, doc *vault.Document) error {
	const query = `
		UPDATE documents SET
			name = $2, document_type = $3, content_type = $4,
			size_bytes = $5, storage_ref = $6, tags = $7,
			task_id = $8, updated_at = $9
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(doc.ID), doc.Name, doc.DocumentType, doc.ContentType,
		doc.SizeBytes, doc.StorageRef, pq.Array(doc.Tags),
		nullableTaskID(doc.TaskID), doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListByFirm(ctx context.Context, firmID id.FirmID, filter vault.ListFilter) ([]*vault.Document, error) {
	query := `SELECT` + documentColumns + ` FROM documents WHERE firm_id = $1`
	args := []any{uuid.UUID(firmID)}

	if filter.DocumentType != "" {
		args = append(args, filter.DocumentType)
		query += fmt.Sprintf(" AND document_type = $%d", len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	query += " ORDER BY uploaded_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var out []*vault.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*vault.Document, error) {
	var doc vault.Document
	var docID, userID, firmID uuid.UUID
	var taskID uuid.NullUUID
	var tags pq.StringArray

	err := row.Scan(
		&docID, &userID, &firmID, &doc.Name, &doc.DocumentType, &doc.ContentType,
		&doc.SizeBytes, &doc.StorageRef, &tags, &taskID, &doc.UploadedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	doc.ID = id.DocumentID(docID)
	doc.UserID = id.UserID(userID)
	doc.FirmID = id.FirmID(firmID)
	doc.Tags = []string(tags)
	if taskID.Valid {
		linked := id.TaskID(taskID.UUID)
		doc.TaskID = &linked
	}
	return &doc, nil
}

func nullableTaskID(taskID *id.TaskID) any {
	if taskID == nil {
		return nil
	}
	return uuid.UUID(*taskID)
}
