package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "lekha/pkg/domain"
	"lekha/pkg/platform/sentinel"
	txcontext "lekha/pkg/platform/tx"

	"lekha/internal/tasks"
)

// Store implements tasks.Store on PostgreSQL. Document slots and filing
// details live in JSONB columns; everything filtered on has its own column.
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

const taskColumns = `id, user_id, firm_id, rule_id, event_id, name, description, category,
	frequency, due_date, priority, status, requires_ca_review, associate_id, ca_reviewer_id,
	documents, filing, created_at, updated_at, completed_at, filed_at`

func (s *Store) Create(ctx context.Context, task *tasks.Instance) error {
	documents, filing, err := marshalPayloads(task)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(task.ID), uuid.UUID(task.UserID), uuid.UUID(task.FirmID),
		task.RuleID.String(), uuid.UUID(task.EventID),
		task.Name, task.Description, task.Category,
		task.Frequency.String(), task.DueDate, task.Priority.String(), task.Status.String(),
		task.RequiresCAReview, nullableID(uuid.UUID(task.Associate)), nullableID(uuid.UUID(task.CAReviewer)),
		documents, filing,
		task.CreatedAt, task.UpdatedAt, task.CompletedAt, task.FiledAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, taskID id.TaskID) (*tasks.Instance, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(taskID))
	task, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *Store) Update(ctx context.Context, task *tasks.Instance) error {
	documents, filing, err := marshalPayloads(task)
	if err != nil {
		return err
	}

	const query = `
		UPDATE tasks
		SET status = $2, priority = $3, requires_ca_review = $4,
			associate_id = $5, ca_reviewer_id = $6, documents = $7, filing = $8,
			updated_at = $9, completed_at = $10, filed_at = $11
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(task.ID), task.Status.String(), task.Priority.String(), task.RequiresCAReview,
		nullableID(uuid.UUID(task.Associate)), nullableID(uuid.UUID(task.CAReviewer)),
		documents, filing,
		task.UpdatedAt, task.CompletedAt, task.FiledAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) ListByFirm(ctx context.Context, firmID id.FirmID, filter tasks.ListFilter) ([]*tasks.Instance, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE firm_id = $1`
	args := []any{uuid.UUID(firmID)}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != "" {
		query += " AND status = " + arg(filter.Status.String())
	}
	if filter.Category != "" {
		query += " AND category = " + arg(filter.Category)
	}
	query += " ORDER BY due_date, created_at"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return scanTasks(rows)
}

func (s *Store) ListOpenDueBefore(ctx context.Context, cutoff time.Time) ([]*tasks.Instance, error) {
	const query = `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE status IN ('pending', 'in_progress') AND due_date < $1
		ORDER BY due_date
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list open tasks: %w", err)
	}
	return scanTasks(rows)
}

func marshalPayloads(task *tasks.Instance) (documents, filing []byte, err error) {
	documents, err = json.Marshal(task.Documents)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal document slots: %w", err)
	}
	if task.Filing != nil {
		filing, err = json.Marshal(task.Filing)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal filing details: %w", err)
		}
	}
	return documents, filing, nil
}

func nullableID(u uuid.UUID) any {
	if u == uuid.Nil {
		return nil
	}
	return u
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*tasks.Instance, error) {
	var task tasks.Instance
	var taskID, userID, firmID, eventID uuid.UUID
	var associate, caReviewer uuid.NullUUID
	var ruleID, frequency, priority, status string
	var documents, filing []byte

	err := row.Scan(
		&taskID, &userID, &firmID, &ruleID, &eventID,
		&task.Name, &task.Description, &task.Category,
		&frequency, &task.DueDate, &priority, &status,
		&task.RequiresCAReview, &associate, &caReviewer,
		&documents, &filing,
		&task.CreatedAt, &task.UpdatedAt, &task.CompletedAt, &task.FiledAt,
	)
	if err != nil {
		return nil, err
	}

	task.ID = id.TaskID(taskID)
	task.UserID = id.UserID(userID)
	task.FirmID = id.FirmID(firmID)
	task.RuleID = id.RuleID(ruleID)
	task.EventID = id.EventID(eventID)
	task.Frequency = id.ComplianceFrequency(frequency)
	task.Priority = id.TaskPriority(priority)
	task.Status = tasks.Status(status)
	if associate.Valid {
		task.Associate = id.UserID(associate.UUID)
	}
	if caReviewer.Valid {
		task.CAReviewer = id.UserID(caReviewer.UUID)
	}
	if len(documents) > 0 {
		if err := json.Unmarshal(documents, &task.Documents); err != nil {
			return nil, fmt.Errorf("unmarshal document slots: %w", err)
		}
	}
	if len(filing) > 0 {
		var f tasks.FilingDetails
		if err := json.Unmarshal(filing, &f); err != nil {
			return nil, fmt.Errorf("unmarshal filing details: %w", err)
		}
		task.Filing = &f
	}
	return &task, nil
}

func scanTasks(rows *sql.Rows) ([]*tasks.Instance, error) {
	defer rows.Close()

	var out []*tasks.Instance
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, task)
	}
	return out, rows.Err()
}
