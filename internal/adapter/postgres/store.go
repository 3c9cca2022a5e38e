package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worklane/worklane/internal/domain/recurrence"
	"github.com/worklane/worklane/internal/domain/task"
)

// Store implements database.Store using PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store backed by the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const taskColumns = `id, series_id, title, description, priority, status, owner_id, collaborators,
	        COALESCE(project_id::text, ''), due_date, attachment_url, recurrence, recurrence_count, created_at, updated_at`

// --- Tasks ---

func (s *Store) ListTasksForEmployee(ctx context.Context, empID string) ([]task.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks WHERE owner_id = $1 OR $1 = ANY(collaborators) ORDER BY created_at DESC`, empID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", id)
	}
	return &t, nil
}

func (s *Store) CreateTask(ctx context.Context, t *task.Task) error {
	recurrenceJSON, err := marshalRule(t.Recurrence)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tasks (id, series_id, title, description, priority, status, owner_id, collaborators,
		                    project_id, due_date, attachment_url, recurrence, recurrence_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, $10, $11, $12, $13, $14, $15)`,
		t.ID, t.SeriesID, t.Title, t.Description, t.Priority, string(t.Status), t.OwnerID, pgTextArray(t.Collaborators),
		t.ProjectID, t.DueDate, t.AttachmentURL, recurrenceJSON, t.RecurrenceCount, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (s *Store) UpdateTask(ctx context.Context, t *task.Task) error {
	recurrenceJSON, err := marshalRule(t.Recurrence)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET title = $2, description = $3, priority = $4, status = $5, collaborators = $6,
		        due_date = $7, attachment_url = $8, recurrence = $9, updated_at = $10
		 WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Priority, string(t.Status), pgTextArray(t.Collaborators),
		t.DueDate, t.AttachmentURL, recurrenceJSON, t.UpdatedAt)
	return execExpectOne(tag, err, "update task %s", t.ID)
}

// CreateSuccessor inserts the next occurrence of a recurring series. The
// unique index on (series_id, recurrence_count) makes a concurrent or
// retried insert a no-op; created reports whether this call won the insert.
func (s *Store) CreateSuccessor(ctx context.Context, t *task.Task) (bool, error) {
	recurrenceJSON, err := marshalRule(t.Recurrence)
	if err != nil {
		return false, err
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO tasks (id, series_id, title, description, priority, status, owner_id, collaborators,
		                    project_id, due_date, attachment_url, recurrence, recurrence_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, '')::uuid, $10, $11, $12, $13, $14, $15)
		 ON CONFLICT (series_id, recurrence_count) DO NOTHING`,
		t.ID, t.SeriesID, t.Title, t.Description, t.Priority, string(t.Status), t.OwnerID, pgTextArray(t.Collaborators),
		t.ProjectID, t.DueDate, t.AttachmentURL, recurrenceJSON, t.RecurrenceCount, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("create successor for series %s: %w", t.SeriesID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanTask(row scannable) (task.Task, error) {
	var t task.Task
	var recurrenceJSON []byte
	err := row.Scan(&t.ID, &t.SeriesID, &t.Title, &t.Description, &t.Priority, &t.Status, &t.OwnerID, &t.Collaborators,
		&t.ProjectID, &t.DueDate, &t.AttachmentURL, &recurrenceJSON, &t.RecurrenceCount, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return t, err
	}
	if recurrenceJSON != nil {
		var r recurrence.Rule
		if err := json.Unmarshal(recurrenceJSON, &r); err != nil {
			return t, fmt.Errorf("unmarshal recurrence: %w", err)
		}
		t.Recurrence = &r
	}
	return t, nil
}

func marshalRule(r *recurrence.Rule) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal recurrence: %w", err)
	}
	return data, nil
}
