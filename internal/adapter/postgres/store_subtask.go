package postgres

import (
	"context"
	"fmt"

	"github.com/worklane/worklane/internal/domain/task"
)

const subtaskColumns = `id, parent_task_id, title, description, priority, status, due_date, owner_id, created_at, updated_at`

func (s *Store) ListSubtasks(ctx context.Context, parentTaskID string) ([]task.Subtask, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE parent_task_id = $1 ORDER BY created_at ASC`, parentTaskID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}
	defer rows.Close()

	var subtasks []task.Subtask
	for rows.Next() {
		st, err := scanSubtask(rows)
		if err != nil {
			return nil, err
		}
		subtasks = append(subtasks, st)
	}
	return subtasks, rows.Err()
}

func (s *Store) GetSubtask(ctx context.Context, id string) (*task.Subtask, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+subtaskColumns+` FROM subtasks WHERE id = $1`, id)

	st, err := scanSubtask(row)
	if err != nil {
		return nil, notFoundWrap(err, "get subtask %s", id)
	}
	return &st, nil
}

func (s *Store) CreateSubtask(ctx context.Context, st *task.Subtask) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO subtasks (id, parent_task_id, title, description, priority, status, due_date, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		st.ID, st.ParentTaskID, st.Title, st.Description, st.Priority, string(st.Status), st.DueDate, st.OwnerID, st.CreatedAt, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create subtask: %w", err)
	}
	return nil
}

func (s *Store) UpdateSubtask(ctx context.Context, st *task.Subtask) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE subtasks SET title = $2, description = $3, priority = $4, status = $5, due_date = $6, updated_at = $7
		 WHERE id = $1`,
		st.ID, st.Title, st.Description, st.Priority, string(st.Status), st.DueDate, st.UpdatedAt)
	return execExpectOne(tag, err, "update subtask %s", st.ID)
}

func (s *Store) DeleteSubtask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	return execExpectOne(tag, err, "delete subtask %s", id)
}

func scanSubtask(row scannable) (task.Subtask, error) {
	var st task.Subtask
	err := row.Scan(&st.ID, &st.ParentTaskID, &st.Title, &st.Description, &st.Priority, &st.Status,
		&st.DueDate, &st.OwnerID, &st.CreatedAt, &st.UpdatedAt)
	return st, err
}
