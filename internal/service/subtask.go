package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/domain/permission"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/port/database"
	"github.com/worklane/worklane/internal/port/metrics"
)

// subtaskEditFields is the field set a subtask create or delete requires.
// Status is deliberately absent: status is the only collaborator-writable
// field and grants no authority over the subtask's existence.
var subtaskEditFields = []permission.Field{
	permission.FieldTitle, permission.FieldDescription,
	permission.FieldPriority, permission.FieldDueDate,
}

// SubtaskService handles subtask lifecycle scoped to a parent task.
// Authority over a subtask derives from the parent task's owner.
type SubtaskService struct {
	store     database.Store
	evaluator *permission.Evaluator
	metrics   metrics.Recorder
}

// NewSubtaskService creates a new SubtaskService.
func NewSubtaskService(store database.Store, evaluator *permission.Evaluator, rec metrics.Recorder) *SubtaskService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &SubtaskService{store: store, evaluator: evaluator, metrics: rec}
}

// List returns the subtasks of a task. The actor needs at least read access
// to the parent.
func (s *SubtaskService) List(ctx context.Context, actor *employee.Employee, parentTaskID string) ([]task.Subtask, error) {
	parent, err := s.store.GetTask(ctx, parentTaskID)
	if err != nil {
		return nil, err
	}

	d, err := s.evaluator.EvaluateSubtask(ctx, actor, parent, nil)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		s.metrics.AuthzDenied(ctx)
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}
	return s.store.ListSubtasks(ctx, parentTaskID)
}

// Create adds a subtask under a parent task. A missing parent is a 404, not
// a silent no-op. Collaborators hold status-only access and cannot create
// subtasks.
func (s *SubtaskService) Create(ctx context.Context, actor *employee.Employee, parentTaskID string, req *task.SubtaskCreateRequest) (*task.Subtask, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	parent, err := s.store.GetTask(ctx, parentTaskID)
	if err != nil {
		return nil, err
	}
	if parent.Status == task.StatusCompleted {
		return nil, fmt.Errorf("%w: cannot add subtasks to a completed task", domain.ErrValidation)
	}

	d, err := s.evaluator.EvaluateSubtask(ctx, actor, parent, subtaskEditFields)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		s.metrics.AuthzDenied(ctx)
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	status := task.StatusOngoing
	if req.Status != "" {
		if status, err = task.ParseSubtaskStatus(req.Status); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	sub := &task.Subtask{
		ID:           uuid.NewString(),
		ParentTaskID: parent.ID,
		Title:        req.Title,
		Description:  req.Description,
		Priority:     task.NormalizePriority(req.Priority),
		Status:       status,
		DueDate:      req.DueDate,
		OwnerID:      parent.OwnerID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateSubtask(ctx, sub); err != nil {
		return nil, fmt.Errorf("create subtask: %w", err)
	}
	return sub, nil
}

// Update applies a partial update to a subtask, evaluated against the
// parent task's owner and collaborator set at write time.
func (s *SubtaskService) Update(ctx context.Context, actor *employee.Employee, id string, patch *task.SubtaskUpdateRequest) (*task.Subtask, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	sub, err := s.store.GetSubtask(ctx, id)
	if err != nil {
		return nil, err
	}
	parent, err := s.store.GetTask(ctx, sub.ParentTaskID)
	if err != nil {
		return nil, err
	}

	fields := permission.SubtaskFieldsOf(patch)
	d, err := s.evaluator.EvaluateSubtask(ctx, actor, parent, fields)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		s.metrics.AuthzDenied(ctx)
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	if patch.Status != nil {
		st, err := task.ParseSubtaskStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		if err := task.CheckTransition(sub.Status, st, false); err != nil {
			return nil, err
		}
		sub.Status = st
	}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
		}
		sub.Title = *patch.Title
	}
	if patch.Description != nil {
		sub.Description = *patch.Description
	}
	if patch.Priority != nil {
		sub.Priority = task.NormalizePriority(patch.Priority)
	}
	if patch.DueDate != nil {
		sub.DueDate = patch.DueDate
	}
	sub.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateSubtask(ctx, sub); err != nil {
		return nil, fmt.Errorf("update subtask %s: %w", id, err)
	}
	return sub, nil
}

// Delete removes a subtask. Requires full-field authority over the parent;
// a status-only collaborator cannot delete.
func (s *SubtaskService) Delete(ctx context.Context, actor *employee.Employee, id string) error {
	sub, err := s.store.GetSubtask(ctx, id)
	if err != nil {
		return err
	}
	parent, err := s.store.GetTask(ctx, sub.ParentTaskID)
	if err != nil {
		return err
	}

	d, err := s.evaluator.EvaluateSubtask(ctx, actor, parent, subtaskEditFields)
	if err != nil {
		return err
	}
	if !d.Allowed {
		s.metrics.AuthzDenied(ctx)
		return fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	return s.store.DeleteSubtask(ctx, id)
}
