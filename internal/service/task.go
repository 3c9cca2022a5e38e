// Package service contains application services.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/domain/permission"
	"github.com/worklane/worklane/internal/domain/recurrence"
	"github.com/worklane/worklane/internal/domain/task"
	"github.com/worklane/worklane/internal/port/cache"
	"github.com/worklane/worklane/internal/port/database"
	"github.com/worklane/worklane/internal/port/messagequeue"
	"github.com/worklane/worklane/internal/port/metrics"
)

// TaskService orchestrates the task lifecycle: creation, permission-checked
// updates, collaborator sharing, and recurrence roll-forward.
type TaskService struct {
	store     database.Store
	queue     messagequeue.Queue
	evaluator *permission.Evaluator
	cache     cache.Cache
	capTTL    time.Duration
	metrics   metrics.Recorder
}

// NewTaskService creates a new TaskService. cache may be nil to disable the
// capability cache; metrics may be nil to disable counters.
func NewTaskService(store database.Store, queue messagequeue.Queue, evaluator *permission.Evaluator, capCache cache.Cache, capTTL time.Duration, rec metrics.Recorder) *TaskService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &TaskService{
		store:     store,
		queue:     queue,
		evaluator: evaluator,
		cache:     capCache,
		capTTL:    capTTL,
		metrics:   rec,
	}
}

// List returns all tasks the actor owns or collaborates on.
func (s *TaskService) List(ctx context.Context, actor *employee.Employee) ([]task.Task, error) {
	return s.store.ListTasksForEmployee(ctx, actor.ID)
}

// Get returns a task by ID. Actors with no relationship to the task and no
// oversight role are denied.
func (s *TaskService) Get(ctx context.Context, actor *employee.Employee, id string) (*task.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	d, err := s.evaluator.Evaluate(ctx, actor, t, nil)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		s.metrics.AuthzDenied(ctx)
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}
	return t, nil
}

// Create validates and persists a new task. Out-of-range priority values
// are stored as absent rather than rejected. An assignee other than the
// actor requires assignment capability; an assignment-capable actor who
// names no assignee produces an unassigned task owned by the creator.
func (s *TaskService) Create(ctx context.Context, actor *employee.Employee, req *task.CreateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	owner := actor.ID
	status := task.StatusOngoing
	switch {
	case req.AssigneeID != "" && req.AssigneeID != actor.ID:
		if !actor.Role.CanAssignTasks() {
			s.metrics.AuthzDenied(ctx)
			return nil, fmt.Errorf("%w: role %s cannot assign tasks to others", domain.ErrForbidden, actor.Role)
		}
		owner = req.AssigneeID
	case req.AssigneeID == "" && actor.Role.CanAssignTasks():
		status = task.StatusUnassigned
	}

	rule, err := validateRecurrence(req.Recurrence)
	if err != nil {
		return nil, err
	}
	if rule != nil && req.DueDate != nil {
		anchored := rule.AnchorTo(*req.DueDate)
		rule = &anchored
	}

	now := time.Now().UTC()
	t := &task.Task{
		ID:            uuid.NewString(),
		Title:         req.Title,
		Description:   req.Description,
		Priority:      task.NormalizePriority(req.Priority),
		Status:        status,
		OwnerID:       owner,
		Collaborators: task.NormalizeCollaborators(req.Collaborators, owner),
		ProjectID:     req.ProjectID,
		DueDate:       req.DueDate,
		AttachmentURL: req.AttachmentURL,
		Recurrence:    rule,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t.SeriesID = t.ID
	if t.Recurrence != nil {
		t.RecurrenceCount = 1
	}

	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.metrics.TaskCreated(ctx)
	s.publishEvent(ctx, messagequeue.SubjectTaskCreated, actor.ID, t, t.Collaborators)
	return t, nil
}

// Update applies a partial update after re-evaluating permissions against
// the task's state at write time. Completing a recurring task triggers
// roll-forward; a roll-forward failure is surfaced through logs and metrics
// but never converts the completed update into an error.
func (s *TaskService) Update(ctx context.Context, actor *employee.Employee, id string, patch *task.UpdateRequest) (*task.Task, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	fields := permission.FieldsOf(patch)
	d, err := s.evaluator.Evaluate(ctx, actor, t, fields)
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		s.metrics.AuthzDenied(ctx)
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, d.Reason)
	}

	completedNow := false
	if patch.Status != nil {
		st, err := task.ParseStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		if err := task.CheckTransition(t.Status, st, t.Recurring()); err != nil {
			return nil, err
		}
		completedNow = st == task.StatusCompleted && t.Status != task.StatusCompleted
		t.Status = st
	}
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrValidation)
		}
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Priority != nil {
		t.Priority = task.NormalizePriority(patch.Priority)
	}
	if patch.DueDate != nil {
		t.DueDate = patch.DueDate
	}
	if patch.Collaborators != nil {
		t.Collaborators = task.NormalizeCollaborators(*patch.Collaborators, t.OwnerID)
	}
	if patch.AttachmentURL != nil {
		t.AttachmentURL = *patch.AttachmentURL
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("update task %s: %w", id, err)
	}

	if completedNow {
		s.metrics.TaskCompleted(ctx)
		if t.Recurring() {
			s.rollForward(ctx, actor, t)
		}
	}

	s.publishEvent(ctx, messagequeue.SubjectTaskUpdated, actor.ID, t, recipientsOf(t, actor.ID))
	return t, nil
}

// AddCollaborator grants an employee status-only access to the task.
// Owner-only; adding an existing collaborator is a no-op.
func (s *TaskService) AddCollaborator(ctx context.Context, actor *employee.Employee, taskID, empID string) (*task.Task, error) {
	if empID == "" {
		return nil, fmt.Errorf("%w: employee id is required", domain.ErrValidation)
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if actor.ID != t.OwnerID {
		s.metrics.AuthzDenied(ctx)
		return nil, fmt.Errorf("%w: only the owner may share a task", domain.ErrForbidden)
	}
	if empID == t.OwnerID {
		return nil, fmt.Errorf("%w: the owner cannot be a collaborator", domain.ErrValidation)
	}
	if t.HasCollaborator(empID) {
		return t, nil
	}

	t.Collaborators = append(t.Collaborators, empID)
	t.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("share task %s: %w", taskID, err)
	}

	s.publishEvent(ctx, messagequeue.SubjectTaskShared, actor.ID, t, []string{empID})
	return t, nil
}

// Capabilities answers the read-only capability query for UIs: which fields
// may the actor change on this task. Results are cached briefly.
func (s *TaskService) Capabilities(ctx context.Context, actor *employee.Employee, taskID string) (*permission.Decision, error) {
	key := "cap:" + taskID + ":" + actor.ID
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var d permission.Decision
			if err := json.Unmarshal(data, &d); err == nil {
				return &d, nil
			}
		}
	}

	t, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	d, err := s.evaluator.Evaluate(ctx, actor, t, nil)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(d); err == nil {
			if err := s.cache.Set(ctx, key, data, s.capTTL); err != nil {
				slog.Debug("capability cache set failed", "key", key, "error", err)
			}
		}
	}
	return &d, nil
}

// rollForward creates the next occurrence of a recurring series after the
// current instance completes. The successor insert is keyed on
// (series_id, recurrence_count) so a retried completion creates at most one
// successor. Failure here never rolls back the completed instance.
func (s *TaskService) rollForward(ctx context.Context, actor *employee.Employee, t *task.Task) {
	base := time.Now().UTC()
	if t.DueDate != nil {
		base = *t.DueDate
	}

	// Series created before a due date was known carry no anchor; pin it to
	// the completed occurrence so later clamps don't shift the target day.
	rule := *t.Recurrence
	if rule.AnchorDay == 0 {
		rule = rule.AnchorTo(base)
	}

	next, ok := rule.Next(base, t.RecurrenceCount)
	if !ok {
		slog.Info("recurrence series ended", "series_id", t.SeriesID, "occurrences", t.RecurrenceCount)
		return
	}

	now := time.Now().UTC()
	successor := &task.Task{
		ID:              uuid.NewString(),
		SeriesID:        t.SeriesID,
		Title:           t.Title,
		Description:     t.Description,
		Priority:        t.Priority,
		Status:          task.StatusOngoing,
		OwnerID:         t.OwnerID,
		Collaborators:   append([]string(nil), t.Collaborators...),
		ProjectID:       t.ProjectID,
		DueDate:         &next,
		Recurrence:      &rule,
		RecurrenceCount: t.RecurrenceCount + 1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	created, err := s.store.CreateSuccessor(ctx, successor)
	if err != nil {
		slog.Error("recurrence roll-forward failed",
			"series_id", t.SeriesID,
			"recurrence_count", successor.RecurrenceCount,
			"error", err,
		)
		s.metrics.RollForward(ctx, false)
		return
	}
	if !created {
		slog.Debug("successor already exists, skipping",
			"series_id", t.SeriesID,
			"recurrence_count", successor.RecurrenceCount,
		)
		return
	}

	s.metrics.RollForward(ctx, true)
	s.publishEvent(ctx, messagequeue.SubjectTaskRolledForward, actor.ID, successor, recipientsOf(successor, actor.ID))
}

// publishEvent sends a task event to the queue. Publish failures are logged
// and do not fail the surrounding request; the mutation is already durable.
func (s *TaskService) publishEvent(ctx context.Context, subject, actorID string, t *task.Task, recipients []string) {
	if s.queue == nil || len(recipients) == 0 {
		return
	}

	payload := messagequeue.TaskEventPayload{
		TaskID:     t.ID,
		SeriesID:   t.SeriesID,
		Title:      t.Title,
		Status:     string(t.Status),
		ActorID:    actorID,
		OwnerID:    t.OwnerID,
		Recipients: recipients,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal task event", "subject", subject, "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Error("publish task event", "subject", subject, "task_id", t.ID, "error", err)
	}
}

// recipientsOf returns owner plus collaborators, excluding the actor.
func recipientsOf(t *task.Task, actorID string) []string {
	var out []string
	if t.OwnerID != actorID {
		out = append(out, t.OwnerID)
	}
	for _, c := range t.Collaborators {
		if c != actorID {
			out = append(out, c)
		}
	}
	return out
}

// validateRecurrence re-validates a rule that may have been constructed
// programmatically rather than decoded from JSON.
func validateRecurrence(r *recurrence.Rule) (*recurrence.Rule, error) {
	if r == nil {
		return nil, nil
	}
	rule, err := recurrence.New(r.Pattern, r.Interval, r.Weekday, r.End)
	if err != nil {
		return nil, err
	}
	rule.AnchorDay = r.AnchorDay
	return &rule, nil
}
