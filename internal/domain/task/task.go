// Package task defines the task and subtask domain entities.
package task

import (
	"fmt"
	"slices"
	"time"

	"github.com/worklane/worklane/internal/domain"
	"github.com/worklane/worklane/internal/domain/recurrence"
)

// Priority bounds. Values outside the range are dropped to absent rather
// than rejected (tolerant-input policy).
const (
	MinPriority = 1
	MaxPriority = 10
)

// Task represents one unit of tracked work. For a recurring task, each
// occurrence is its own Task row sharing a SeriesID.
type Task struct {
	ID              string           `json:"id"`
	SeriesID        string           `json:"series_id"`
	Title           string           `json:"title"`
	Description     string           `json:"description,omitempty"`
	Priority        *int             `json:"priority,omitempty"`
	Status          Status           `json:"status"`
	OwnerID         string           `json:"owner_id"`
	Collaborators   []string         `json:"collaborators,omitempty"`
	ProjectID       string           `json:"project_id,omitempty"`
	DueDate         *time.Time       `json:"due_date,omitempty"`
	AttachmentURL   string           `json:"attachment_url,omitempty"`
	Recurrence      *recurrence.Rule `json:"recurrence,omitempty"`
	RecurrenceCount int              `json:"recurrence_count,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// Recurring reports whether the task belongs to an active recurrence series.
func (t *Task) Recurring() bool { return t.Recurrence != nil }

// HasCollaborator reports whether empID is in the collaborator set.
func (t *Task) HasCollaborator(empID string) bool {
	return slices.Contains(t.Collaborators, empID)
}

// Subtask represents a child item of a task. Its owner is inherited from the
// parent task and its lifecycle cannot outlive the parent.
type Subtask struct {
	ID           string     `json:"id"`
	ParentTaskID string     `json:"parent_task_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Priority     *int       `json:"priority,omitempty"`
	Status       Status     `json:"status"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	OwnerID      string     `json:"owner_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a new task.
type CreateRequest struct {
	Title         string           `json:"title"`
	Description   string           `json:"description,omitempty"`
	Priority      *int             `json:"priority,omitempty"`
	AssigneeID    string           `json:"assignee_id,omitempty"` // owner assignment, requires assignment capability
	Collaborators []string         `json:"collaborators,omitempty"`
	ProjectID     string           `json:"project_id,omitempty"`
	DueDate       *time.Time       `json:"due_date,omitempty"`
	AttachmentURL string           `json:"attachment_url,omitempty"`
	Recurrence    *recurrence.Rule `json:"recurrence,omitempty"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return nil
}

// UpdateRequest is a partial update. Nil fields are left untouched.
type UpdateRequest struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	Priority      *int       `json:"priority,omitempty"`
	Status        *string    `json:"status,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	Collaborators *[]string  `json:"collaborators,omitempty"`
	AttachmentURL *string    `json:"attachment_url,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (r *UpdateRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Priority == nil &&
		r.Status == nil && r.DueDate == nil && r.Collaborators == nil &&
		r.AttachmentURL == nil
}

// SubtaskCreateRequest holds the fields needed to create a subtask.
type SubtaskCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Validate checks that the SubtaskCreateRequest has all required fields.
func (r *SubtaskCreateRequest) Validate() error {
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	return nil
}

// SubtaskUpdateRequest is a partial subtask update. Nil fields are left untouched.
type SubtaskUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *int       `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (r *SubtaskUpdateRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Priority == nil &&
		r.Status == nil && r.DueDate == nil
}

// NormalizePriority applies the tolerant priority policy: values outside
// [1,10] are stored as absent, never rejected.
func NormalizePriority(p *int) *int {
	if p == nil || *p < MinPriority || *p > MaxPriority {
		return nil
	}
	v := *p
	return &v
}

// NormalizeCollaborators deduplicates the collaborator list and removes the
// owner, preserving first-seen order.
func NormalizeCollaborators(collaborators []string, ownerID string) []string {
	seen := make(map[string]bool, len(collaborators))
	var out []string
	for _, id := range collaborators {
		if id == "" || id == ownerID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
