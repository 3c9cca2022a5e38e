// Package permission implements the relationship and role based
// authorization decision for task mutations. The decision table is evaluated
// once at the service boundary; handlers and UIs consume the result instead
// of re-deriving role checks.
package permission

import (
	"context"
	"fmt"

	"github.com/worklane/worklane/internal/domain/employee"
	"github.com/worklane/worklane/internal/domain/task"
)

// Field names a mutable task attribute.
type Field string

const (
	FieldTitle         Field = "title"
	FieldDescription   Field = "description"
	FieldPriority      Field = "priority"
	FieldStatus        Field = "status"
	FieldDueDate       Field = "due_date"
	FieldCollaborators Field = "collaborators"
	FieldAttachment    Field = "attachment"
)

// AllFields returns every mutable task field.
func AllFields() []Field {
	return []Field{
		FieldTitle, FieldDescription, FieldPriority, FieldStatus,
		FieldDueDate, FieldCollaborators, FieldAttachment,
	}
}

// statusOnly is the field set granted to non-owner collaborators.
var statusOnly = []Field{FieldStatus}

// Decision is the result of evaluating an actor against a task.
type Decision struct {
	Allowed       bool    `json:"allowed"`
	MutableFields []Field `json:"mutable_fields"`
	Reason        string  `json:"reason,omitempty"`
}

// ProjectResolver answers whether a manager has authority over a project.
// Implemented by the store; kept as a port so the evaluator stays testable.
type ProjectResolver interface {
	// ManagerAuthority reports whether managerID manages the project and,
	// separately, whether they are a member of it.
	ManagerAuthority(ctx context.Context, managerID, projectID string) (manages, member bool, err error)
}

// Evaluator applies the authorization decision table.
type Evaluator struct {
	projects ProjectResolver
	// managerRequiresMembership additionally requires an active project
	// membership for the manager rule, not just project ownership.
	managerRequiresMembership bool
}

// NewEvaluator creates an Evaluator backed by the given project resolver.
func NewEvaluator(projects ProjectResolver, managerRequiresMembership bool) *Evaluator {
	return &Evaluator{projects: projects, managerRequiresMembership: managerRequiresMembership}
}

// Evaluate runs the decision table for a task mutation, highest-priority
// match first:
//
//  1. owner: full field access
//  2. collaborator (non-owner): status only
//  3. hr / director: full field access
//  4. manager of the task's project: full field access
//  5. otherwise: denied
//
// requestedFields is the set of fields the actor wants to change; the
// decision denies when any requested field falls outside the granted set.
func (e *Evaluator) Evaluate(ctx context.Context, actor *employee.Employee, t *task.Task, requestedFields []Field) (Decision, error) {
	if actor.ID == t.OwnerID {
		return allow(AllFields(), requestedFields, "owner"), nil
	}

	if t.HasCollaborator(actor.ID) {
		return allow(statusOnly, requestedFields, "collaborator may only update status"), nil
	}

	if actor.Role.OrgWideOversight() {
		return allow(AllFields(), requestedFields, string(actor.Role)), nil
	}

	if actor.Role == employee.RoleManager && t.ProjectID != "" && e.projects != nil {
		manages, member, err := e.projects.ManagerAuthority(ctx, actor.ID, t.ProjectID)
		if err != nil {
			return Decision{}, fmt.Errorf("resolve project authority: %w", err)
		}
		if manages && (!e.managerRequiresMembership || member) {
			return allow(AllFields(), requestedFields, "project manager"), nil
		}
	}

	return Decision{Allowed: false, Reason: "not authorized for this task"}, nil
}

// EvaluateSubtask runs the same table for a subtask mutation. Authority is
// derived from the parent task: the subtask owner is the parent owner, and
// collaborators of the parent hold status-only access at every level.
func (e *Evaluator) EvaluateSubtask(ctx context.Context, actor *employee.Employee, parent *task.Task, requestedFields []Field) (Decision, error) {
	return e.Evaluate(ctx, actor, parent, requestedFields)
}

// allow grants the given field set and denies when a requested field falls
// outside it.
func allow(granted []Field, requested []Field, reason string) Decision {
	grantedSet := make(map[Field]bool, len(granted))
	for _, f := range granted {
		grantedSet[f] = true
	}
	for _, f := range requested {
		if !grantedSet[f] {
			return Decision{Allowed: false, MutableFields: granted, Reason: reason}
		}
	}
	return Decision{Allowed: true, MutableFields: granted}
}

// FieldsOf returns the fields a task patch touches.
func FieldsOf(patch *task.UpdateRequest) []Field {
	var fields []Field
	if patch.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if patch.Description != nil {
		fields = append(fields, FieldDescription)
	}
	if patch.Priority != nil {
		fields = append(fields, FieldPriority)
	}
	if patch.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if patch.DueDate != nil {
		fields = append(fields, FieldDueDate)
	}
	if patch.Collaborators != nil {
		fields = append(fields, FieldCollaborators)
	}
	if patch.AttachmentURL != nil {
		fields = append(fields, FieldAttachment)
	}
	return fields
}

// SubtaskFieldsOf returns the fields a subtask patch touches.
func SubtaskFieldsOf(patch *task.SubtaskUpdateRequest) []Field {
	var fields []Field
	if patch.Title != nil {
		fields = append(fields, FieldTitle)
	}
	if patch.Description != nil {
		fields = append(fields, FieldDescription)
	}
	if patch.Priority != nil {
		fields = append(fields, FieldPriority)
	}
	if patch.Status != nil {
		fields = append(fields, FieldStatus)
	}
	if patch.DueDate != nil {
		fields = append(fields, FieldDueDate)
	}
	return fields
}
