package task

import (
	"fmt"

	"github.com/worklane/worklane/internal/domain"
)

// Status represents the current state of a task or subtask.
type Status string

const (
	StatusUnassigned  Status = "unassigned"
	StatusOngoing     Status = "ongoing"
	StatusUnderReview Status = "under_review"
	StatusCompleted   Status = "completed"
)

// ValidStatuses is the closed set of task statuses.
var ValidStatuses = map[Status]bool{
	StatusUnassigned:  true,
	StatusOngoing:     true,
	StatusUnderReview: true,
	StatusCompleted:   true,
}

// ParseStatus validates a status string against the task status set.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !ValidStatuses[st] {
		return "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, s)
	}
	return st, nil
}

// ParseSubtaskStatus validates a status string for a subtask. Subtasks share
// the task status set but never enter unassigned: a subtask always has an
// owner inherited from its parent.
func ParseSubtaskStatus(s string) (Status, error) {
	st, err := ParseStatus(s)
	if err != nil {
		return "", err
	}
	if st == StatusUnassigned {
		return "", fmt.Errorf("%w: subtasks cannot be unassigned", domain.ErrValidation)
	}
	return st, nil
}

// CheckTransition reports whether a task may move from one status to another.
// Transitions are not restricted by adjacency: any state may move to any
// other, except that completed is terminal for a non-recurring task. The
// business constraint on who may trigger a transition lives in the
// permission evaluator, not here.
func CheckTransition(from, to Status, recurring bool) error {
	if !ValidStatuses[to] {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, to)
	}
	if from == StatusCompleted && to != StatusCompleted && !recurring {
		return fmt.Errorf("%w: a completed task cannot be reopened", domain.ErrValidation)
	}
	return nil
}
