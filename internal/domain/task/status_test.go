package task

import (
	"errors"
	"testing"

	"github.com/worklane/worklane/internal/domain"
)

func TestParseStatus(t *testing.T) {
	for s := range ValidStatuses {
		got, err := ParseStatus(string(s))
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", s, err)
		}
		if got != s {
			t.Fatalf("expected %q, got %q", s, got)
		}
	}

	for _, s := range []string{"", "done", "COMPLETED", "in_progress"} {
		if _, err := ParseStatus(s); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%q: expected validation error, got %v", s, err)
		}
	}
}

func TestParseSubtaskStatusRejectsUnassigned(t *testing.T) {
	if _, err := ParseSubtaskStatus("unassigned"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseSubtaskStatus("ongoing"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name      string
		from, to  Status
		recurring bool
		wantErr   bool
	}{
		{"forward", StatusOngoing, StatusUnderReview, false, false},
		{"backward", StatusUnderReview, StatusOngoing, false, false},
		{"skip review", StatusUnassigned, StatusCompleted, false, false},
		{"reopen non-recurring", StatusCompleted, StatusOngoing, false, true},
		{"reopen recurring", StatusCompleted, StatusOngoing, true, false},
		{"completed to completed", StatusCompleted, StatusCompleted, false, false},
		{"unknown target", StatusOngoing, Status("archived"), false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to, tt.recurring)
			if tt.wantErr && !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
