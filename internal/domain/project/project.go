// Package project defines the minimal project read model consumed by the
// permission evaluator. Project membership management itself is handled by
// an external collaborator.
package project

import (
	"slices"
	"time"
)

// Project groups tasks under a managing employee.
type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ManagerID string    `json:"manager_id"`
	MemberIDs []string  `json:"member_ids,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMember reports whether empID is a member of the project.
func (p *Project) HasMember(empID string) bool {
	return slices.Contains(p.MemberIDs, empID)
}
