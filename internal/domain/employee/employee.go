// Package employee defines the employee domain model for authentication and authorization.
package employee

import (
	"errors"
	"net/mail"
	"time"
)

// Role represents an employee's position in the organization.
type Role string

const (
	RoleStaff    Role = "staff"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleDirector Role = "director"
)

// ValidRoles is the set of all valid employee roles.
var ValidRoles = map[Role]bool{
	RoleStaff:    true,
	RoleManager:  true,
	RoleHR:       true,
	RoleDirector: true,
}

// CanAssignTasks reports whether the role may create tasks owned by another employee.
func (r Role) CanAssignTasks() bool {
	return r == RoleManager || r == RoleHR || r == RoleDirector
}

// OrgWideOversight reports whether the role has full access to every task
// regardless of ownership or collaboration.
func (r Role) OrgWideOversight() bool {
	return r == RoleHR || r == RoleDirector
}

// Employee represents a registered employee.
type Employee struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // never serialized
	Role         Role      `json:"role"`
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateRequest is the input for registering a new employee.
type CreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
	Role     Role   `json:"role"`
}

// Validate checks that the CreateRequest has all required fields.
func (r *CreateRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		return errors.New("invalid email format")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	if len(r.Password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	if !ValidRoles[r.Role] {
		return errors.New("invalid role: must be staff, manager, hr, or director")
	}
	return nil
}

// LoginRequest is the input for employee authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // request field, not a hardcoded secret
}

// Validate checks that the LoginRequest has all required fields.
func (r *LoginRequest) Validate() error {
	if r.Email == "" {
		return errors.New("email is required")
	}
	if r.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

// LoginResponse is returned after successful authentication.
type LoginResponse struct {
	AccessToken string   `json:"access_token"` //nolint:gosec // response field, not a hardcoded secret
	ExpiresIn   int      `json:"expires_in"`   // seconds until access token expires
	Employee    Employee `json:"employee"`
}
