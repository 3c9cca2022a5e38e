// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a concurrent modification conflict.
var ErrConflict = errors.New("conflict: resource was modified by another request")

// ErrValidation indicates malformed or missing input.
var ErrValidation = errors.New("validation failed")

// ErrForbidden indicates the actor lacks rights for the requested mutation.
var ErrForbidden = errors.New("forbidden")
