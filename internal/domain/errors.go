package domain

import (
	"errors"
	"fmt"
)

// Tenant resolution outcomes that are expected, user-facing conditions. They
// carry stable reason codes so API clients can tell "no such workspace" from
// "workspace suspended".
var (
	// ErrMissingTenant means the route requires a workspace but none could be
	// derived from the request host or headers.
	ErrMissingTenant = errors.New("workspace required but not present in request")

	// ErrTenantNotFound means a slug was derived but no registry row exists.
	ErrTenantNotFound = errors.New("workspace not found")

	// ErrTenantInactive means the workspace exists but is deactivated and the
	// route is not allowed to operate on deactivated workspaces.
	ErrTenantInactive = errors.New("workspace is deactivated")
)

// ErrTenantSchemaMissing indicates a consistency fault between the workspace
// registry and the database catalog: the registry says the workspace is
// active but its schema (or one of its tables) is absent. Not user
// recoverable; never leaks the schema name to clients.
type ErrTenantSchemaMissing struct {
	Slug string
	Err  error
}

func (e *ErrTenantSchemaMissing) Error() string {
	return fmt.Sprintf("workspace schema missing for slug %q: %v", e.Slug, e.Err)
}

func (e *ErrTenantSchemaMissing) Unwrap() error {
	return e.Err
}

// ErrIdentifierRejected indicates the slug sanitizer encountered characters
// that the slug grammar should have made impossible. It signals an upstream
// validation bug and is never masked by silently stripping characters.
type ErrIdentifierRejected struct {
	Input string
}

func (e *ErrIdentifierRejected) Error() string {
	return fmt.Sprintf("identifier rejected: %q contains characters outside [a-z0-9_]", e.Input)
}

// ErrNotFound is the generic entity lookup failure for tenant-scoped rows.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %s", e.Entity, e.ID)
}

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}
