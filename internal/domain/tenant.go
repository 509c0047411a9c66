package domain

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// slugPattern is the workspace slug grammar: lowercase alphanumerics and
// hyphens, 3-50 characters, no leading or trailing hyphen. The slug is the
// only user-influenced input that ever reaches schema naming, so the grammar
// is enforced at creation time and again by the sanitizer.
var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{1,48})[a-z0-9]$`)

// Workspace is a tenant: one isolated customer workspace. The row lives in
// the shared schema; all of the workspace's collaboration data lives in its
// own database schema derived from the slug.
type Workspace struct {
	ID        string     `json:"id"`
	Slug      string     `json:"slug"`
	Name      string     `json:"name"`
	Active    bool       `json:"active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Validate checks the workspace fields against the creation rules. The slug
// is immutable once a schema has been provisioned from it, so Validate is the
// last gate before provisioning.
func (w *Workspace) Validate() error {
	if w.ID == "" {
		return NewValidationError("workspace id is required")
	}
	if w.Name == "" {
		return NewValidationError("workspace name is required")
	}
	if err := ValidateSlug(w.Slug); err != nil {
		return err
	}
	return nil
}

// ValidateSlug enforces the workspace slug grammar.
func ValidateSlug(slug string) error {
	if len(slug) < 3 || len(slug) > 50 {
		return NewValidationError("workspace slug must be 3-50 characters")
	}
	if strings.Contains(slug, "--") {
		return NewValidationError("workspace slug must not contain consecutive hyphens")
	}
	if !slugPattern.MatchString(slug) {
		return NewValidationError(fmt.Sprintf("workspace slug %q must be lowercase alphanumerics and hyphens", slug))
	}
	return nil
}

// ScanWorkspace scans a workspace row from any scanner (row or rows).
func ScanWorkspace(scanner interface {
	Scan(dest ...interface{}) error
}) (*Workspace, error) {
	var w Workspace
	err := scanner.Scan(
		&w.ID,
		&w.Slug,
		&w.Name,
		&w.Active,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// WorkspaceRepository is the tenant registry in the shared schema.
type WorkspaceRepository interface {
	Create(ctx context.Context, workspace *Workspace) error
	GetBySlug(ctx context.Context, slug string) (*Workspace, error)
	GetByID(ctx context.Context, id string) (*Workspace, error)
	List(ctx context.Context) ([]*Workspace, error)
	Update(ctx context.Context, workspace *Workspace) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// SchemaProvisioner creates and destroys a workspace's isolated schema.
type SchemaProvisioner interface {
	// CreateTenantSchema creates the workspace schema and its fixed table
	// set. Idempotent; safe to re-run against a partially created schema.
	CreateTenantSchema(ctx context.Context, slug string) error

	// EnsureTenantSchema lazily provisions the schema if a query found it
	// missing, e.g. after reactivation of a workspace whose schema was
	// reaped by data retention.
	EnsureTenantSchema(ctx context.Context, slug string) error

	// DropTenantSchema drops the workspace schema and everything in it.
	// Irreversible; last step of the workspace deletion workflow.
	DropTenantSchema(ctx context.Context, slug string) error
}

type contextKey string

const workspaceContextKey contextKey = "workspace"

// WithWorkspace returns a context carrying the resolved workspace. Resolution
// happens once per request, before any tenant-scoped query runs; the value is
// immutable after attach.
func WithWorkspace(ctx context.Context, w *Workspace) context.Context {
	return context.WithValue(ctx, workspaceContextKey, w)
}

// WorkspaceFromContext returns the resolved workspace, or nil if the request
// resolved without one (tenant-optional and tenant-forbidden routes).
func WorkspaceFromContext(ctx context.Context) *Workspace {
	w, _ := ctx.Value(workspaceContextKey).(*Workspace)
	return w
}
