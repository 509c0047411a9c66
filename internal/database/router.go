package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/teamgrid/teamgrid/config"
	"github.com/teamgrid/teamgrid/internal/domain"
)

// TenantDB routes tenant-scoped queries to the correct workspace schema. All
// connections come from one shared pool; isolation is enforced by qualifying
// every table reference per statement rather than by session state, so a
// pooled connection can serve one workspace's query immediately followed by
// another's with nothing to clean up in between.
//
// The schema name is re-derived from the resolved workspace on every call.
// Nothing here caches a qualified string across requests, so a stale or
// forged workspace value cannot be replayed against a different schema.
type TenantDB struct {
	db     *sql.DB
	prefix string
}

// NewTenantDB creates a tenant query router over the shared pool.
func NewTenantDB(db *sql.DB, cfg *config.DatabaseConfig) *TenantDB {
	return &TenantDB{
		db:     db,
		prefix: cfg.SchemaPrefix,
	}
}

// DB exposes the underlying pool for shared-schema access.
func (t *TenantDB) DB() *sql.DB {
	return t.db
}

// Table returns the schema-qualified name of a tenant table for the resolved
// workspace, e.g. "workspace_acme_corp.messages". It refuses to produce a
// name for an unresolved or inactive workspace: referential integrity
// between tenant rows and the registry is procedural, and this is where it
// is enforced.
func (t *TenantDB) Table(workspace *domain.Workspace, table string) (string, error) {
	schema, err := t.schemaFor(workspace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s.%s", schema, table), nil
}

func (t *TenantDB) schemaFor(workspace *domain.Workspace) (SchemaName, error) {
	if workspace == nil {
		return "", domain.ErrMissingTenant
	}
	if !workspace.Active || workspace.DeletedAt != nil {
		return "", domain.ErrTenantInactive
	}
	return SchemaNameFor(t.prefix, workspace.Slug)
}

// Builder returns a squirrel statement builder with Postgres placeholders.
// Value inputs go through the builder as bound parameters; identifier text
// only ever comes from Table.
func (t *TenantDB) Builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

// ExecContext executes a tenant-scoped statement. The query must reference
// tables through Table; args are always bound parameters.
func (t *TenantDB) ExecContext(ctx context.Context, workspace *domain.Workspace, query string, args ...interface{}) (sql.Result, error) {
	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, t.WrapError(workspace, err)
	}
	return result, nil
}

// QueryContext runs a tenant-scoped query returning rows.
func (t *TenantDB) QueryContext(ctx context.Context, workspace *domain.Workspace, query string, args ...interface{}) (*sql.Rows, error) {
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, t.WrapError(workspace, err)
	}
	return rows, nil
}

// QueryRowContext runs a tenant-scoped single-row query. Errors surface at
// Scan time; callers pass them through WrapError so a missing schema is still
// distinguishable.
func (t *TenantDB) QueryRowContext(ctx context.Context, workspace *domain.Workspace, query string, args ...interface{}) *sql.Row {
	return t.db.QueryRowContext(ctx, query, args...)
}

// WrapError maps the Postgres errors that mean "the registry points at a
// schema that isn't there" (invalid_schema_name, undefined_table) to
// ErrTenantSchemaMissing, so callers can decide between lazy provisioning
// and hard failure instead of treating it as a generic SQL error.
func (t *TenantDB) WrapError(workspace *domain.Workspace, err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "3F000", "42P01":
			slug := ""
			if workspace != nil {
				slug = workspace.Slug
			}
			return &domain.ErrTenantSchemaMissing{Slug: slug, Err: err}
		}
	}
	return err
}
