package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
)

type workspaceRepository struct {
	db *sql.DB
}

// NewWorkspaceRepository creates a PostgreSQL workspace registry repository.
// The registry lives in the shared schema; it is the only table here that is
// not tenant-scoped.
func NewWorkspaceRepository(db *sql.DB) domain.WorkspaceRepository {
	return &workspaceRepository{
		db: db,
	}
}

// checkSanitizedSlugExists reports whether any workspace's slug maps to the
// same sanitized schema fragment. Distinct slugs must map to distinct schema
// names, so "foo-bar" and "foo_bar" cannot coexist.
func (r *workspaceRepository) checkSanitizedSlugExists(ctx context.Context, slug string) (bool, error) {
	fragment, err := database.SanitizeSlug(slug)
	if err != nil {
		return false, err
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM workspaces WHERE replace(slug, '-', '_') = $1)`
	if err := r.db.QueryRowContext(ctx, query, fragment).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check workspace slug existence: %w", err)
	}
	return exists, nil
}

func (r *workspaceRepository) Create(ctx context.Context, workspace *domain.Workspace) error {
	if err := workspace.Validate(); err != nil {
		return err
	}

	exists, err := r.checkSanitizedSlugExists(ctx, workspace.Slug)
	if err != nil {
		return err
	}
	if exists {
		return domain.NewValidationError(fmt.Sprintf("workspace slug %q conflicts with an existing workspace", workspace.Slug))
	}

	now := time.Now().UTC()
	workspace.CreatedAt = now
	workspace.UpdatedAt = now
	workspace.Active = true

	query := `
		INSERT INTO workspaces (id, slug, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = r.db.ExecContext(ctx, query,
		workspace.ID,
		workspace.Slug,
		workspace.Name,
		workspace.Active,
		workspace.CreatedAt,
		workspace.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	return nil
}

func (r *workspaceRepository) GetBySlug(ctx context.Context, slug string) (*domain.Workspace, error) {
	query := `
		SELECT id, slug, name, active, created_at, updated_at, deleted_at
		FROM workspaces
		WHERE slug = $1 AND deleted_at IS NULL
	`
	workspace, err := domain.ScanWorkspace(r.db.QueryRowContext(ctx, query, slug))
	if err == sql.ErrNoRows {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return workspace, nil
}

func (r *workspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	query := `
		SELECT id, slug, name, active, created_at, updated_at, deleted_at
		FROM workspaces
		WHERE id = $1 AND deleted_at IS NULL
	`
	workspace, err := domain.ScanWorkspace(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, domain.ErrTenantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get workspace: %w", err)
	}
	return workspace, nil
}

func (r *workspaceRepository) List(ctx context.Context) ([]*domain.Workspace, error) {
	query := `
		SELECT id, slug, name, active, created_at, updated_at, deleted_at
		FROM workspaces
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var workspaces []*domain.Workspace
	for rows.Next() {
		workspace, err := domain.ScanWorkspace(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, workspace)
	}
	return workspaces, rows.Err()
}

// Update changes the workspace name. The slug is immutable once a schema has
// been provisioned from it: renaming would orphan the schema.
func (r *workspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) error {
	if err := workspace.Validate(); err != nil {
		return err
	}

	workspace.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE workspaces
		SET name = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query,
		workspace.Name,
		workspace.UpdatedAt,
		workspace.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update workspace: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

func (r *workspaceRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `
		UPDATE workspaces
		SET active = $1, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to set workspace active flag: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}

// Delete soft-deletes the registry row. Dropping the schema itself is a
// separate, explicit teardown owned by the deletion workflow.
func (r *workspaceRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE workspaces
		SET active = FALSE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return domain.ErrTenantNotFound
	}
	return nil
}
