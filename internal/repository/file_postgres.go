package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
)

type fileRepository struct {
	tenantDB *database.TenantDB
}

// NewFileRepository creates a PostgreSQL file metadata repository routed
// through the tenant query router.
func NewFileRepository(tenantDB *database.TenantDB) domain.FileRepository {
	return &fileRepository{
		tenantDB: tenantDB,
	}
}

func fileSelectFields() string {
	return `id, channel_id, member_id, file_name, file_size, mime_type, storage_key, created_at`
}

func (r *fileRepository) Create(ctx context.Context, workspace *domain.Workspace, file *domain.File) error {
	if err := file.Validate(); err != nil {
		return err
	}

	table, err := r.tenantDB.Table(workspace, "files")
	if err != nil {
		return err
	}

	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, channel_id, member_id, file_name, file_size, mime_type, storage_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, table)
	_, err = r.tenantDB.ExecContext(ctx, workspace, query,
		file.ID,
		file.ChannelID,
		file.MemberID,
		file.FileName,
		file.FileSize,
		file.MimeType,
		file.StorageKey,
		file.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, workspace *domain.Workspace, id string) (*domain.File, error) {
	table, err := r.tenantDB.Table(workspace, "files")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileSelectFields(), table)
	file, err := domain.ScanFile(r.tenantDB.QueryRowContext(ctx, workspace, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "file", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", r.tenantDB.WrapError(workspace, err))
	}
	return file, nil
}

func (r *fileRepository) ListByChannel(ctx context.Context, workspace *domain.Workspace, channelID string) ([]*domain.File, error) {
	table, err := r.tenantDB.Table(workspace, "files")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE channel_id = $1 ORDER BY created_at DESC`, fileSelectFields(), table)
	rows, err := r.tenantDB.QueryContext(ctx, workspace, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer rows.Close()

	var files []*domain.File
	for rows.Next() {
		file, err := domain.ScanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (r *fileRepository) Delete(ctx context.Context, workspace *domain.Workspace, id string) error {
	table, err := r.tenantDB.Table(workspace, "files")
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "file", ID: id}
	}
	return nil
}
