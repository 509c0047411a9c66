package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
)

// defaultMessagePageSize bounds channel history pages when the caller does
// not ask for a specific limit.
const defaultMessagePageSize = 50

type messageRepository struct {
	tenantDB *database.TenantDB
}

// NewMessageRepository creates a PostgreSQL message repository routed through
// the tenant query router.
func NewMessageRepository(tenantDB *database.TenantDB) domain.MessageRepository {
	return &messageRepository{
		tenantDB: tenantDB,
	}
}

func messageSelectFields() []string {
	return []string{
		"id", "channel_id", "member_id", "content", "type",
		"thread_id", "is_edited", "created_at", "updated_at", "deleted_at",
	}
}

func (r *messageRepository) Create(ctx context.Context, workspace *domain.Workspace, message *domain.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}

	table, err := r.tenantDB.Table(workspace, "messages")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	message.CreatedAt = now
	message.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, channel_id, member_id, content, type, thread_id, is_edited, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, table)
	_, err = r.tenantDB.ExecContext(ctx, workspace, query,
		message.ID,
		message.ChannelID,
		message.MemberID,
		message.Content,
		message.Type,
		message.ThreadID,
		message.IsEdited,
		message.CreatedAt,
		message.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, workspace *domain.Workspace, id string) (*domain.Message, error) {
	table, err := r.tenantDB.Table(workspace, "messages")
	if err != nil {
		return nil, err
	}

	query, args, err := r.tenantDB.Builder().
		Select(messageSelectFields()...).
		From(table).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build message query: %w", err)
	}

	message, err := domain.ScanMessage(r.tenantDB.QueryRowContext(ctx, workspace, query, args...))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "message", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", r.tenantDB.WrapError(workspace, err))
	}
	return message, nil
}

// Update edits message content and marks the message edited. Deleted
// messages stay deleted.
func (r *messageRepository) Update(ctx context.Context, workspace *domain.Workspace, id, content string) error {
	if content == "" {
		return domain.NewValidationError("message content is required")
	}

	table, err := r.tenantDB.Table(workspace, "messages")
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET content = $1, is_edited = TRUE, updated_at = $2
		WHERE id = $3 AND deleted_at IS NULL
	`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, query, content, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update message: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "message", ID: id}
	}
	return nil
}

// Delete soft-deletes a message; the row remains for thread integrity.
func (r *messageRepository) Delete(ctx context.Context, workspace *domain.Workspace, id string) error {
	table, err := r.tenantDB.Table(workspace, "messages")
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "message", ID: id}
	}
	return nil
}

// ListByChannel pages channel history newest-first with a keyset cursor over
// (created_at, id), which stays stable as new messages arrive.
func (r *messageRepository) ListByChannel(ctx context.Context, workspace *domain.Workspace, channelID string, cursor *domain.MessageCursor, limit int) ([]*domain.Message, error) {
	table, err := r.tenantDB.Table(workspace, "messages")
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = defaultMessagePageSize
	}

	builder := r.tenantDB.Builder().
		Select(messageSelectFields()...).
		From(table).
		Where(sq.Eq{"channel_id": channelID}).
		Where(sq.Eq{"deleted_at": nil}).
		Where(sq.Eq{"thread_id": nil}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit))

	if cursor != nil {
		builder = builder.Where(
			sq.Expr("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID),
		)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build message list query: %w", err)
	}

	rows, err := r.tenantDB.QueryContext(ctx, workspace, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

// ListThread returns all replies under a thread root, oldest first.
func (r *messageRepository) ListThread(ctx context.Context, workspace *domain.Workspace, threadID string) ([]*domain.Message, error) {
	table, err := r.tenantDB.Table(workspace, "messages")
	if err != nil {
		return nil, err
	}

	query, args, err := r.tenantDB.Builder().
		Select(messageSelectFields()...).
		From(table).
		Where(sq.Eq{"thread_id": threadID}).
		Where(sq.Eq{"deleted_at": nil}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build thread query: %w", err)
	}

	rows, err := r.tenantDB.QueryContext(ctx, workspace, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list thread: %w", err)
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]*domain.Message, error) {
	var messages []*domain.Message
	for rows.Next() {
		message, err := domain.ScanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}
