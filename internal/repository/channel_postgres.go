package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
)

type channelRepository struct {
	tenantDB *database.TenantDB
}

// NewChannelRepository creates a PostgreSQL channel repository routed through
// the tenant query router.
func NewChannelRepository(tenantDB *database.TenantDB) domain.ChannelRepository {
	return &channelRepository{
		tenantDB: tenantDB,
	}
}

func channelSelectFields() string {
	return `id, name, description, is_private, created_by, created_at, updated_at`
}

func (r *channelRepository) Create(ctx context.Context, workspace *domain.Workspace, channel *domain.Channel) error {
	if err := channel.Validate(); err != nil {
		return err
	}

	table, err := r.tenantDB.Table(workspace, "channels")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	channel.CreatedAt = now
	channel.UpdatedAt = now

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, description, is_private, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, table)
	_, err = r.tenantDB.ExecContext(ctx, workspace, query,
		channel.ID,
		channel.Name,
		channel.Description,
		channel.IsPrivate,
		channel.CreatedBy,
		channel.CreatedAt,
		channel.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	return nil
}

func (r *channelRepository) GetByID(ctx context.Context, workspace *domain.Workspace, id string) (*domain.Channel, error) {
	table, err := r.tenantDB.Table(workspace, "channels")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, channelSelectFields(), table)
	channel, err := domain.ScanChannel(r.tenantDB.QueryRowContext(ctx, workspace, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "channel", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", r.tenantDB.WrapError(workspace, err))
	}
	return channel, nil
}

func (r *channelRepository) List(ctx context.Context, workspace *domain.Workspace) ([]*domain.Channel, error) {
	table, err := r.tenantDB.Table(workspace, "channels")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY name`, channelSelectFields(), table)
	rows, err := r.tenantDB.QueryContext(ctx, workspace, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	defer rows.Close()

	var channels []*domain.Channel
	for rows.Next() {
		channel, err := domain.ScanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

func (r *channelRepository) Update(ctx context.Context, workspace *domain.Workspace, channel *domain.Channel) error {
	if err := channel.Validate(); err != nil {
		return err
	}

	table, err := r.tenantDB.Table(workspace, "channels")
	if err != nil {
		return err
	}

	channel.UpdatedAt = time.Now().UTC()

	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, description = $2, is_private = $3, updated_at = $4
		WHERE id = $5
	`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, query,
		channel.Name,
		channel.Description,
		channel.IsPrivate,
		channel.UpdatedAt,
		channel.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update channel: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "channel", ID: channel.ID}
	}
	return nil
}

func (r *channelRepository) Delete(ctx context.Context, workspace *domain.Workspace, id string) error {
	table, err := r.tenantDB.Table(workspace, "channels")
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "channel", ID: id}
	}
	return nil
}

func (r *channelRepository) AddMember(ctx context.Context, workspace *domain.Workspace, channelID, memberID string) error {
	table, err := r.tenantDB.Table(workspace, "channel_members")
	if err != nil {
		return err
	}

	// Joining an already-joined channel is a no-op, not an error.
	query := fmt.Sprintf(`
		INSERT INTO %s (channel_id, member_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id, member_id) DO NOTHING
	`, table)
	_, err = r.tenantDB.ExecContext(ctx, workspace, query, channelID, memberID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add channel member: %w", err)
	}
	return nil
}

func (r *channelRepository) RemoveMember(ctx context.Context, workspace *domain.Workspace, channelID, memberID string) error {
	table, err := r.tenantDB.Table(workspace, "channel_members")
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE channel_id = $1 AND member_id = $2`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, query, channelID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove channel member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "channel member", ID: memberID}
	}
	return nil
}

func (r *channelRepository) ListMembers(ctx context.Context, workspace *domain.Workspace, channelID string) ([]*domain.ChannelMember, error) {
	table, err := r.tenantDB.Table(workspace, "channel_members")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT channel_id, member_id, joined_at
		FROM %s
		WHERE channel_id = $1
		ORDER BY joined_at
	`, table)
	rows, err := r.tenantDB.QueryContext(ctx, workspace, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channel members: %w", err)
	}
	defer rows.Close()

	var members []*domain.ChannelMember
	for rows.Next() {
		var cm domain.ChannelMember
		if err := rows.Scan(&cm.ChannelID, &cm.MemberID, &cm.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel member: %w", err)
		}
		members = append(members, &cm)
	}
	return members, rows.Err()
}

func (r *channelRepository) IsMember(ctx context.Context, workspace *domain.Workspace, channelID, memberID string) (bool, error) {
	table, err := r.tenantDB.Table(workspace, "channel_members")
	if err != nil {
		return false, err
	}

	var exists bool
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE channel_id = $1 AND member_id = $2)`, table)
	err = r.tenantDB.QueryRowContext(ctx, workspace, query, channelID, memberID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check channel membership: %w", r.tenantDB.WrapError(workspace, err))
	}
	return exists, nil
}
