package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
)

type memberRepository struct {
	tenantDB *database.TenantDB
}

// NewMemberRepository creates a PostgreSQL member repository routed through
// the tenant query router.
func NewMemberRepository(tenantDB *database.TenantDB) domain.MemberRepository {
	return &memberRepository{
		tenantDB: tenantDB,
	}
}

func memberSelectFields() string {
	return `id, user_id, display_name, role, is_active, joined_at`
}

// Add inserts a member row. Re-adding a user who already has an active
// member row is rejected by the partial unique index on user_id.
func (r *memberRepository) Add(ctx context.Context, workspace *domain.Workspace, member *domain.Member) error {
	if err := member.Validate(); err != nil {
		return err
	}

	table, err := r.tenantDB.Table(workspace, "members")
	if err != nil {
		return err
	}

	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, display_name, role, is_active, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table)
	_, err = r.tenantDB.ExecContext(ctx, workspace, query,
		member.ID,
		member.UserID,
		member.DisplayName,
		member.Role,
		member.IsActive,
		member.JoinedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *memberRepository) GetByID(ctx context.Context, workspace *domain.Workspace, id string) (*domain.Member, error) {
	table, err := r.tenantDB.Table(workspace, "members")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, memberSelectFields(), table)
	member, err := domain.ScanMember(r.tenantDB.QueryRowContext(ctx, workspace, query, id))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "member", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", r.tenantDB.WrapError(workspace, err))
	}
	return member, nil
}

func (r *memberRepository) GetByUserID(ctx context.Context, workspace *domain.Workspace, userID string) (*domain.Member, error) {
	table, err := r.tenantDB.Table(workspace, "members")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE user_id = $1 AND is_active`, memberSelectFields(), table)
	member, err := domain.ScanMember(r.tenantDB.QueryRowContext(ctx, workspace, query, userID))
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "member", ID: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by user: %w", r.tenantDB.WrapError(workspace, err))
	}
	return member, nil
}

func (r *memberRepository) List(ctx context.Context, workspace *domain.Workspace) ([]*domain.Member, error) {
	table, err := r.tenantDB.Table(workspace, "members")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY joined_at`, memberSelectFields(), table)
	rows, err := r.tenantDB.QueryContext(ctx, workspace, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		member, err := domain.ScanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

func (r *memberRepository) Deactivate(ctx context.Context, workspace *domain.Workspace, id string) error {
	table, err := r.tenantDB.Table(workspace, "members")
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`UPDATE %s SET is_active = FALSE WHERE id = $1 AND is_active`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate member: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return &domain.ErrNotFound{Entity: "member", ID: id}
	}
	return nil
}
