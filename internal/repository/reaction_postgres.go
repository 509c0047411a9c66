package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
)

type reactionRepository struct {
	tenantDB *database.TenantDB
}

// NewReactionRepository creates a PostgreSQL reaction repository routed
// through the tenant query router.
func NewReactionRepository(tenantDB *database.TenantDB) domain.ReactionRepository {
	return &reactionRepository{
		tenantDB: tenantDB,
	}
}

// Toggle adds the reaction if absent and removes it otherwise. The insert
// leans on the (message_id, member_id, emoji) unique constraint: DO NOTHING
// plus RowsAffected tells us whether the reaction was already there without a
// read-modify-write race.
func (r *reactionRepository) Toggle(ctx context.Context, workspace *domain.Workspace, reaction *domain.Reaction) (bool, error) {
	if err := reaction.Validate(); err != nil {
		return false, err
	}

	table, err := r.tenantDB.Table(workspace, "reactions")
	if err != nil {
		return false, err
	}

	insertQuery := fmt.Sprintf(`
		INSERT INTO %s (id, message_id, member_id, emoji, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (message_id, member_id, emoji) DO NOTHING
	`, table)
	result, err := r.tenantDB.ExecContext(ctx, workspace, insertQuery,
		reaction.ID,
		reaction.MessageID,
		reaction.MemberID,
		reaction.Emoji,
		time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to add reaction: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	// Already present: toggle off.
	deleteQuery := fmt.Sprintf(`
		DELETE FROM %s WHERE message_id = $1 AND member_id = $2 AND emoji = $3
	`, table)
	if _, err := r.tenantDB.ExecContext(ctx, workspace, deleteQuery,
		reaction.MessageID,
		reaction.MemberID,
		reaction.Emoji,
	); err != nil {
		return false, fmt.Errorf("failed to remove reaction: %w", err)
	}
	return false, nil
}

func (r *reactionRepository) ListByMessage(ctx context.Context, workspace *domain.Workspace, messageID string) ([]*domain.Reaction, error) {
	table, err := r.tenantDB.Table(workspace, "reactions")
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, message_id, member_id, emoji, created_at
		FROM %s
		WHERE message_id = $1
		ORDER BY created_at
	`, table)
	rows, err := r.tenantDB.QueryContext(ctx, workspace, query, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reactions: %w", err)
	}
	defer rows.Close()

	var reactions []*domain.Reaction
	for rows.Next() {
		var reaction domain.Reaction
		err := rows.Scan(
			&reaction.ID,
			&reaction.MessageID,
			&reaction.MemberID,
			&reaction.Emoji,
			&reaction.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reaction: %w", err)
		}
		reactions = append(reactions, &reaction)
	}
	return reactions, rows.Err()
}
