package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/sync/singleflight"

	"github.com/teamgrid/teamgrid/config"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// tenantTableDefinitions is the current shape of a workspace schema, as
// CREATE-IF-NOT-EXISTS statements with a single %s placeholder for the schema
// name. Provisioning issues this DDL directly instead of replaying the
// migration history: workspaces are created far more often than the shape
// changes. Whenever the shape changes, the additive migration registry must
// be updated in the same change.
var tenantTableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS %[1]s.members (
		id VARCHAR(36) PRIMARY KEY,
		user_id VARCHAR(36) NOT NULL,
		display_name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(20) NOT NULL DEFAULT 'member',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_active_user ON %[1]s.members(user_id) WHERE is_active`,
	`CREATE TABLE IF NOT EXISTS %[1]s.channels (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(80) NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		is_private BOOLEAN NOT NULL DEFAULT FALSE,
		created_by VARCHAR(36) NOT NULL REFERENCES %[1]s.members(id),
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]s.channel_members (
		channel_id VARCHAR(36) NOT NULL REFERENCES %[1]s.channels(id) ON DELETE CASCADE,
		member_id VARCHAR(36) NOT NULL REFERENCES %[1]s.members(id) ON DELETE CASCADE,
		joined_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (channel_id, member_id)
	)`,
	`CREATE TABLE IF NOT EXISTS %[1]s.messages (
		id VARCHAR(36) PRIMARY KEY,
		channel_id VARCHAR(36) NOT NULL REFERENCES %[1]s.channels(id) ON DELETE CASCADE,
		member_id VARCHAR(36) NOT NULL REFERENCES %[1]s.members(id),
		content TEXT NOT NULL,
		type VARCHAR(20) NOT NULL DEFAULT 'text',
		thread_id VARCHAR(36) REFERENCES %[1]s.messages(id),
		is_edited BOOLEAN NOT NULL DEFAULT FALSE,
		is_pinned BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_channel_created ON %[1]s.messages(channel_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_thread ON %[1]s.messages(thread_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_pinned ON %[1]s.messages(channel_id) WHERE is_pinned`,
	`CREATE TABLE IF NOT EXISTS %[1]s.files (
		id VARCHAR(36) PRIMARY KEY,
		channel_id VARCHAR(36) NOT NULL REFERENCES %[1]s.channels(id) ON DELETE CASCADE,
		member_id VARCHAR(36) NOT NULL REFERENCES %[1]s.members(id),
		file_name VARCHAR(255) NOT NULL,
		file_size BIGINT NOT NULL,
		mime_type VARCHAR(255) NOT NULL DEFAULT '',
		storage_key VARCHAR(512) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_files_channel ON %[1]s.files(channel_id)`,
	`CREATE TABLE IF NOT EXISTS %[1]s.reactions (
		id VARCHAR(36) PRIMARY KEY,
		message_id VARCHAR(36) NOT NULL REFERENCES %[1]s.messages(id) ON DELETE CASCADE,
		member_id VARCHAR(36) NOT NULL REFERENCES %[1]s.members(id) ON DELETE CASCADE,
		emoji VARCHAR(32) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (message_id, member_id, emoji)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reactions_message ON %[1]s.reactions(message_id)`,
}

// Provisioner creates and drops workspace schemas in the shared database.
type Provisioner struct {
	db     *sql.DB
	cfg    *config.DatabaseConfig
	logger logger.Logger

	// group deduplicates concurrent first-use provisioning of the same
	// workspace within this process. Cross-process races are handled by
	// treating duplicate-object errors as success.
	group singleflight.Group
}

// NewProvisioner creates a schema provisioner bound to the shared pool.
func NewProvisioner(db *sql.DB, cfg *config.DatabaseConfig, logger logger.Logger) *Provisioner {
	return &Provisioner{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateTenantSchema creates the workspace schema and its fixed table set.
// Every statement uses IF NOT EXISTS semantics, so the sequence is idempotent
// and resumable: a crash mid-provisioning is recovered by running it again,
// and two concurrent calls for the same new workspace both succeed with
// exactly one schema created.
func (p *Provisioner) CreateTenantSchema(ctx context.Context, slug string) error {
	schema, err := SchemaNameFor(p.cfg.SchemaPrefix, slug)
	if err != nil {
		return err
	}

	_, err, _ = p.group.Do(string(schema), func() (interface{}, error) {
		return nil, p.provision(ctx, schema)
	})
	if err != nil {
		return fmt.Errorf("failed to provision schema for workspace %s: %w", slug, err)
	}

	p.logger.WithField("slug", slug).Info("Workspace schema provisioned")
	return nil
}

func (p *Provisioner) provision(ctx context.Context, schema SchemaName) error {
	createSchema := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)
	if _, err := p.db.ExecContext(ctx, createSchema); err != nil && !isBenignProvisionError(err) {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for _, stmt := range tenantTableDefinitions {
		query := fmt.Sprintf(stmt, schema)
		if _, err := p.db.ExecContext(ctx, query); err != nil && !isBenignProvisionError(err) {
			return fmt.Errorf("failed to create workspace table: %w", err)
		}
	}

	return nil
}

// EnsureTenantSchema lazily provisions the schema for a workspace whose
// queries reported the schema missing. Reactivating a workspace whose schema
// was reaped by data retention rebuilds it empty; a still-present schema is
// left untouched.
func (p *Provisioner) EnsureTenantSchema(ctx context.Context, slug string) error {
	return p.CreateTenantSchema(ctx, slug)
}

// DropTenantSchema drops the workspace schema and all its tables.
// Irreversible; the caller owns confirming deactivation and export first.
func (p *Provisioner) DropTenantSchema(ctx context.Context, slug string) error {
	schema, err := SchemaNameFor(p.cfg.SchemaPrefix, slug)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", schema)
	if _, err := p.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to drop schema for workspace %s: %w", slug, err)
	}

	p.logger.WithField("slug", slug).Warn("Workspace schema dropped")
	return nil
}

// isBenignProvisionError reports whether err is the duplicate-object class
// raised when two connections race the same IF NOT EXISTS statement. Postgres
// checks existence before taking the lock, so the loser of the race can still
// see duplicate_schema (42P06), duplicate_table (42P07) or a unique violation
// on pg_type (23505). These mean the object exists, which is the goal state.
func isBenignProvisionError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch pqErr.Code {
	case "42P06", "42P07", "23505":
		return true
	}
	return false
}
