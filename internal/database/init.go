package database

import (
	"context"
	"database/sql"
	"fmt"
)

// sharedTableDefinitions is the shared-schema table set: the workspace
// registry and the settings table used for migration version bookkeeping.
// Tenant-scoped tables never live here.
var sharedTableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS workspaces (
		id VARCHAR(36) PRIMARY KEY,
		slug VARCHAR(50) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		deleted_at TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_workspaces_active ON workspaces(active)`,
	`CREATE TABLE IF NOT EXISTS settings (
		key VARCHAR(255) PRIMARY KEY,
		value TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// InitializeDatabase creates the shared-schema tables if they don't exist.
func InitializeDatabase(ctx context.Context, db *sql.DB) error {
	for _, query := range sharedTableDefinitions {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create shared table: %w", err)
		}
	}
	return nil
}
