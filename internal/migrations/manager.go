package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/teamgrid/teamgrid/config"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

// advisoryLockKey identifies the migration run in pg_advisory_lock. One
// runner at a time across all processes sharing the database: concurrent
// runs are not idempotent with respect to each other's in-flight DDL.
const advisoryLockKey = 874002371

// Manager applies registered additive migrations to the shared schema and to
// every tenant schema matching the naming convention. Invoked out-of-band
// (startup flag), never from the request path.
type Manager struct {
	db     *sql.DB
	cfg    *config.DatabaseConfig
	logger logger.Logger
}

// NewManager creates a new migration manager.
func NewManager(db *sql.DB, cfg *config.DatabaseConfig, logger logger.Logger) *Manager {
	return &Manager{
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// GetCurrentDBVersion retrieves the recorded version from the settings table.
func (m *Manager) GetCurrentDBVersion(ctx context.Context) (int, bool, error) {
	var versionStr string
	err := m.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = 'db_version'").Scan(&versionStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get current database version: %w", err)
	}

	version, err := strconv.Atoi(versionStr)
	if err != nil {
		return 0, false, fmt.Errorf("invalid database version format %q: %w", versionStr, err)
	}
	return version, true, nil
}

// SetCurrentDBVersion records the version in the settings table.
func (m *Manager) SetCurrentDBVersion(ctx context.Context, version int) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ('db_version', $1)
		ON CONFLICT (key) DO UPDATE SET
			value = $1,
			updated_at = CURRENT_TIMESTAMP
	`, strconv.Itoa(version))
	if err != nil {
		return fmt.Errorf("failed to set database version to %d: %w", version, err)
	}

	m.logger.WithField("version", version).Info("Database version updated")
	return nil
}

// Run executes all migrations newer than the recorded database version,
// holding the advisory lock for the whole run.
func (m *Manager) Run(ctx context.Context) error {
	m.logger.Info("Starting migration process")

	if _, err := m.db.ExecContext(ctx, "SELECT pg_advisory_lock($1)", advisoryLockKey); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if _, err := m.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockKey); err != nil {
			m.logger.WithField("error", err.Error()).Error("Failed to release migration lock")
		}
	}()

	currentDBVersion, versionExists, err := m.GetCurrentDBVersion(ctx)
	if err != nil {
		return err
	}

	codeVersion := CurrentCodeVersion()

	// First run: the provisioner already creates schemas at the current
	// shape, so just record the version.
	if !versionExists {
		m.logger.WithField("code_version", codeVersion).Info("First run detected, initializing database version")
		return m.SetCurrentDBVersion(ctx, codeVersion)
	}

	m.logger.WithField("db_version", currentDBVersion).
		WithField("code_version", codeVersion).
		Info("Version comparison")

	if currentDBVersion >= codeVersion {
		m.logger.Info("Database is up to date, no migrations needed")
		return nil
	}

	schemas, err := m.listTenantSchemas(ctx)
	if err != nil {
		return err
	}

	for _, migration := range GetRegisteredMigrations() {
		if migration.Version() <= currentDBVersion || migration.Version() > codeVersion {
			continue
		}
		if err := m.executeMigration(ctx, migration, schemas); err != nil {
			return fmt.Errorf("migration failed for version %d: %w", migration.Version(), err)
		}
	}

	if err := m.SetCurrentDBVersion(ctx, codeVersion); err != nil {
		return fmt.Errorf("failed to update database version after migrations: %w", err)
	}

	m.logger.WithField("version", codeVersion).Info("Migration process completed successfully")
	return nil
}

// executeMigration applies one change set: shared-schema statements first,
// then the tenant statements against each schema. Fragments are idempotent,
// so a schema that already received part of the set from an interrupted run
// is simply caught up.
func (m *Manager) executeMigration(ctx context.Context, migration AdditiveMigration, schemas []string) error {
	m.logger.WithField("version", migration.Version()).Info("Executing migration")

	for _, stmt := range migration.SystemStatements() {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("system migration statement failed: %w", err)
		}
	}

	for _, schema := range schemas {
		for _, stmt := range migration.TenantStatements() {
			query := fmt.Sprintf(stmt, schema)
			if _, err := m.db.ExecContext(ctx, query); err != nil {
				return fmt.Errorf("tenant migration statement failed for schema %s: %w", schema, err)
			}
		}
		m.logger.WithField("schema", schema).
			WithField("version", migration.Version()).
			Debug("Tenant schema migrated")
	}

	return nil
}

// listTenantSchemas enumerates the schemas matching the tenant naming
// convention from the database catalog. The prefix filter uses the same
// configured prefix the provisioner uses; nothing else may create schemas
// under it.
func (m *Manager) listTenantSchemas(ctx context.Context) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name LIKE $1
		ORDER BY schema_name
	`, m.cfg.SchemaPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant schemas: %w", err)
	}
	defer rows.Close()

	var schemas []string
	for rows.Next() {
		var schema string
		if err := rows.Scan(&schema); err != nil {
			return nil, fmt.Errorf("failed to scan schema name: %w", err)
		}
		schemas = append(schemas, schema)
	}
	return schemas, rows.Err()
}
