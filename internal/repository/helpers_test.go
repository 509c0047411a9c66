package repository

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/teamgrid/config"
	"github.com/teamgrid/teamgrid/internal/database"
	"github.com/teamgrid/teamgrid/internal/domain"
)

// setupMockDB creates a mock database connection for registry tests.
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
	}
	return db, mock, cleanup
}

// setupTenantDB creates a tenant query router over a mock connection with
// the conventional schema prefix.
func setupTenantDB(t *testing.T) (*database.TenantDB, sqlmock.Sqlmock, func()) {
	db, mock, cleanup := setupMockDB(t)
	tenantDB := database.NewTenantDB(db, &config.DatabaseConfig{SchemaPrefix: "workspace_"})
	return tenantDB, mock, cleanup
}

// testWorkspace returns an active workspace fixture whose slug maps to the
// schema workspace_acme_corp.
func testWorkspace() *domain.Workspace {
	return &domain.Workspace{
		ID:     "7f2c7e56-9d6a-4b86-8f0e-5a2b6f1c03d9",
		Slug:   "acme-corp",
		Name:   "Acme Corp",
		Active: true,
	}
}
