package database

import (
	"context"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/teamgrid/config"
	"github.com/teamgrid/teamgrid/internal/domain"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

func setupProvisioner(t *testing.T) (*Provisioner, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	provisioner := NewProvisioner(db, &config.DatabaseConfig{SchemaPrefix: "workspace_"}, logger.NewTestLogger(t))
	return provisioner, mock, func() { db.Close() }
}

// expectProvisionDDL queues the full schema-plus-tables statement sequence for
// the workspace_acme_corp schema.
func expectProvisionDDL(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS workspace_acme_corp`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	for range tenantTableDefinitions {
		mock.ExpectExec(`workspace_acme_corp\.`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}
}

func TestCreateTenantSchema(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	expectProvisionDDL(mock)

	err := provisioner.CreateTenantSchema(context.Background(), "acme-corp")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTenantSchema_Idempotent(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	expectProvisionDDL(mock)
	expectProvisionDDL(mock)

	require.NoError(t, provisioner.CreateTenantSchema(context.Background(), "acme-corp"))
	require.NoError(t, provisioner.CreateTenantSchema(context.Background(), "acme-corp"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTenantSchema_DuplicateObjectRaceIsSuccess(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	// Another process won the race on the schema and the first table; the
	// remaining statements go through normally.
	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS workspace_acme_corp`).
		WillReturnError(&pq.Error{Code: "42P06"})
	mock.ExpectExec(`workspace_acme_corp\.members`).
		WillReturnError(&pq.Error{Code: "42P07"})
	for range tenantTableDefinitions[1:] {
		mock.ExpectExec(`workspace_acme_corp\.`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	err := provisioner.CreateTenantSchema(context.Background(), "acme-corp")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTenantSchema_RealErrorSurfaces(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	mock.ExpectExec(`CREATE SCHEMA IF NOT EXISTS workspace_acme_corp`).
		WillReturnError(&pq.Error{Code: "42501", Message: "permission denied"})

	err := provisioner.CreateTenantSchema(context.Background(), "acme-corp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "acme-corp")
}

func TestCreateTenantSchema_InvalidSlug(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	err := provisioner.CreateTenantSchema(context.Background(), "acme corp")
	require.Error(t, err)

	var rejected *domain.ErrIdentifierRejected
	assert.ErrorAs(t, err, &rejected)
	require.NoError(t, mock.ExpectationsWereMet(), "no DDL should run for a rejected slug")
}

func TestCreateTenantSchema_ConcurrentCallsBothSucceed(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	// In-process concurrent calls are deduplicated, so either one or two DDL
	// rounds may execute. Queue two and only assert both callers see success.
	mock.MatchExpectationsInOrder(false)
	expectProvisionDDL(mock)
	expectProvisionDDL(mock)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = provisioner.CreateTenantSchema(context.Background(), "acme-corp")
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
}

func TestEnsureTenantSchema(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	expectProvisionDDL(mock)

	err := provisioner.EnsureTenantSchema(context.Background(), "acme-corp")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropTenantSchema(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	mock.ExpectExec(`DROP SCHEMA IF EXISTS workspace_acme_corp CASCADE`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := provisioner.DropTenantSchema(context.Background(), "acme-corp")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDropTenantSchema_InvalidSlug(t *testing.T) {
	provisioner, mock, cleanup := setupProvisioner(t)
	defer cleanup()

	err := provisioner.DropTenantSchema(context.Background(), "Acme")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
