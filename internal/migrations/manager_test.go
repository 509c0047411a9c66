package migrations

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/teamgrid/config"
	"github.com/teamgrid/teamgrid/pkg/logger"
)

func setupManager(t *testing.T) (*Manager, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	manager := NewManager(db, &config.DatabaseConfig{SchemaPrefix: "workspace_"}, logger.NewTestLogger(t))
	return manager, mock, func() { db.Close() }
}

func expectLock(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`SELECT pg_advisory_lock\(\$1\)`).
		WithArgs(int64(advisoryLockKey)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func expectUnlock(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`SELECT pg_advisory_unlock\(\$1\)`).
		WithArgs(int64(advisoryLockKey)).
		WillReturnResult(sqlmock.NewResult(0, 0))
}

func TestManager_GetCurrentDBVersion(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = 'db_version'`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("2"))

	version, exists, err := manager.GetCurrentDBVersion(context.Background())
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, 2, version)
}

func TestManager_GetCurrentDBVersion_Unset(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = 'db_version'`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	version, exists, err := manager.GetCurrentDBVersion(context.Background())
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, version)
}

func TestManager_GetCurrentDBVersion_Malformed(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT value FROM settings WHERE key = 'db_version'`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("two"))

	_, _, err := manager.GetCurrentDBVersion(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid database version format")
}

func TestManager_SetCurrentDBVersion(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	mock.ExpectExec(`INSERT INTO settings \(key, value\) VALUES \('db_version', \$1\)`).
		WithArgs("2").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := manager.SetCurrentDBVersion(context.Background(), 2)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_Run_FirstRunRecordsVersion(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	expectLock(mock)
	mock.ExpectQuery(`SELECT value FROM settings WHERE key = 'db_version'`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUnlock(mock)

	err := manager.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_Run_UpToDate(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	expectLock(mock)
	mock.ExpectQuery(`SELECT value FROM settings WHERE key = 'db_version'`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("2"))
	expectUnlock(mock)

	err := manager.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_Run_AppliesPendingToEveryTenantSchema(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	expectLock(mock)
	mock.ExpectQuery(`SELECT value FROM settings WHERE key = 'db_version'`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("1"))
	mock.ExpectQuery(`SELECT schema_name FROM information_schema\.schemata`).
		WithArgs("workspace_%").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}).
			AddRow("workspace_acme_corp").
			AddRow("workspace_globex"))

	// v2 has two tenant statements, applied per schema.
	mock.ExpectExec(`ALTER TABLE workspace_acme_corp\.messages ADD COLUMN IF NOT EXISTS is_pinned`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_messages_pinned ON workspace_acme_corp\.messages`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`ALTER TABLE workspace_globex\.messages ADD COLUMN IF NOT EXISTS is_pinned`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_messages_pinned ON workspace_globex\.messages`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	mock.ExpectExec(`INSERT INTO settings`).
		WithArgs("2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUnlock(mock)

	err := manager.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestManager_Run_StatementFailureAborts(t *testing.T) {
	manager, mock, cleanup := setupManager(t)
	defer cleanup()

	expectLock(mock)
	mock.ExpectQuery(`SELECT value FROM settings WHERE key = 'db_version'`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("1"))
	mock.ExpectQuery(`SELECT schema_name FROM information_schema\.schemata`).
		WithArgs("workspace_%").
		WillReturnRows(sqlmock.NewRows([]string{"schema_name"}).AddRow("workspace_acme_corp"))
	mock.ExpectExec(`ALTER TABLE workspace_acme_corp\.messages`).
		WillReturnError(assert.AnError)
	expectUnlock(mock)

	err := manager.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration failed for version 2")
}
