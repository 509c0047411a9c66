package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamgrid/teamgrid/internal/domain"
)

func workspaceColumns() []string {
	return []string{"id", "slug", "name", "active", "created_at", "updated_at", "deleted_at"}
}

func TestWorkspaceRepository_Create(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM workspaces WHERE replace\(slug, '-', '_'\) = \$1\)`).
		WithArgs("acme_corp").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(`INSERT INTO workspaces`).
		WithArgs("w1", "acme-corp", "Acme Corp", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	workspace := &domain.Workspace{ID: "w1", Slug: "acme-corp", Name: "Acme Corp"}
	err := repo.Create(context.Background(), workspace)
	require.NoError(t, err)
	assert.True(t, workspace.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_Create_SanitizedSlugCollision(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	// "foo-bar" and "foo_bar" both map to schema fragment foo_bar, so the
	// second registration must be refused.
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("foo_bar").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	workspace := &domain.Workspace{ID: "w1", Slug: "foo-bar", Name: "Foo Bar"}
	err := repo.Create(context.Background(), workspace)
	require.Error(t, err)

	var validationErr domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_Create_InvalidSlug(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	workspace := &domain.Workspace{ID: "w1", Slug: "Bad Slug!", Name: "Bad"}
	err := repo.Create(context.Background(), workspace)
	require.Error(t, err)

	var validationErr domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	require.NoError(t, mock.ExpectationsWereMet(), "no queries should run for an invalid slug")
}

func TestWorkspaceRepository_GetBySlug(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT id, slug, name, active, created_at, updated_at, deleted_at`).
		WithArgs("acme-corp").
		WillReturnRows(sqlmock.NewRows(workspaceColumns()).
			AddRow("w1", "acme-corp", "Acme Corp", true, now, now, nil))

	workspace, err := repo.GetBySlug(context.Background(), "acme-corp")
	require.NoError(t, err)
	assert.Equal(t, "w1", workspace.ID)
	assert.Equal(t, "acme-corp", workspace.Slug)
	assert.True(t, workspace.Active)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_GetBySlug_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectQuery(`SELECT id, slug, name, active, created_at, updated_at, deleted_at`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(workspaceColumns()))

	_, err := repo.GetBySlug(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_GetByID_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectQuery(`SELECT id, slug, name, active, created_at, updated_at, deleted_at`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(workspaceColumns()))

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestWorkspaceRepository_List(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	now := time.Now()
	mock.ExpectQuery(`SELECT id, slug, name, active, created_at, updated_at, deleted_at`).
		WillReturnRows(sqlmock.NewRows(workspaceColumns()).
			AddRow("w2", "globex", "Globex", true, now, now, nil).
			AddRow("w1", "acme-corp", "Acme Corp", false, now, now, nil))

	workspaces, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	assert.Equal(t, "globex", workspaces[0].Slug)
	assert.False(t, workspaces[1].Active)
}

func TestWorkspaceRepository_Update(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectExec(`UPDATE workspaces`).
		WithArgs("Acme Renamed", sqlmock.AnyArg(), "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	workspace := &domain.Workspace{ID: "w1", Slug: "acme-corp", Name: "Acme Renamed"}
	err := repo.Update(context.Background(), workspace)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_Update_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectExec(`UPDATE workspaces`).
		WithArgs("Acme", sqlmock.AnyArg(), "gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	workspace := &domain.Workspace{ID: "gone", Slug: "acme-corp", Name: "Acme"}
	err := repo.Update(context.Background(), workspace)
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}

func TestWorkspaceRepository_SetActive(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectExec(`UPDATE workspaces`).
		WithArgs(false, sqlmock.AnyArg(), "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SetActive(context.Background(), "w1", false)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_Delete(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectExec(`UPDATE workspaces`).
		WithArgs(sqlmock.AnyArg(), "w1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Delete(context.Background(), "w1")
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkspaceRepository_Delete_AlreadyDeleted(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	repo := NewWorkspaceRepository(db)

	mock.ExpectExec(`UPDATE workspaces`).
		WithArgs(sqlmock.AnyArg(), "w1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "w1")
	assert.ErrorIs(t, err, domain.ErrTenantNotFound)
}
