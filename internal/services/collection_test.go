package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/strata-api/internal/database"
)

func setupCollectionService(t *testing.T) (*CollectionService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewCollectionService(db), mock
}

func collectionRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "uuid", "project_id", "name", "slug", "sort_order", "is_singleton", "created_at", "updated_at", "deleted_at",
	})
}

func TestCollectionService_Create(t *testing.T) {
	svc, mock := setupCollectionService(t)
	ctx := context.Background()
	now := time.Now()
	collectionUUID := uuid.New()

	rows := collectionRows().
		AddRow(int64(1), collectionUUID, int64(7), "Articles", "articles", 1, false, now, now, (*time.Time)(nil))
	mock.ExpectQuery(`INSERT INTO collections`).
		WithArgs(int64(7), "Articles", "articles", false).
		WillReturnRows(rows)

	col, err := svc.Create(ctx, 7, "Articles", "articles", false)

	require.NoError(t, err)
	assert.Equal(t, collectionUUID, col.UUID)
	assert.Equal(t, "articles", col.Slug)
	assert.Equal(t, 1, col.Order)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionService_GetByUUID_NotFound(t *testing.T) {
	svc, mock := setupCollectionService(t)
	ctx := context.Background()
	collectionUUID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM collections`).
		WithArgs(collectionUUID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByUUID(ctx, collectionUUID)

	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionService_GetBySlug(t *testing.T) {
	svc, mock := setupCollectionService(t)
	ctx := context.Background()
	now := time.Now()

	rows := collectionRows().
		AddRow(int64(1), uuid.New(), int64(7), "Articles", "articles", 1, false, now, now, (*time.Time)(nil))
	mock.ExpectQuery(`SELECT .+ FROM collections`).
		WithArgs(int64(7), "articles").
		WillReturnRows(rows)

	col, err := svc.GetBySlug(ctx, 7, "articles")

	require.NoError(t, err)
	assert.Equal(t, "Articles", col.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionService_ListByProject(t *testing.T) {
	svc, mock := setupCollectionService(t)
	ctx := context.Background()
	now := time.Now()

	rows := collectionRows().
		AddRow(int64(1), uuid.New(), int64(7), "Articles", "articles", 1, false, now, now, (*time.Time)(nil)).
		AddRow(int64(2), uuid.New(), int64(7), "Settings", "settings", 2, true, now, now, (*time.Time)(nil))
	mock.ExpectQuery(`SELECT .+ FROM collections`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	collections, err := svc.ListByProject(ctx, 7)

	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.True(t, collections[1].IsSingleton)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionService_Update(t *testing.T) {
	svc, mock := setupCollectionService(t)
	ctx := context.Background()
	now := time.Now()
	name := "Renamed"

	rows := collectionRows().
		AddRow(int64(1), uuid.New(), int64(7), name, "articles", 1, false, now, now, (*time.Time)(nil))
	mock.ExpectQuery(`UPDATE collections`).
		WithArgs(&name, (*bool)(nil), int64(1)).
		WillReturnRows(rows)

	col, err := svc.Update(ctx, 1, &name, nil)

	require.NoError(t, err)
	assert.Equal(t, name, col.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionService_SoftDelete_NotFound(t *testing.T) {
	svc, mock := setupCollectionService(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE collections SET deleted_at`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.SoftDelete(ctx, 1)

	assert.ErrorIs(t, err, ErrCollectionNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCollectionService_ForceDelete(t *testing.T) {
	svc, mock := setupCollectionService(t)
	ctx := context.Background()

	mock.ExpectExec(`DELETE FROM collections`).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, svc.ForceDelete(ctx, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
