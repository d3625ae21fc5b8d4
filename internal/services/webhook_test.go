package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
)

func setupWebhookService(t *testing.T) (*WebhookService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewWebhookService(db), mock
}

func webhookRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "uuid", "project_id", "name", "url", "secret",
		"events", "sources", "collection_ids", "enabled", "created_at", "updated_at",
	})
}

func TestWebhookService_Create(t *testing.T) {
	svc, mock := setupWebhookService(t)
	ctx := context.Background()
	now := time.Now()
	webhookUUID := uuid.New()
	collectionUUID := uuid.New()

	events := json.RawMessage(`["content.published"]`)
	sources := json.RawMessage(`[]`)
	collections, _ := json.Marshal([]uuid.UUID{collectionUUID})

	rows := webhookRows().AddRow(
		int64(1), webhookUUID, int64(7), "Deploy", "https://ci.example.com/hook", "s3cret",
		events, sources, json.RawMessage(collections), true, now, now,
	)
	mock.ExpectQuery(`INSERT INTO webhooks`).
		WithArgs(int64(7), "Deploy", "https://ci.example.com/hook", "s3cret",
			[]byte(`["content.published"]`), []byte(`[]`), collections).
		WillReturnRows(rows)

	webhook, err := svc.Create(ctx, 7, WebhookParams{
		Name:          "Deploy",
		URL:           "https://ci.example.com/hook",
		Secret:        "s3cret",
		Events:        []string{models.EventContentPublished},
		CollectionIDs: []uuid.UUID{collectionUUID},
	})

	require.NoError(t, err)
	assert.Equal(t, webhookUUID, webhook.UUID)
	assert.Equal(t, []string{models.EventContentPublished}, webhook.Events)
	assert.Empty(t, webhook.Sources)
	require.Len(t, webhook.CollectionIDs, 1)
	assert.Equal(t, collectionUUID, webhook.CollectionIDs[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookService_ListEnabledByProject(t *testing.T) {
	svc, mock := setupWebhookService(t)
	ctx := context.Background()
	now := time.Now()

	rows := webhookRows().AddRow(
		int64(1), uuid.New(), int64(7), "Deploy", "https://ci.example.com/hook", "s3cret",
		json.RawMessage(`["content.published","content.unpublished"]`),
		json.RawMessage(`["dashboard"]`), json.RawMessage(`[]`), true, now, now,
	)
	mock.ExpectQuery(`FROM webhooks\s+WHERE project_id = \$1 AND enabled = TRUE`).
		WithArgs(int64(7)).
		WillReturnRows(rows)

	webhooks, err := svc.ListEnabledByProject(ctx, 7)

	require.NoError(t, err)
	require.Len(t, webhooks, 1)
	assert.Equal(t, []string{models.EventContentPublished, models.EventContentUnpublished}, webhooks[0].Events)
	assert.Equal(t, []string{"dashboard"}, webhooks[0].Sources)
	assert.Empty(t, webhooks[0].CollectionIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWebhookService_GetByUUID_NotFound(t *testing.T) {
	svc, mock := setupWebhookService(t)
	ctx := context.Background()
	webhookUUID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM webhooks WHERE uuid`).
		WithArgs(webhookUUID).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByUUID(ctx, webhookUUID)

	assert.ErrorIs(t, err, ErrWebhookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
