package services

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dimitrije/strata-api/internal/database"
	"github.com/dimitrije/strata-api/internal/models"
)

var ErrWebhookNotFound = errors.New("webhook not found")

type WebhookService struct {
	db *database.DB
}

func NewWebhookService(db *database.DB) *WebhookService {
	return &WebhookService{db: db}
}

const webhookColumns = `id, uuid, project_id, name, url, secret, events, sources, collection_ids, enabled, created_at, updated_at`

func scanWebhook(row pgx.Row) (*models.Webhook, error) {
	var (
		w             models.Webhook
		events        json.RawMessage
		sources       json.RawMessage
		collectionIDs json.RawMessage
	)
	err := row.Scan(
		&w.ID, &w.UUID, &w.ProjectID, &w.Name, &w.URL, &w.Secret,
		&events, &sources, &collectionIDs, &w.Enabled, &w.CreatedAt, &w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal(events, &w.Events)
	_ = json.Unmarshal(sources, &w.Sources)
	_ = json.Unmarshal(collectionIDs, &w.CollectionIDs)
	return &w, nil
}

type WebhookParams struct {
	Name          string
	URL           string
	Secret        string
	Events        []string
	Sources       []string
	CollectionIDs []uuid.UUID
}

func (s *WebhookService) Create(ctx context.Context, projectID int64, p WebhookParams) (*models.Webhook, error) {
	events, _ := json.Marshal(emptyIfNil(p.Events))
	sources, _ := json.Marshal(emptyIfNil(p.Sources))
	collectionIDs, _ := json.Marshal(p.CollectionIDs)
	if p.CollectionIDs == nil {
		collectionIDs = json.RawMessage("[]")
	}

	webhook, err := scanWebhook(s.db.Pool.QueryRow(ctx, `
		INSERT INTO webhooks (project_id, name, url, secret, events, sources, collection_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+webhookColumns+`
	`, projectID, p.Name, p.URL, p.Secret, events, sources, collectionIDs))
	if err != nil {
		return nil, err
	}
	return webhook, nil
}

func (s *WebhookService) GetByUUID(ctx context.Context, id uuid.UUID) (*models.Webhook, error) {
	webhook, err := scanWebhook(s.db.Pool.QueryRow(ctx, `
		SELECT `+webhookColumns+` FROM webhooks WHERE uuid = $1
	`, id))
	if err == pgx.ErrNoRows {
		return nil, ErrWebhookNotFound
	}
	if err != nil {
		return nil, err
	}
	return webhook, nil
}

// ListEnabledByProject returns the webhooks the dispatcher should consider
// for a project's content events.
func (s *WebhookService) ListEnabledByProject(ctx context.Context, projectID int64) ([]models.Webhook, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+webhookColumns+` FROM webhooks
		WHERE project_id = $1 AND enabled = TRUE
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []models.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, *w)
	}
	return webhooks, rows.Err()
}

func (s *WebhookService) ListByProject(ctx context.Context, projectID int64) ([]models.Webhook, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+webhookColumns+` FROM webhooks
		WHERE project_id = $1
		ORDER BY created_at ASC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var webhooks []models.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		webhooks = append(webhooks, *w)
	}
	return webhooks, rows.Err()
}

func (s *WebhookService) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Pool.Exec(ctx, `DELETE FROM webhooks WHERE uuid = $1`, id)
	return err
}

func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
