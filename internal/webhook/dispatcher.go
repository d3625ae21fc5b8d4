package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dimitrije/strata-api/internal/models"
)

// Subscriptions is the lookup the dispatcher needs; the webhook service
// implements it.
type Subscriptions interface {
	ListEnabledByProject(ctx context.Context, projectID int64) ([]models.Webhook, error)
}

// Dispatcher delivers matching events asynchronously. Delivery is best
// effort: failures are logged, never retried into the request path.
type Dispatcher struct {
	subs   Subscriptions
	client *http.Client
	log    zerolog.Logger
	queue  chan Event
}

func NewDispatcher(subs Subscriptions, timeout time.Duration, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		subs:   subs,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "webhook-dispatcher").Logger(),
		queue:  make(chan Event, 256),
	}
}

// Run drains the queue until ctx is cancelled. Start it once from main.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			d.deliver(ctx, event)
		}
	}
}

// Dispatch enqueues an event. A full queue drops the event rather than
// blocking a content write.
func (d *Dispatcher) Dispatch(event Event) {
	select {
	case d.queue <- event:
	default:
		d.log.Warn().Str("event", event.Name).Msg("webhook queue full, dropping event")
	}
}

func (d *Dispatcher) deliver(ctx context.Context, event Event) {
	webhooks, err := d.subs.ListEnabledByProject(ctx, event.ProjectID)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to load webhooks")
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		d.log.Error().Err(err).Msg("failed to encode event payload")
		return
	}

	for i := range webhooks {
		w := &webhooks[i]
		if !Matches(w, &event) {
			continue
		}
		d.post(ctx, w, body, event.Name)
	}
}

func (d *Dispatcher) post(ctx context.Context, w *models.Webhook, body []byte, eventName string) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		d.log.Error().Err(err).Str("webhook", w.Name).Msg("failed to build webhook request")
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Strata-Event", eventName)
	if w.Secret != "" {
		req.Header.Set("X-Strata-Signature", Sign(w.Secret, body))
	}

	resp, err := d.client.Do(req)
	if err != nil {
		d.log.Warn().Err(err).Str("webhook", w.Name).Msg("webhook delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		d.log.Warn().Int("status", resp.StatusCode).Str("webhook", w.Name).Msg("webhook delivery rejected")
		return
	}
	d.log.Debug().Str("webhook", w.Name).Str("event", eventName).Msg("webhook delivered")
}

// Sign computes the hex HMAC-SHA256 signature receivers use to verify
// payload authenticity.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
