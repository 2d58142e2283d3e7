// Package events turns domain occurrences into webhook delivery rows.
package events

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/app/repository"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
	"github.com/ManuelReschke/merchantgate/internal/pkg/metrics"
)

// Notifier wakes the delivery worker after rows were written.
type Notifier interface {
	Notify(ctx context.Context, deliveryIDs []string) error
}

// Result describes what one emission produced.
type Result struct {
	EventID     string
	DeliveryIDs []string
}

type Dispatcher struct {
	webhooks   repository.WebhookRepository
	deliveries repository.DeliveryRepository
	notifier   Notifier
	now        func() time.Time
}

// NewDispatcher builds a dispatcher. notifier may be nil.
func NewDispatcher(webhooks repository.WebhookRepository, deliveries repository.DeliveryRepository, notifier Notifier) *Dispatcher {
	return &Dispatcher{
		webhooks:   webhooks,
		deliveries: deliveries,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Emit builds the envelope, matches it against the merchant's active
// webhooks and writes one delivery per match in a single batch. It does not
// deduplicate: two calls for the same occurrence produce two event ids.
func (d *Dispatcher) Emit(ctx context.Context, merchantID string, eventType EventType, data Data) (Result, error) {
	if strings.TrimSpace(merchantID) == "" {
		return Result{}, apperror.Validation("merchant id is required")
	}
	env, err := NewEnvelope(eventType, data, d.now())
	if err != nil {
		return Result{}, err
	}
	metrics.EventsEmitted.WithLabelValues(string(eventType)).Inc()
	res := Result{EventID: env.ID}

	hooks, err := d.webhooks.ListActiveByMerchant(ctx, merchantID)
	if err != nil {
		metrics.DispatchFailures.WithLabelValues("load_webhooks").Inc()
		return res, apperror.Storage(err)
	}
	matched := Subscribers(hooks, eventType)
	if len(matched) == 0 {
		return res, nil
	}

	payload, err := json.Marshal(env)
	if err != nil {
		metrics.DispatchFailures.WithLabelValues("encode").Inc()
		return res, err
	}

	rows := make([]models.WebhookDelivery, 0, len(matched))
	for _, w := range matched {
		rows = append(rows, models.WebhookDelivery{
			ID:          uuid.NewString(),
			MerchantID:  merchantID,
			WebhookID:   w.ID,
			EventID:     env.ID,
			EventType:   string(eventType),
			EndpointURL: w.URL,
			Payload:     datatypes.JSON(payload),
			Attempt:     1,
			MaxAttempts: models.DefaultMaxDeliveryAttempts,
			Delivered:   false,
		})
	}
	if err := d.deliveries.InsertBatch(ctx, rows); err != nil {
		metrics.DispatchFailures.WithLabelValues("insert_deliveries").Inc()
		return res, apperror.Storage(err)
	}
	metrics.DeliveriesEnqueued.WithLabelValues(string(eventType)).Add(float64(len(rows)))

	res.DeliveryIDs = make([]string, len(rows))
	for i := range rows {
		res.DeliveryIDs[i] = rows[i].ID
	}

	if d.notifier != nil {
		if err := d.notifier.Notify(ctx, res.DeliveryIDs); err != nil {
			// Rows are durable; the worker will still find them by polling.
			metrics.DispatchFailures.WithLabelValues("notify").Inc()
			log.Warnf("[EventDispatcher] queue signal failed for event %s: %v", env.ID, err)
		}
	}
	return res, nil
}

// EmitBestEffort is for callers whose own operation has already succeeded:
// any error from Emit is logged and dropped.
func (d *Dispatcher) EmitBestEffort(ctx context.Context, merchantID string, eventType EventType, data Data) Result {
	res, err := d.Emit(ctx, merchantID, eventType, data)
	if err != nil {
		metrics.DispatchFailures.WithLabelValues("emit").Inc()
		log.Errorf("[EventDispatcher] dropped %s for merchant %s (event %s): %v", eventType, merchantID, res.EventID, err)
	}
	return res
}
