// Package webhooks manages the webhook endpoints a merchant registers.
package webhooks

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/app/repository"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
	"github.com/ManuelReschke/merchantgate/internal/pkg/events"
)

const (
	secretPrefix = "whsec_"
	secretBytes  = 24
)

// CreateInput is the request to register an endpoint.
type CreateInput struct {
	URL         string   `json:"url" validate:"required,http_url,max=2048"`
	Description string   `json:"description" validate:"max=255"`
	Events      []string `json:"events" validate:"required,min=1,max=64"`
}

// Created is the registration result. Secret is returned only here.
type Created struct {
	Webhook models.Webhook `json:"webhook"`
	Secret  string         `json:"secret"`
}

type Service struct {
	repo     repository.WebhookRepository
	validate *validator.Validate
}

func NewService(repo repository.WebhookRepository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// Create validates and stores a new active webhook with a generated signing secret.
func (s *Service) Create(ctx context.Context, merchantID string, in CreateInput) (*Created, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, apperror.Validation("merchant id is required")
	}
	in.URL = strings.TrimSpace(in.URL)
	in.Description = strings.TrimSpace(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Validation(validationMessage(err))
	}
	subscribed, err := normalizeEvents(in.Events)
	if err != nil {
		return nil, err
	}

	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	w := &models.Webhook{
		MerchantID:  merchantID,
		URL:         in.URL,
		Description: in.Description,
		Events:      subscribed,
		Secret:      secret,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, apperror.Storage(err)
	}
	log.Infof("[Webhooks] Registered webhook %s for merchant %s (%d event types)", w.ID, merchantID, len(subscribed))
	return &Created{Webhook: *w, Secret: secret}, nil
}

// List returns every webhook of the merchant, active or not.
func (s *Service) List(ctx context.Context, merchantID string) ([]models.Webhook, error) {
	hooks, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if hooks == nil {
		hooks = []models.Webhook{}
	}
	return hooks, nil
}

// Deactivate stops a webhook from matching new events. Rows are never deleted.
func (s *Service) Deactivate(ctx context.Context, merchantID, webhookID string) error {
	w, err := s.repo.GetByID(ctx, merchantID, webhookID)
	if err != nil {
		return apperror.FromStore(err, "webhook")
	}
	if !w.IsActive {
		return nil
	}
	if err := s.repo.Deactivate(ctx, w.ID); err != nil {
		return apperror.Storage(err)
	}
	log.Infof("[Webhooks] Deactivated webhook %s for merchant %s", w.ID, merchantID)
	return nil
}

// normalizeEvents trims and de-duplicates the subscription set, keeping the
// caller's order, and rejects anything that is neither a known type nor "*".
func normalizeEvents(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		e := strings.TrimSpace(raw)
		if !events.ValidSubscription(e) {
			return nil, apperror.Validationf("unknown event type %q", raw)
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	if len(out) == 0 {
		return nil, apperror.Validation("events must not be empty")
	}
	return out, nil
}

func newSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate webhook secret: %w", err)
	}
	return secretPrefix + hex.EncodeToString(b), nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Field() {
	case "URL":
		return "url must be an absolute http or https URL"
	case "Description":
		return "description must be at most 255 characters"
	case "Events":
		if fe.Tag() == "max" {
			return "at most 64 event types may be subscribed"
		}
		return "events must not be empty"
	default:
		return fe.Error()
	}
}
