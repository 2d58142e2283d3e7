package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
)

type webhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a webhook repository backed by GORM.
func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) Create(ctx context.Context, webhook *models.Webhook) error {
	return r.db.WithContext(ctx).Create(webhook).Error
}

func (r *webhookRepository) GetByID(ctx context.Context, merchantID, webhookID string) (*models.Webhook, error) {
	var webhook models.Webhook
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", webhookID, merchantID).
		First(&webhook).Error
	if err != nil {
		return nil, err
	}
	return &webhook, nil
}

func (r *webhookRepository) ListByMerchant(ctx context.Context, merchantID string) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&webhooks).Error
	return webhooks, err
}

func (r *webhookRepository) ListActiveByMerchant(ctx context.Context, merchantID string) ([]models.Webhook, error) {
	var webhooks []models.Webhook
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND is_active = ?", merchantID, true).
		Order("created_at ASC").
		Find(&webhooks).Error
	return webhooks, err
}

func (r *webhookRepository) Deactivate(ctx context.Context, webhookID string) error {
	return r.db.WithContext(ctx).
		Model(&models.Webhook{}).
		Where("id = ? AND is_active = ?", webhookID, true).
		Update("is_active", false).Error
}
