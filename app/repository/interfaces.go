package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
)

// Lookups that find nothing return gorm.ErrRecordNotFound, in every implementation.

// UserRepository defines the user lookups needed to resolve a session.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// MerchantRepository defines merchant and membership lookups.
type MerchantRepository interface {
	Create(ctx context.Context, merchant *models.Merchant) error
	GetByID(ctx context.Context, id string) (*models.Merchant, error)
	AddMember(ctx context.Context, member *models.MerchantMember) error
	GetMembership(ctx context.Context, merchantID string, userID uint) (*models.MerchantMember, error)
}

// APIKeyRepository persists key verifiers and metadata.
type APIKeyRepository interface {
	FindActiveByMerchantAndType(ctx context.Context, merchantID string, keyType models.KeyType) (*models.APIKey, error)
	Insert(ctx context.Context, key *models.APIKey) error
	DeactivateAllOfType(ctx context.Context, merchantID string, keyType models.KeyType) error
	DeactivateOne(ctx context.Context, keyID string) error
	ListByMerchant(ctx context.Context, merchantID string) ([]models.APIKey, error)
	GetByID(ctx context.Context, merchantID, keyID string) (*models.APIKey, error)
	// FindActiveBySecretPrefix returns active keys whose stored secret prefix equals prefix.
	FindActiveBySecretPrefix(ctx context.Context, prefix string) ([]models.APIKey, error)
	TouchLastUsed(ctx context.Context, keyID string, at time.Time) error
	// Rotate deactivates every active key of key.KeyType for key.MerchantID and
	// inserts key as the new active one, as a single atomic step.
	Rotate(ctx context.Context, key *models.APIKey) error
}

// WebhookRepository persists merchant webhook subscriptions.
type WebhookRepository interface {
	Create(ctx context.Context, webhook *models.Webhook) error
	GetByID(ctx context.Context, merchantID, webhookID string) (*models.Webhook, error)
	ListByMerchant(ctx context.Context, merchantID string) ([]models.Webhook, error)
	ListActiveByMerchant(ctx context.Context, merchantID string) ([]models.Webhook, error)
	Deactivate(ctx context.Context, webhookID string) error
}

// DeliveryRepository persists webhook delivery obligations.
type DeliveryRepository interface {
	// InsertBatch writes all deliveries in one storage call.
	InsertBatch(ctx context.Context, deliveries []models.WebhookDelivery) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	User     UserRepository
	Merchant MerchantRepository
	APIKey   APIKeyRepository
	Webhook  WebhookRepository
	Delivery DeliveryRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Merchant: NewMerchantRepository(db),
		APIKey:   NewAPIKeyRepository(db),
		Webhook:  NewWebhookRepository(db),
		Delivery: NewDeliveryRepository(db),
	}
}
