package repository

import (
	"sync"

	"gorm.io/gorm"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// NewFactoryWith wraps an already built set of repositories, e.g. the in-memory store.
func NewFactoryWith(repos *Repositories) *Factory {
	f := &Factory{repos: repos}
	f.once.Do(func() {})
	return f
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetMerchantRepository returns the merchant repository instance
func (f *Factory) GetMerchantRepository() MerchantRepository {
	return f.GetRepositories().Merchant
}

// GetAPIKeyRepository returns the API key repository instance
func (f *Factory) GetAPIKeyRepository() APIKeyRepository {
	return f.GetRepositories().APIKey
}

// GetWebhookRepository returns the webhook repository instance
func (f *Factory) GetWebhookRepository() WebhookRepository {
	return f.GetRepositories().Webhook
}

// GetDeliveryRepository returns the webhook delivery repository instance
func (f *Factory) GetDeliveryRepository() DeliveryRepository {
	return f.GetRepositories().Delivery
}
