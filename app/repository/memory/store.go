// Package memory is an in-process implementation of the repository interfaces,
// used by tests and by local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/app/repository"
)

type Store struct {
	mu sync.RWMutex

	nextUserID uint
	users      map[uint]models.User
	merchants  map[string]models.Merchant
	members    map[string]models.MerchantMember
	keys       []models.APIKey
	webhooks   []models.Webhook
	deliveries []models.WebhookDelivery

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:     make(map[uint]models.User),
		merchants: make(map[string]models.Merchant),
		members:   make(map[string]models.MerchantMember),
		now:       time.Now,
	}
}

// Repositories exposes the store through the repository interfaces.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:     &userRepo{s},
		Merchant: &merchantRepo{s},
		APIKey:   &apiKeyRepo{s},
		Webhook:  &webhookRepo{s},
		Delivery: &deliveryRepo{s},
	}
}

// Deliveries returns a copy of every delivery written so far.
func (s *Store) Deliveries() []models.WebhookDelivery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.WebhookDelivery(nil), s.deliveries...)
}

// Keys returns a copy of every API key row, active or not.
func (s *Store) Keys() []models.APIKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.APIKey(nil), s.keys...)
}

func memberKey(merchantID string, userID uint) string {
	return fmt.Sprintf("%s/%d", merchantID, userID)
}

type userRepo struct{ *Store }

func (r *userRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		r.nextUserID++
		user.ID = r.nextUserID
	} else if user.ID > r.nextUserID {
		r.nextUserID = user.ID
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now()
	}
	r.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &user, nil
}

type merchantRepo struct{ *Store }

func (r *merchantRepo) Create(_ context.Context, merchant *models.Merchant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if merchant.ID == "" {
		merchant.ID = uuid.NewString()
	}
	if merchant.CreatedAt.IsZero() {
		merchant.CreatedAt = r.now()
	}
	r.merchants[merchant.ID] = *merchant
	r.members[memberKey(merchant.ID, merchant.OwnerUserID)] = models.MerchantMember{
		MerchantID: merchant.ID,
		UserID:     merchant.OwnerUserID,
		Role:       models.RoleOwner,
		CreatedAt:  merchant.CreatedAt,
	}
	return nil
}

func (r *merchantRepo) GetByID(_ context.Context, id string) (*models.Merchant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	merchant, ok := r.merchants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &merchant, nil
}

func (r *merchantRepo) AddMember(_ context.Context, member *models.MerchantMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[member.MerchantID]; !ok {
		return gorm.ErrForeignKeyViolated
	}
	key := memberKey(member.MerchantID, member.UserID)
	if _, exists := r.members[key]; exists {
		return gorm.ErrDuplicatedKey
	}
	if member.CreatedAt.IsZero() {
		member.CreatedAt = r.now()
	}
	r.members[key] = *member
	return nil
}

func (r *merchantRepo) GetMembership(_ context.Context, merchantID string, userID uint) (*models.MerchantMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	member, ok := r.members[memberKey(merchantID, userID)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &member, nil
}

type apiKeyRepo struct{ *Store }

func (r *apiKeyRepo) FindActiveByMerchantAndType(_ context.Context, merchantID string, keyType models.KeyType) (*models.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.keys {
		if k.MerchantID == merchantID && k.KeyType == keyType && k.IsActive {
			return &k, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *apiKeyRepo) Insert(_ context.Context, key *models.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(key)
	return nil
}

func (r *apiKeyRepo) insertLocked(key *models.APIKey) {
	if key.ID == "" {
		key.ID = uuid.NewString()
	}
	if key.CreatedAt.IsZero() {
		key.CreatedAt = r.now()
	}
	r.keys = append(r.keys, *key)
}

func (r *apiKeyRepo) DeactivateAllOfType(_ context.Context, merchantID string, keyType models.KeyType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deactivateLocked(merchantID, keyType)
	return nil
}

func (r *apiKeyRepo) deactivateLocked(merchantID string, keyType models.KeyType) {
	for i := range r.keys {
		if r.keys[i].MerchantID == merchantID && r.keys[i].KeyType == keyType {
			r.keys[i].IsActive = false
		}
	}
}

func (r *apiKeyRepo) DeactivateOne(_ context.Context, keyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.keys {
		if r.keys[i].ID == keyID {
			r.keys[i].IsActive = false
		}
	}
	return nil
}

func (r *apiKeyRepo) ListByMerchant(_ context.Context, merchantID string) ([]models.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.APIKey
	for _, k := range r.keys {
		if k.MerchantID == merchantID {
			out = append(out, k)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *apiKeyRepo) GetByID(_ context.Context, merchantID, keyID string) (*models.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, k := range r.keys {
		if k.ID == keyID && k.MerchantID == merchantID {
			return &k, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *apiKeyRepo) FindActiveBySecretPrefix(_ context.Context, prefix string) ([]models.APIKey, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.APIKey
	for _, k := range r.keys {
		if k.SecretPrefix == prefix && k.IsActive {
			out = append(out, k)
		}
	}
	return out, nil
}

func (r *apiKeyRepo) TouchLastUsed(_ context.Context, keyID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.keys {
		if r.keys[i].ID == keyID {
			t := at
			r.keys[i].LastUsedAt = &t
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// Rotate holds the write lock across deactivate and insert.
func (r *apiKeyRepo) Rotate(_ context.Context, key *models.APIKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.merchants[key.MerchantID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.deactivateLocked(key.MerchantID, key.KeyType)
	key.IsActive = true
	r.insertLocked(key)
	return nil
}

type webhookRepo struct{ *Store }

func (r *webhookRepo) Create(_ context.Context, webhook *models.Webhook) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if webhook.ID == "" {
		webhook.ID = uuid.NewString()
	}
	now := r.now()
	if webhook.CreatedAt.IsZero() {
		webhook.CreatedAt = now
	}
	webhook.UpdatedAt = now
	stored := *webhook
	stored.Events = append(stored.Events[:0:0], webhook.Events...)
	r.webhooks = append(r.webhooks, stored)
	return nil
}

func (r *webhookRepo) GetByID(_ context.Context, merchantID, webhookID string) (*models.Webhook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.webhooks {
		if w.ID == webhookID && w.MerchantID == merchantID {
			return &w, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *webhookRepo) ListByMerchant(_ context.Context, merchantID string) ([]models.Webhook, error) {
	return r.list(merchantID, false), nil
}

func (r *webhookRepo) ListActiveByMerchant(_ context.Context, merchantID string) ([]models.Webhook, error) {
	return r.list(merchantID, true), nil
}

func (r *webhookRepo) list(merchantID string, activeOnly bool) []models.Webhook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []models.Webhook
	for _, w := range r.webhooks {
		if w.MerchantID != merchantID || (activeOnly && !w.IsActive) {
			continue
		}
		w.Events = append(w.Events[:0:0], w.Events...)
		out = append(out, w)
	}
	return out
}

func (r *webhookRepo) Deactivate(_ context.Context, webhookID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.webhooks {
		if r.webhooks[i].ID == webhookID {
			r.webhooks[i].IsActive = false
			r.webhooks[i].UpdatedAt = r.now()
		}
	}
	return nil
}

type deliveryRepo struct{ *Store }

func (r *deliveryRepo) InsertBatch(_ context.Context, deliveries []models.WebhookDelivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for i := range deliveries {
		if deliveries[i].ID == "" {
			deliveries[i].ID = uuid.NewString()
		}
		if deliveries[i].CreatedAt.IsZero() {
			deliveries[i].CreatedAt = now
		}
		deliveries[i].UpdatedAt = now
	}
	r.deliveries = append(r.deliveries, deliveries...)
	return nil
}
