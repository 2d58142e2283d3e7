package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ManuelReschke/merchantgate/app/models"
)

type apiKeyRepository struct {
	db *gorm.DB
}

// NewAPIKeyRepository creates an API key repository backed by GORM.
func NewAPIKeyRepository(db *gorm.DB) APIKeyRepository {
	return &apiKeyRepository{db: db}
}

func (r *apiKeyRepository) FindActiveByMerchantAndType(ctx context.Context, merchantID string, keyType models.KeyType) (*models.APIKey, error) {
	var key models.APIKey
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND key_type = ? AND is_active = ?", merchantID, keyType, true).
		First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepository) Insert(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *apiKeyRepository) DeactivateAllOfType(ctx context.Context, merchantID string, keyType models.KeyType) error {
	return deactivateAllOfType(r.db.WithContext(ctx), merchantID, keyType)
}

func (r *apiKeyRepository) DeactivateOne(ctx context.Context, keyID string) error {
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ? AND is_active = ?", keyID, true).
		Update("is_active", false).Error
}

func (r *apiKeyRepository) ListByMerchant(ctx context.Context, merchantID string) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.WithContext(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&keys).Error
	return keys, err
}

func (r *apiKeyRepository) GetByID(ctx context.Context, merchantID, keyID string) (*models.APIKey, error) {
	var key models.APIKey
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_id = ?", keyID, merchantID).
		First(&key).Error
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *apiKeyRepository) FindActiveBySecretPrefix(ctx context.Context, prefix string) ([]models.APIKey, error) {
	var keys []models.APIKey
	err := r.db.WithContext(ctx).
		Where("secret_prefix = ? AND is_active = ?", prefix, true).
		Find(&keys).Error
	return keys, err
}

func (r *apiKeyRepository) TouchLastUsed(ctx context.Context, keyID string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.APIKey{}).
		Where("id = ?", keyID).
		UpdateColumn("last_used_at", at).Error
}

// Rotate locks the merchant row so that concurrent rotations for the same
// merchant queue behind each other, then swaps the active key inside the
// same transaction. Readers see either the old key or the new one.
func (r *apiKeyRepository) Rotate(ctx context.Context, key *models.APIKey) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var merchant models.Merchant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", key.MerchantID).
			First(&merchant).Error; err != nil {
			return err
		}
		if err := deactivateAllOfType(tx, key.MerchantID, key.KeyType); err != nil {
			return err
		}
		key.IsActive = true
		return tx.Create(key).Error
	})
}

func deactivateAllOfType(db *gorm.DB, merchantID string, keyType models.KeyType) error {
	return db.Model(&models.APIKey{}).
		Where("merchant_id = ? AND key_type = ? AND is_active = ?", merchantID, keyType, true).
		Update("is_active", false).Error
}
