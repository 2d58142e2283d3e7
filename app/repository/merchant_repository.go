package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
)

type merchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository creates a new merchant repository instance
func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

// Create inserts the merchant and its owner membership in one transaction.
func (r *merchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(merchant).Error; err != nil {
			return err
		}
		return tx.Create(&models.MerchantMember{
			MerchantID: merchant.ID,
			UserID:     merchant.OwnerUserID,
			Role:       models.RoleOwner,
		}).Error
	})
}

func (r *merchantRepository) GetByID(ctx context.Context, id string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&merchant).Error; err != nil {
		return nil, err
	}
	return &merchant, nil
}

func (r *merchantRepository) AddMember(ctx context.Context, member *models.MerchantMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *merchantRepository) GetMembership(ctx context.Context, merchantID string, userID uint) (*models.MerchantMember, error) {
	var member models.MerchantMember
	err := r.db.WithContext(ctx).
		Where("merchant_id = ? AND user_id = ?", merchantID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}
