package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
)

// deliveryBatchSize bounds a single INSERT statement; one call still covers every row.
const deliveryBatchSize = 100

type deliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository creates a delivery repository backed by GORM.
func NewDeliveryRepository(db *gorm.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

func (r *deliveryRepository) InsertBatch(ctx context.Context, deliveries []models.WebhookDelivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&deliveries, deliveryBatchSize).Error
}
