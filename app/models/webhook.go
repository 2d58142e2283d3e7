package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DefaultMaxDeliveryAttempts is the retry budget stamped on every new delivery.
const DefaultMaxDeliveryAttempts = 3

// Webhook is a merchant endpoint subscribed to a set of event types.
type Webhook struct {
	ID          string                      `gorm:"primaryKey;type:char(36)" json:"id"`
	MerchantID  string                      `gorm:"type:char(36);not null;index" json:"merchant_id"`
	URL         string                      `gorm:"type:varchar(2048);not null" json:"url"`
	Description string                      `gorm:"type:varchar(255);default:''" json:"description"`
	Events      datatypes.JSONSlice[string] `gorm:"type:json;not null" json:"events"`
	Secret      string                      `gorm:"type:varchar(100);not null" json:"-"`
	IsActive    bool                        `gorm:"not null;index" json:"is_active"`
	CreatedAt   time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (w *Webhook) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// WebhookDelivery is one pending delivery of one event to one endpoint.
// EndpointURL and Payload are copies taken when the row is written.
type WebhookDelivery struct {
	ID          string         `gorm:"primaryKey;type:char(36)" json:"id"`
	MerchantID  string         `gorm:"type:char(36);not null;index" json:"merchant_id"`
	WebhookID   string         `gorm:"type:char(36);not null;index" json:"webhook_id"`
	EventID     string         `gorm:"type:char(36);not null;index" json:"event_id"`
	EventType   string         `gorm:"type:varchar(64);not null" json:"event_type"`
	EndpointURL string         `gorm:"type:varchar(2048);not null" json:"endpoint_url"`
	Payload     datatypes.JSON `gorm:"type:json;not null" json:"payload"`
	Attempt     int            `gorm:"not null;default:1" json:"attempt"`
	MaxAttempts int            `gorm:"not null;default:3" json:"max_attempts"`
	Delivered   bool           `gorm:"not null;default:false;index" json:"delivered"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *WebhookDelivery) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
