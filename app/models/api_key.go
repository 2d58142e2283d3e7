package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// KeyType separates sandbox credentials from production ones.
type KeyType string

const (
	KeyTypeTest KeyType = "test"
	KeyTypeLive KeyType = "live"
)

func (t KeyType) Valid() bool {
	return t == KeyTypeTest || t == KeyTypeLive
}

// APIKey is one generation of a merchant's key pair. Only the secret's verifier
// and display prefix are stored; the secret itself is handed out once.
type APIKey struct {
	ID             string     `gorm:"primaryKey;type:char(36)" json:"id"`
	MerchantID     string     `gorm:"type:char(36);not null;index:idx_api_keys_merchant_type" json:"merchant_id"`
	Name           string     `gorm:"type:varchar(100);default:''" json:"name"`
	KeyType        KeyType    `gorm:"type:varchar(10);not null;index:idx_api_keys_merchant_type" json:"key_type"`
	PublicKey      string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"public_key"`
	SecretVerifier string     `gorm:"type:varchar(255);not null" json:"-"`
	SecretPrefix   string     `gorm:"type:varchar(20);index;not null" json:"secret_prefix"`
	IsActive       bool       `gorm:"not null" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	LastUsedAt     *time.Time `gorm:"default:null" json:"last_used_at"`
	ExpiresAt      *time.Time `gorm:"default:null" json:"expires_at"`
}

func (k *APIKey) BeforeCreate(tx *gorm.DB) error {
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	return nil
}

// IsExpired reports whether the key has an expiry at or before now.
func (k *APIKey) IsExpired(now time.Time) bool {
	return k.ExpiresAt != nil && !k.ExpiresAt.After(now)
}

// Usable reports whether the key may authenticate a request at now.
func (k *APIKey) Usable(now time.Time) bool {
	return k.IsActive && !k.IsExpired(now)
}
