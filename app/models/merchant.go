package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Merchant is the account that owns API keys and webhooks.
type Merchant struct {
	ID          string    `gorm:"primaryKey;type:char(36)" json:"id"`
	Name        string    `gorm:"type:varchar(150);not null" json:"name" validate:"required,max=150"`
	OwnerUserID uint      `gorm:"index;not null" json:"owner_user_id"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m *Merchant) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Role is a user's relationship to a merchant.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Rank orders roles so that a higher rank includes every capability of a lower one.
// Unknown roles rank 0 and never satisfy a requirement.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether r is at least as privileged as required.
func (r Role) Satisfies(required Role) bool {
	return r.Rank() > 0 && r.Rank() >= required.Rank()
}

// MerchantMember links a user to a merchant with a role.
type MerchantMember struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MerchantID string    `gorm:"type:char(36);not null;uniqueIndex:idx_merchant_members_merchant_user" json:"merchant_id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_merchant_members_merchant_user;index" json:"user_id"`
	Role       Role      `gorm:"type:varchar(20);not null;default:'member'" json:"role" validate:"oneof=owner admin member"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}
