// Package authz decides whether a resolved principal may act on a merchant.
package authz

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/app/repository"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
	"github.com/ManuelReschke/merchantgate/internal/pkg/auth"
)

const (
	ReasonUnauthenticated = "no authenticated principal"
	ReasonNotMember       = "not a member of this merchant"
	ReasonWrongMerchant   = "api key is not scoped to this merchant"
)

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

func Allow() Decision { return Decision{Allowed: true} }

func Deny(reason string) Decision { return Decision{Reason: reason} }

// Err converts a denial into an authorization error, nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return apperror.Forbidden(d.Reason)
}

// Gate evaluates every call afresh; nothing is cached between requests.
type Gate struct {
	merchants repository.MerchantRepository
}

func NewGate(merchants repository.MerchantRepository) *Gate {
	return &Gate{merchants: merchants}
}

// Authorize checks principal against merchantID. Users need a membership of
// at least required; API keys are confined to their own merchant and carry
// no role.
func (g *Gate) Authorize(ctx context.Context, principal auth.Principal, merchantID string, required models.Role) (Decision, error) {
	switch {
	case principal.IsUser():
		return g.authorizeUser(ctx, principal.UserID, merchantID, required)
	case principal.IsMachine():
		if principal.MerchantID != merchantID {
			return Deny(ReasonWrongMerchant), nil
		}
		return Allow(), nil
	default:
		return Deny(ReasonUnauthenticated), nil
	}
}

func (g *Gate) authorizeUser(ctx context.Context, userID uint, merchantID string, required models.Role) (Decision, error) {
	role, err := g.roleOf(ctx, userID, merchantID)
	if err != nil {
		return Decision{}, err
	}
	if role == "" {
		return Deny(ReasonNotMember), nil
	}
	if !role.Satisfies(required) {
		return Deny(fmt.Sprintf("requires %s role, have %s", required, role)), nil
	}
	return Allow(), nil
}

// roleOf returns the user's effective role, or "" when there is no relation.
// The merchant's recorded owner is always treated as owner.
func (g *Gate) roleOf(ctx context.Context, userID uint, merchantID string) (models.Role, error) {
	merchant, err := g.merchants.GetByID(ctx, merchantID)
	if err != nil {
		// An unknown merchant reads as "not a member" so a 403 never tells
		// the caller whether the merchant id exists.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperror.Storage(err)
	}
	if merchant.OwnerUserID == userID {
		return models.RoleOwner, nil
	}

	member, err := g.merchants.GetMembership(ctx, merchantID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", apperror.Storage(err)
	}
	return member.Role, nil
}
