package auth

import "github.com/ManuelReschke/merchantgate/app/models"

// PrincipalKind distinguishes dashboard users from API key callers.
type PrincipalKind string

const (
	PrincipalUser    PrincipalKind = "user"
	PrincipalMachine PrincipalKind = "api_key"
)

// Principal is the caller identity resolved for one request. It is never stored.
type Principal struct {
	Kind PrincipalKind

	// Set for PrincipalUser.
	UserID uint

	// Set for PrincipalMachine.
	KeyID      string
	MerchantID string
	KeyType    models.KeyType
}

func (p Principal) IsUser() bool {
	return p.Kind == PrincipalUser && p.UserID != 0
}

func (p Principal) IsMachine() bool {
	return p.Kind == PrincipalMachine && p.MerchantID != ""
}

// Authenticated reports whether p carries a resolved identity.
func (p Principal) Authenticated() bool {
	return p.IsUser() || p.IsMachine()
}
