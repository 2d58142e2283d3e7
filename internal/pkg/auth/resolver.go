// Package auth resolves the caller of an inbound request from either a
// dashboard session or a secret API key.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/repository"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apikey"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
	"github.com/ManuelReschke/merchantgate/internal/pkg/metrics"
)

// Request is what the transport layer extracted from the inbound call.
type Request struct {
	// SessionUserID is the user id held by the session, 0 when there is none.
	SessionUserID uint
	// Credential is the raw bearer token or API key header value.
	Credential string
}

type Resolver struct {
	users repository.UserRepository
	keys  repository.APIKeyRepository
	now   func() time.Time
}

func NewResolver(users repository.UserRepository, keys repository.APIKeyRepository) *Resolver {
	return &Resolver{users: users, keys: keys, now: time.Now}
}

// Resolve tries the session first and the API key second. Every failure to
// identify the caller yields the same Unauthenticated error; only storage
// faults are reported differently.
func (r *Resolver) Resolve(ctx context.Context, req Request) (Principal, error) {
	if req.SessionUserID != 0 {
		p, ok, err := r.fromSession(ctx, req.SessionUserID)
		if err != nil {
			return Principal{}, err
		}
		if ok {
			metrics.AuthAttempts.WithLabelValues(metrics.AuthSession).Inc()
			return p, nil
		}
	}

	if cred := strings.TrimSpace(req.Credential); cred != "" {
		p, ok, err := r.fromAPIKey(ctx, cred)
		if err != nil {
			return Principal{}, err
		}
		if ok {
			metrics.AuthAttempts.WithLabelValues(metrics.AuthAPIKey).Inc()
			return p, nil
		}
	}

	metrics.AuthAttempts.WithLabelValues(metrics.AuthUnauthenticated).Inc()
	return Principal{}, apperror.Unauthenticated()
}

func (r *Resolver) fromSession(ctx context.Context, userID uint) (Principal, bool, error) {
	user, err := r.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Principal{}, false, nil
		}
		return Principal{}, false, apperror.Storage(err)
	}
	if !user.IsActive() {
		return Principal{}, false, nil
	}
	return Principal{Kind: PrincipalUser, UserID: user.ID}, true, nil
}

func (r *Resolver) fromAPIKey(ctx context.Context, secret string) (Principal, bool, error) {
	c, ok := apikey.Classify(secret)
	if !ok || c.Kind != apikey.KindSecret {
		return Principal{}, false, nil
	}

	candidates, err := r.keys.FindActiveBySecretPrefix(ctx, apikey.DisplayPrefix(secret))
	if err != nil {
		return Principal{}, false, apperror.Storage(err)
	}

	now := r.now()
	for i := range candidates {
		key := &candidates[i]
		if key.KeyType != c.KeyType || !apikey.Verify(secret, key.SecretVerifier) {
			continue
		}
		if !key.Usable(now) {
			return Principal{}, false, nil
		}
		if err := r.keys.TouchLastUsed(ctx, key.ID, now); err != nil {
			log.Warnf("[Auth] failed to update last_used_at for key %s: %v", key.ID, err)
		}
		return Principal{
			Kind:       PrincipalMachine,
			KeyID:      key.ID,
			MerchantID: key.MerchantID,
			KeyType:    key.KeyType,
		}, true, nil
	}
	return Principal{}, false, nil
}
