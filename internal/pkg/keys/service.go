// Package keys manages the API key lifecycle of a merchant.
package keys

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/app/repository"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apikey"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
	"github.com/ManuelReschke/merchantgate/internal/pkg/metrics"
)

// GenerateInput is the request to issue a new key pair.
type GenerateInput struct {
	KeyType       string `json:"keyType"`
	Name          string `json:"name" validate:"max=100"`
	ExpiresInDays *int   `json:"expiresInDays" validate:"omitnil,min=1,max=3650"`
}

// GeneratedKey carries the stored metadata plus the only copy of the secret.
type GeneratedKey struct {
	Key       models.APIKey `json:"key"`
	SecretKey string        `json:"secretKey"`
}

// Service provides key generation, revocation and listing.
type Service struct {
	repo     repository.APIKeyRepository
	validate *validator.Validate
	now      func() time.Time
}

// NewService creates a key service from an injected repository.
func NewService(repo repository.APIKeyRepository) *Service {
	return &Service{repo: repo, validate: validator.New(), now: time.Now}
}

// GenerateKey issues a new key pair and makes it the only active key of its
// type for the merchant.
func (s *Service) GenerateKey(ctx context.Context, merchantID string, in GenerateInput) (*GeneratedKey, error) {
	if strings.TrimSpace(merchantID) == "" {
		return nil, apperror.Validation("merchant id is required")
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validate.Struct(in); err != nil {
		return nil, apperror.Validation(validationMessage(err))
	}

	keyType := models.KeyType(in.KeyType)
	material, err := apikey.Generate(keyType)
	if err != nil {
		return nil, err
	}

	key := &models.APIKey{
		MerchantID:     merchantID,
		Name:           in.Name,
		KeyType:        keyType,
		PublicKey:      material.PublicKey,
		SecretVerifier: material.SecretVerifier,
		SecretPrefix:   material.SecretPrefix,
		IsActive:       true,
	}
	if in.ExpiresInDays != nil {
		exp := s.now().Add(time.Duration(*in.ExpiresInDays) * 24 * time.Hour)
		key.ExpiresAt = &exp
	}

	if err := s.repo.Rotate(ctx, key); err != nil {
		return nil, apperror.FromStore(err, "merchant")
	}
	metrics.KeysGenerated.WithLabelValues(string(keyType)).Inc()
	log.Infof("[Keys] Generated %s key %s for merchant %s", keyType, key.ID, merchantID)

	return &GeneratedKey{Key: *key, SecretKey: material.SecretKey}, nil
}

// RevokeKey deactivates one key. Revoking an inactive key succeeds without change.
func (s *Service) RevokeKey(ctx context.Context, merchantID, keyID string) error {
	key, err := s.repo.GetByID(ctx, merchantID, keyID)
	if err != nil {
		return apperror.FromStore(err, "api key")
	}
	if !key.IsActive {
		return nil
	}
	if err := s.repo.DeactivateOne(ctx, key.ID); err != nil {
		return apperror.Storage(err)
	}
	log.Infof("[Keys] Revoked key %s for merchant %s", key.ID, merchantID)
	return nil
}

// ListKeys returns key metadata, newest first. Verifiers never leave the store
// layer through JSON.
func (s *Service) ListKeys(ctx context.Context, merchantID string) ([]models.APIKey, error) {
	keys, err := s.repo.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, apperror.Storage(err)
	}
	if keys == nil {
		keys = []models.APIKey{}
	}
	return keys, nil
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Name":
		return "name must be at most 100 characters"
	case "ExpiresInDays":
		return "expiresInDays must be between 1 and 3650"
	default:
		return fe.Error()
	}
}
