package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/internal/pkg/keys"
)

type KeyController struct {
	keys *keys.Service
}

func NewKeyController(svc *keys.Service) *KeyController {
	return &KeyController{keys: svc}
}

// HandleListKeys returns the key metadata of a merchant, newest first.
func (kc *KeyController) HandleListKeys(c *fiber.Ctx) error {
	list, err := kc.keys.ListKeys(c.UserContext(), c.Params("merchantID"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]fiber.Map, 0, len(list))
	for _, k := range list {
		out = append(out, keyResponse(k))
	}
	return c.JSON(fiber.Map{"data": out})
}

// HandleGenerateKey issues a key pair. The secret key appears in this response only.
func (kc *KeyController) HandleGenerateKey(c *fiber.Ctx) error {
	var in keys.GenerateInput
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	generated, err := kc.keys.GenerateKey(c.UserContext(), c.Params("merchantID"), in)
	if err != nil {
		return writeError(c, err)
	}

	resp := keyResponse(generated.Key)
	resp["secretKey"] = generated.SecretKey
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (kc *KeyController) HandleRevokeKey(c *fiber.Ctx) error {
	if err := kc.keys.RevokeKey(c.UserContext(), c.Params("merchantID"), c.Params("keyID")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func keyResponse(k models.APIKey) fiber.Map {
	return fiber.Map{
		"id":           k.ID,
		"merchantId":   k.MerchantID,
		"name":         k.Name,
		"keyType":      k.KeyType,
		"publicKey":    k.PublicKey,
		"secretPrefix": k.SecretPrefix,
		"isActive":     k.IsActive,
		"createdAt":    k.CreatedAt.UTC().Format(time.RFC3339),
		"lastUsedAt":   formatTimePtr(k.LastUsedAt),
		"expiresAt":    formatTimePtr(k.ExpiresAt),
	}
}
