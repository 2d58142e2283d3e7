package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/internal/pkg/webhooks"
)

type WebhookController struct {
	webhooks *webhooks.Service
}

func NewWebhookController(svc *webhooks.Service) *WebhookController {
	return &WebhookController{webhooks: svc}
}

func (wc *WebhookController) HandleListWebhooks(c *fiber.Ctx) error {
	list, err := wc.webhooks.List(c.UserContext(), c.Params("merchantID"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]fiber.Map, 0, len(list))
	for _, w := range list {
		out = append(out, webhookResponse(w))
	}
	return c.JSON(fiber.Map{"data": out})
}

// HandleCreateWebhook registers an endpoint and returns its signing secret once.
func (wc *WebhookController) HandleCreateWebhook(c *fiber.Ctx) error {
	var in webhooks.CreateInput
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	created, err := wc.webhooks.Create(c.UserContext(), c.Params("merchantID"), in)
	if err != nil {
		return writeError(c, err)
	}

	resp := webhookResponse(created.Webhook)
	resp["secret"] = created.Secret
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (wc *WebhookController) HandleDeactivateWebhook(c *fiber.Ctx) error {
	if err := wc.webhooks.Deactivate(c.UserContext(), c.Params("merchantID"), c.Params("webhookID")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func webhookResponse(w models.Webhook) fiber.Map {
	subscribed := []string(w.Events)
	if subscribed == nil {
		subscribed = []string{}
	}
	return fiber.Map{
		"id":          w.ID,
		"merchantId":  w.MerchantID,
		"url":         w.URL,
		"description": w.Description,
		"events":      subscribed,
		"isActive":    w.IsActive,
		"createdAt":   w.CreatedAt.UTC().Format(time.RFC3339),
		"updatedAt":   w.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
