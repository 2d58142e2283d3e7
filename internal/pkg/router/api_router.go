package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/ManuelReschke/merchantgate/app/controllers"
	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/internal/pkg/middleware"
)

type ApiRouter struct {
	services *Services
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
		},
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// API v1 routes
	s := h.services
	v1 := api.Group("/v1", middleware.Authenticate(s.Resolver, s.Sessions))
	v1.Get("/event-types", controllers.HandleListEventTypes)

	keyController := controllers.NewKeyController(s.Keys)
	webhookController := controllers.NewWebhookController(s.Webhooks)
	role := func(r models.Role) fiber.Handler {
		return middleware.RequireMerchantRole(s.Gate, r)
	}

	merchant := v1.Group("/merchants/:" + middleware.MerchantParam)
	merchant.Get("/keys", role(models.RoleMember), keyController.HandleListKeys)
	merchant.Post("/keys", role(models.RoleOwner), keyController.HandleGenerateKey)
	merchant.Delete("/keys/:keyID", role(models.RoleOwner), keyController.HandleRevokeKey)

	merchant.Get("/webhooks", role(models.RoleMember), webhookController.HandleListWebhooks)
	merchant.Post("/webhooks", role(models.RoleAdmin), webhookController.HandleCreateWebhook)
	merchant.Delete("/webhooks/:webhookID", role(models.RoleAdmin), webhookController.HandleDeactivateWebhook)
}

func NewApiRouter(services *Services) *ApiRouter {
	return &ApiRouter{services: services}
}
