package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/merchantgate/internal/pkg/events"
)

// HandleListEventTypes returns the event types a webhook can subscribe to.
func HandleListEventTypes(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"data":     events.Catalogue(),
		"wildcard": events.Wildcard,
	})
}
