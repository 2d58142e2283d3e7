package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
)

// writeError renders err in the API error shape. Storage and unknown errors are
// logged here because their cause is never sent to the client.
func writeError(c *fiber.Ctx, err error) error {
	kind := apperror.KindOf(err)
	if kind == apperror.KindStorage || kind == apperror.KindInternal {
		log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{
		"error":   kind.String(),
		"message": apperror.PublicMessage(err),
	})
}

// parseBody decodes a JSON body, reporting malformed input as a validation error.
func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code == fiber.StatusUnprocessableEntity {
			return apperror.Validation("request body must be JSON")
		}
		return apperror.Validation("malformed request body")
	}
	return nil
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
