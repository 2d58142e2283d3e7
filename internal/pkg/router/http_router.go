package router

import (
	"context"
	"sort"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// HealthCheck probes one dependency; nil means healthy.
type HealthCheck func(ctx context.Context) error

const healthTimeout = 2 * time.Second

type HttpRouter struct {
	checks map[string]HealthCheck
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", h.handleHealth)
}

func NewHttpRouter(checks map[string]HealthCheck) *HttpRouter {
	return &HttpRouter{checks: checks}
}

func (h HttpRouter) handleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := fiber.StatusOK
	result := fiber.Map{}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			log.Warnf("[Health] %s check failed: %v", name, err)
			result[name] = "down"
			status = fiber.StatusServiceUnavailable
			continue
		}
		result[name] = "up"
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{"status": state, "checks": result})
}
