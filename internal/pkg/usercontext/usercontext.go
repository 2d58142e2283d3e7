package usercontext

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/merchantgate/internal/pkg/auth"
)

// SetPrincipal stores the resolved caller for the rest of the request.
func SetPrincipal(c *fiber.Ctx, p auth.Principal) {
	c.Locals(KeyPrincipal, p)
	if p.IsUser() {
		c.Locals(KeyUserID, p.UserID)
	}
}

// GetPrincipal retrieves the principal from fiber context
// Returns the zero (unauthenticated) principal if none is set
func GetPrincipal(c *fiber.Ctx) auth.Principal {
	if p, ok := c.Locals(KeyPrincipal).(auth.Principal); ok {
		return p
	}
	return auth.Principal{}
}

// IsAuthenticated checks if the current caller was resolved
func IsAuthenticated(c *fiber.Ctx) bool {
	return GetPrincipal(c).Authenticated()
}
