package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
	"github.com/ManuelReschke/merchantgate/internal/pkg/auth"
	"github.com/ManuelReschke/merchantgate/internal/pkg/authz"
	"github.com/ManuelReschke/merchantgate/internal/pkg/usercontext"
)

// MerchantParam is the route parameter carrying the merchant id.
const MerchantParam = "merchantID"

// Authorizer is satisfied by *authz.Gate.
type Authorizer interface {
	Authorize(ctx context.Context, p auth.Principal, merchantID string, required models.Role) (authz.Decision, error)
}

// RequireMerchantRole ensures the principal may act on :merchantID with at
// least the given role. Must run after Authenticate.
func RequireMerchantRole(gate Authorizer, role models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal := usercontext.GetPrincipal(c)
		if !principal.Authenticated() {
			return respondError(c, apperror.Unauthenticated())
		}

		merchantID := c.Params(MerchantParam)
		decision, err := gate.Authorize(c.UserContext(), principal, merchantID, role)
		if err != nil {
			log.Errorf("[Authz] Checking %s on merchant %s failed: %v", role, merchantID, err)
			return respondError(c, err)
		}
		if !decision.Allowed {
			return respondError(c, decision.Err())
		}
		return c.Next()
	}
}
