package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
	"github.com/ManuelReschke/merchantgate/internal/pkg/auth"
	sessionstore "github.com/ManuelReschke/merchantgate/internal/pkg/session"
	"github.com/ManuelReschke/merchantgate/internal/pkg/usercontext"
)

// PrincipalResolver is satisfied by *auth.Resolver.
type PrincipalResolver interface {
	Resolve(ctx context.Context, req auth.Request) (auth.Principal, error)
}

// Authenticate resolves the caller from the session cookie or the API key
// header and rejects the request with 401 when neither identifies anyone.
func Authenticate(resolver PrincipalResolver, store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := auth.Request{
			SessionUserID: sessionstore.GetUserID(store, c),
			Credential:    extractAPIKeyFromHeader(c),
		}

		principal, err := resolver.Resolve(c.UserContext(), req)
		if err != nil {
			if !apperror.IsKind(err, apperror.KindAuthentication) {
				log.Errorf("[Auth] Resolving principal for %s %s failed: %v", c.Method(), c.Path(), err)
			}
			return respondError(c, err)
		}

		usercontext.SetPrincipal(c, principal)
		return c.Next()
	}
}

func extractAPIKeyFromHeader(c *fiber.Ctx) string {
	apiKey := strings.TrimSpace(c.Get("X-API-Key"))
	if apiKey != "" {
		return apiKey
	}
	header := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func respondError(c *fiber.Ctx, err error) error {
	return c.Status(apperror.HTTPStatus(err)).JSON(fiber.Map{
		"error":   apperror.KindOf(err).String(),
		"message": apperror.PublicMessage(err),
	})
}
