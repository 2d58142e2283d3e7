package router

import (
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/ManuelReschke/merchantgate/app/repository"
	"github.com/ManuelReschke/merchantgate/internal/pkg/auth"
	"github.com/ManuelReschke/merchantgate/internal/pkg/authz"
	"github.com/ManuelReschke/merchantgate/internal/pkg/events"
	"github.com/ManuelReschke/merchantgate/internal/pkg/keys"
	"github.com/ManuelReschke/merchantgate/internal/pkg/webhooks"
)

// Services is the application container shared by routes and in-process callers.
// Dispatcher has no route; payment flows call it directly.
type Services struct {
	Resolver   *auth.Resolver
	Gate       *authz.Gate
	Keys       *keys.Service
	Webhooks   *webhooks.Service
	Dispatcher *events.Dispatcher
	Sessions   *session.Store
	Health     map[string]HealthCheck
}

// NewServices wires every component on top of the factory's repositories.
// A nil notifier disables the delivery wake-up signal.
func NewServices(factory *repository.Factory, notifier events.Notifier, sessions *session.Store) *Services {
	apiKeys := factory.GetAPIKeyRepository()
	webhookRepo := factory.GetWebhookRepository()
	return &Services{
		Resolver:   auth.NewResolver(factory.GetUserRepository(), apiKeys),
		Gate:       authz.NewGate(factory.GetMerchantRepository()),
		Keys:       keys.NewService(apiKeys),
		Webhooks:   webhooks.NewService(webhookRepo),
		Dispatcher: events.NewDispatcher(webhookRepo, factory.GetDeliveryRepository(), notifier),
		Sessions:   sessions,
		Health:     map[string]HealthCheck{},
	}
}
