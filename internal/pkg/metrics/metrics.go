// Package metrics holds the Prometheus collectors for authentication and
// webhook fan-out.
package metrics

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "merchantgate"

// Authentication outcomes.
const (
	AuthSession         = "session"
	AuthAPIKey          = "api_key"
	AuthUnauthenticated = "unauthenticated"
)

var (
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "attempts_total",
			Help:      "Authentication attempts by outcome",
		},
		[]string{"outcome"},
	)

	EventsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "emitted_total",
			Help:      "Events built by the dispatcher, matched or not",
		},
		[]string{"type"},
	)

	DeliveriesEnqueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "deliveries_enqueued_total",
			Help:      "Webhook delivery rows written",
		},
		[]string{"type"},
	)

	DispatchFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "dispatch_failures_total",
			Help:      "Dispatch errors swallowed by best-effort emission",
		},
		[]string{"stage"},
	)

	KeysGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "keys",
			Name:      "generated_total",
			Help:      "API keys generated by key type",
		},
		[]string{"key_type"},
	)
)

var registerOnce sync.Once

// Register adds every collector to reg. Collectors already present are reused.
func Register(reg prometheus.Registerer) error {
	var err error
	registerOnce.Do(func() {
		for _, c := range []prometheus.Collector{AuthAttempts, EventsEmitted, DeliveriesEnqueued, DispatchFailures, KeysGenerated} {
			if rerr := reg.Register(c); rerr != nil {
				var already prometheus.AlreadyRegisteredError
				if errors.As(rerr, &already) {
					continue
				}
				err = rerr
				return
			}
		}
	})
	return err
}
