package events

import "strings"

// EventType names one kind of domain occurrence, "<object>.<action>".
type EventType string

const (
	PaymentIntentCreated        EventType = "payment_intent.created"
	PaymentIntentSucceeded      EventType = "payment_intent.succeeded"
	PaymentIntentPaymentFailed  EventType = "payment_intent.payment_failed"
	PaymentIntentCanceled       EventType = "payment_intent.canceled"
	PaymentIntentRequiresAction EventType = "payment_intent.requires_action"
	ChargeSucceeded             EventType = "charge.succeeded"
	ChargeFailed                EventType = "charge.failed"
	ChargeRefunded              EventType = "charge.refunded"
	RefundCreated               EventType = "refund.created"
	RefundUpdated               EventType = "refund.updated"
	RefundFailed                EventType = "refund.failed"
	CustomerCreated             EventType = "customer.created"
	CustomerUpdated             EventType = "customer.updated"
	CustomerDeleted             EventType = "customer.deleted"
)

// Wildcard subscribes a webhook to every event type. Only the exact token matches.
const Wildcard = "*"

var catalogue = []EventType{
	PaymentIntentCreated,
	PaymentIntentSucceeded,
	PaymentIntentPaymentFailed,
	PaymentIntentCanceled,
	PaymentIntentRequiresAction,
	ChargeSucceeded,
	ChargeFailed,
	ChargeRefunded,
	RefundCreated,
	RefundUpdated,
	RefundFailed,
	CustomerCreated,
	CustomerUpdated,
	CustomerDeleted,
}

var known = func() map[EventType]struct{} {
	m := make(map[EventType]struct{}, len(catalogue))
	for _, t := range catalogue {
		m[t] = struct{}{}
	}
	return m
}()

// Catalogue returns every event type in a stable order.
func Catalogue() []EventType {
	return append([]EventType(nil), catalogue...)
}

func (t EventType) Known() bool {
	_, ok := known[t]
	return ok
}

// Object is the domain object family of t, e.g. "payment_intent".
func (t EventType) Object() ObjectType {
	obj, _, _ := strings.Cut(string(t), ".")
	return ObjectType(obj)
}

// ValidSubscription reports whether s may appear in a webhook's event set.
func ValidSubscription(s string) bool {
	return s == Wildcard || EventType(s).Known()
}
