package events

import "github.com/ManuelReschke/merchantgate/app/models"

// Matches reports whether a subscription set covers eventType: either the
// exact type string or the literal Wildcard. "refund.*" is not a pattern.
func Matches(subscribed []string, eventType EventType) bool {
	for _, s := range subscribed {
		if s == Wildcard || s == string(eventType) {
			return true
		}
	}
	return false
}

// Subscribers filters webhooks down to the active ones subscribed to eventType.
func Subscribers(webhooks []models.Webhook, eventType EventType) []models.Webhook {
	var out []models.Webhook
	for _, w := range webhooks {
		if w.IsActive && Matches(w.Events, eventType) {
			out = append(out, w)
		}
	}
	return out
}
