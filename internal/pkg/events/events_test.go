package events

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	cases := []struct {
		name string
		subs []string
		typ  EventType
		want bool
	}{
		{"exact", []string{"customer.created"}, CustomerCreated, true},
		{"other exact", []string{"customer.created"}, CustomerUpdated, false},
		{"wildcard", []string{"*"}, RefundFailed, true},
		{"prefix pattern", []string{"refund.*"}, RefundFailed, false},
		{"object name", []string{"refund"}, RefundFailed, false},
		{"empty", nil, RefundFailed, false},
		{"wildcard among others", []string{"charge.failed", "*"}, CustomerDeleted, true},
		{"padded wildcard", []string{" *"}, CustomerDeleted, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.subs, tc.typ))
		})
	}
}

func TestCatalogue(t *testing.T) {
	all := Catalogue()
	require.NotEmpty(t, all)
	seen := map[EventType]bool{}
	for _, et := range all {
		assert.False(t, seen[et], "duplicate %s", et)
		seen[et] = true
		assert.True(t, et.Known())
		assert.Contains(t, []ObjectType{ObjectPaymentIntent, ObjectCharge, ObjectRefund, ObjectCustomer}, et.Object())
	}

	all[0] = "mutated"
	assert.Equal(t, PaymentIntentCreated, Catalogue()[0])

	assert.True(t, ValidSubscription("*"))
	assert.True(t, ValidSubscription("charge.failed"))
	assert.False(t, ValidSubscription("charge.*"))
	assert.False(t, ValidSubscription(""))
}

func TestEnvelopeRoundTripKeepsVariant(t *testing.T) {
	now := time.Unix(1700000000, 0)
	cases := []struct {
		typ  EventType
		data Data
	}{
		{PaymentIntentPaymentFailed, PaymentIntent{ID: "pi_1", Amount: 500, Currency: "usd", Status: "requires_payment_method", LastPaymentError: "card_declined"}},
		{ChargeFailed, Charge{ID: "ch_1", PaymentIntentID: "pi_1", FailureCode: "card_declined"}},
		{RefundUpdated, Refund{ID: "re_1", ChargeID: "ch_1", Amount: 100, Status: "succeeded"}},
		{CustomerCreated, Customer{ID: "cus_1", Email: "a@example.com", Metadata: map[string]string{"tier": "gold"}}},
	}
	for _, tc := range cases {
		t.Run(string(tc.typ), func(t *testing.T) {
			env, err := NewEnvelope(tc.typ, tc.data, now)
			require.NoError(t, err)
			assert.NotEmpty(t, env.ID)
			assert.Equal(t, int64(1700000000), env.Created)

			b, err := json.Marshal(env)
			require.NoError(t, err)

			var raw map[string]any
			require.NoError(t, json.Unmarshal(b, &raw))
			assert.Equal(t, "event", raw["object"])
			assert.Equal(t, string(tc.typ), raw["type"])
			assert.Contains(t, raw["data"], "object")

			var back Envelope
			require.NoError(t, json.Unmarshal(b, &back))
			assert.Equal(t, env, back)
		})
	}
}

func TestEnvelopeRejectsUnknownType(t *testing.T) {
	var env Envelope
	err := json.Unmarshal([]byte(`{"id":"x","type":"payout.paid","created":1,"data":{"object":{}}}`), &env)
	assert.Error(t, err)
}
