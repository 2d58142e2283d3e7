package keys

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/merchantgate/app/models"
	"github.com/ManuelReschke/merchantgate/app/repository/memory"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apikey"
	"github.com/ManuelReschke/merchantgate/internal/pkg/apperror"
)

func newService(t *testing.T) (*Service, *memory.Store, string) {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	m := &models.Merchant{Name: "Acme", OwnerUserID: 1}
	require.NoError(t, repos.Merchant.Create(context.Background(), m))
	return NewService(repos.APIKey), store, m.ID
}

func intPtr(v int) *int { return &v }

func TestGenerateKeyReturnsSecretOnce(t *testing.T) {
	svc, store, merchantID := newService(t)

	got, err := svc.GenerateKey(context.Background(), merchantID, GenerateInput{KeyType: "live", Name: " Backend "})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got.SecretKey, "sk_live_"))
	assert.Equal(t, "Backend", got.Key.Name)
	assert.True(t, got.Key.IsActive)
	assert.True(t, apikey.Verify(got.SecretKey, got.Key.SecretVerifier))

	for _, k := range store.Keys() {
		b, err := json.Marshal(k)
		require.NoError(t, err)
		assert.NotContains(t, string(b), got.SecretKey)
		assert.NotContains(t, string(b), k.SecretVerifier)
	}
}

func TestGenerateKeyRotatesSameType(t *testing.T) {
	svc, _, merchantID := newService(t)
	ctx := context.Background()

	first, err := svc.GenerateKey(ctx, merchantID, GenerateInput{KeyType: "test"})
	require.NoError(t, err)
	live, err := svc.GenerateKey(ctx, merchantID, GenerateInput{KeyType: "live"})
	require.NoError(t, err)
	second, err := svc.GenerateKey(ctx, merchantID, GenerateInput{KeyType: "test"})
	require.NoError(t, err)

	list, err := svc.ListKeys(ctx, merchantID)
	require.NoError(t, err)
	require.Len(t, list, 3)

	active := map[string]bool{}
	for _, k := range list {
		active[k.ID] = k.IsActive
	}
	assert.False(t, active[first.Key.ID])
	assert.True(t, active[second.Key.ID])
	assert.True(t, active[live.Key.ID])
}

func TestGenerateKeyValidation(t *testing.T) {
	svc, store, merchantID := newService(t)

	cases := map[string]GenerateInput{
		"bad type":    {KeyType: "prod"},
		"empty type":  {},
		"upper case":  {KeyType: "TEST"},
		"padded type": {KeyType: " live "},
		"long name":   {KeyType: "test", Name: strings.Repeat("x", 101)},
		"zero expiry": {KeyType: "test", ExpiresInDays: intPtr(0)},
		"huge expiry": {KeyType: "test", ExpiresInDays: intPtr(3651)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.GenerateKey(context.Background(), merchantID, in)
			assert.True(t, apperror.IsKind(err, apperror.KindValidation), "%v", err)
		})
	}
	assert.Empty(t, store.Keys())
}

func TestGenerateKeyExpiry(t *testing.T) {
	svc, _, merchantID := newService(t)
	now := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	got, err := svc.GenerateKey(context.Background(), merchantID, GenerateInput{KeyType: "test", ExpiresInDays: intPtr(30)})
	require.NoError(t, err)
	require.NotNil(t, got.Key.ExpiresAt)
	assert.Equal(t, now.AddDate(0, 0, 30), *got.Key.ExpiresAt)
}

func TestGenerateKeyUnknownMerchant(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.GenerateKey(context.Background(), "missing", GenerateInput{KeyType: "test"})
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestRevokeKeyIsIdempotent(t *testing.T) {
	svc, store, merchantID := newService(t)
	ctx := context.Background()

	got, err := svc.GenerateKey(ctx, merchantID, GenerateInput{KeyType: "test"})
	require.NoError(t, err)

	require.NoError(t, svc.RevokeKey(ctx, merchantID, got.Key.ID))
	before := store.Keys()
	require.NoError(t, svc.RevokeKey(ctx, merchantID, got.Key.ID))
	assert.Equal(t, before, store.Keys())
	assert.False(t, before[0].IsActive)
}

func TestRevokeKeyScopedToMerchant(t *testing.T) {
	svc, _, merchantID := newService(t)
	ctx := context.Background()

	got, err := svc.GenerateKey(ctx, merchantID, GenerateInput{KeyType: "test"})
	require.NoError(t, err)

	err = svc.RevokeKey(ctx, "someone-else", got.Key.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = svc.RevokeKey(ctx, merchantID, "nope")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestListKeysEmpty(t *testing.T) {
	svc, _, merchantID := newService(t)
	list, err := svc.ListKeys(context.Background(), merchantID)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
