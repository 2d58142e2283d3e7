package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ManuelReschke/merchantgate/app/models"
)

func seedMerchant(t *testing.T, s *Store) *models.Merchant {
	t.Helper()
	m := &models.Merchant{Name: "Acme", OwnerUserID: 1}
	require.NoError(t, s.Repositories().Merchant.Create(context.Background(), m))
	return m
}

func countActive(keys []models.APIKey, keyType models.KeyType) int {
	n := 0
	for _, k := range keys {
		if k.KeyType == keyType && k.IsActive {
			n++
		}
	}
	return n
}

func TestRotateKeepsExactlyOneActiveKeyUnderConcurrency(t *testing.T) {
	s := NewStore()
	repo := s.Repositories().APIKey
	m := seedMerchant(t, s)
	ctx := context.Background()

	require.NoError(t, repo.Rotate(ctx, &models.APIKey{MerchantID: m.ID, KeyType: models.KeyTypeTest, SecretPrefix: "sk_test_0000"}))

	var violations atomic.Int32
	stop := make(chan struct{})
	var readers sync.WaitGroup
	readers.Add(1)
	go func() {
		defer readers.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			keys, err := repo.ListByMerchant(ctx, m.ID)
			if err != nil || countActive(keys, models.KeyTypeTest) != 1 {
				violations.Add(1)
			}
		}
	}()

	var writers sync.WaitGroup
	for i := 0; i < 20; i++ {
		writers.Add(1)
		go func() {
			defer writers.Done()
			assert.NoError(t, repo.Rotate(ctx, &models.APIKey{MerchantID: m.ID, KeyType: models.KeyTypeTest}))
		}()
	}
	writers.Wait()
	close(stop)
	readers.Wait()

	assert.Zero(t, violations.Load())
	keys, err := repo.ListByMerchant(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, keys, 21)
	assert.Equal(t, 1, countActive(keys, models.KeyTypeTest))
}

func TestRotateLeavesOtherKeyTypeAlone(t *testing.T) {
	s := NewStore()
	repo := s.Repositories().APIKey
	m := seedMerchant(t, s)
	ctx := context.Background()

	live := &models.APIKey{MerchantID: m.ID, KeyType: models.KeyTypeLive}
	require.NoError(t, repo.Rotate(ctx, live))
	require.NoError(t, repo.Rotate(ctx, &models.APIKey{MerchantID: m.ID, KeyType: models.KeyTypeTest}))

	got, err := repo.FindActiveByMerchantAndType(ctx, m.ID, models.KeyTypeLive)
	require.NoError(t, err)
	assert.Equal(t, live.ID, got.ID)
}

func TestRotateUnknownMerchant(t *testing.T) {
	s := NewStore()
	err := s.Repositories().APIKey.Rotate(context.Background(), &models.APIKey{MerchantID: "missing", KeyType: models.KeyTypeTest})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Empty(t, s.Keys())
}

func TestMerchantCreateAddsOwnerMembership(t *testing.T) {
	s := NewStore()
	m := seedMerchant(t, s)
	repo := s.Repositories().Merchant

	member, err := repo.GetMembership(context.Background(), m.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, member.Role)

	_, err = repo.GetMembership(context.Background(), m.ID, 2)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	require.NoError(t, repo.AddMember(context.Background(), &models.MerchantMember{MerchantID: m.ID, UserID: 2, Role: models.RoleMember}))
	assert.ErrorIs(t, repo.AddMember(context.Background(), &models.MerchantMember{MerchantID: m.ID, UserID: 2, Role: models.RoleAdmin}), gorm.ErrDuplicatedKey)
}

func TestWebhookListsAreCopies(t *testing.T) {
	s := NewStore()
	repo := s.Repositories().Webhook
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Webhook{MerchantID: "m1", URL: "https://a.example", Events: []string{"*"}, IsActive: true}))
	require.NoError(t, repo.Create(ctx, &models.Webhook{MerchantID: "m1", URL: "https://b.example", Events: []string{"charge.succeeded"}, IsActive: false}))

	all, err := repo.ListByMerchant(ctx, "m1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := repo.ListActiveByMerchant(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	active[0].Events[0] = "mutated"

	again, err := repo.ListActiveByMerchant(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "*", again[0].Events[0])
}
