package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/store"
	redisdriver "github.com/openward/accountd/internal/account/store/drivers/redis"
)

func newVerifications(t *testing.T) (*redisdriver.VerificationStatuses, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return redisdriver.NewVerificationStatuses(client), mr
}

func TestUpsertAndGet(t *testing.T) {
	verifications, _ := newVerifications(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	status := domain.VerificationStatus{
		UserID:    "user-1",
		SessionID: "sess-1",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, verifications.Upsert(ctx, status))

	got, err := verifications.Get(ctx, "user-1", "sess-1")
	require.NoError(t, err)
	require.Equal(t, "user-1", got.UserID)
	require.Equal(t, "sess-1", got.SessionID)
	require.True(t, got.ExpiresAt.Equal(status.ExpiresAt))
}

func TestGetMissingPair(t *testing.T) {
	verifications, _ := newVerifications(t)

	_, err := verifications.Get(context.Background(), "user-1", "sess-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertSupersedes(t *testing.T) {
	verifications, _ := newVerifications(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	first := domain.VerificationStatus{
		UserID:    "user-1",
		SessionID: "sess-1",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}
	require.NoError(t, verifications.Upsert(ctx, first))

	second := first
	second.ExpiresAt = now.Add(20 * time.Minute)
	require.NoError(t, verifications.Upsert(ctx, second))

	got, err := verifications.Get(ctx, "user-1", "sess-1")
	require.NoError(t, err)
	require.True(t, got.ExpiresAt.Equal(second.ExpiresAt))
}

func TestKeyExpiresWithTTL(t *testing.T) {
	verifications, mr := newVerifications(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, verifications.Upsert(ctx, domain.VerificationStatus{
		UserID:    "user-1",
		SessionID: "sess-1",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}))

	mr.FastForward(11 * time.Minute)

	_, err := verifications.Get(ctx, "user-1", "sess-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpsertAlreadyExpiredStoresNothing(t *testing.T) {
	verifications, _ := newVerifications(t)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, verifications.Upsert(ctx, domain.VerificationStatus{
		UserID:    "user-1",
		SessionID: "sess-1",
		CreatedAt: now.Add(-20 * time.Minute),
		ExpiresAt: now.Add(-10 * time.Minute),
	}))

	_, err := verifications.Get(ctx, "user-1", "sess-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
