package service_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/service"
	"github.com/openward/accountd/internal/account/store"
)

func TestHousekeepingSweepsExpiredStatuses(t *testing.T) {
	st := newTestStore(t)

	now := time.Now().UTC()
	require.NoError(t, st.VerificationStatuses().Upsert(t.Context(), domain.VerificationStatus{
		UserID:    "user-1",
		SessionID: "sess-old",
		CreatedAt: now.Add(-30 * time.Minute),
		ExpiresAt: now.Add(-20 * time.Minute),
	}))
	require.NoError(t, st.VerificationStatuses().Upsert(t.Context(), domain.VerificationStatus{
		UserID:    "user-1",
		SessionID: "sess-live",
		CreatedAt: now,
		ExpiresAt: now.Add(10 * time.Minute),
	}))

	hk := service.NewHousekeepingService(st.VerificationStatuses(), slog.Default(), time.Hour)
	hk.Start()
	hk.Stop()

	// The startup sweep runs before Stop returns.
	_, err := st.VerificationStatuses().Get(t.Context(), "user-1", "sess-old")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.VerificationStatuses().Get(t.Context(), "user-1", "sess-live")
	require.NoError(t, err)
}
