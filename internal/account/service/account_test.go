package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/service"
	"github.com/openward/accountd/internal/account/store"
	"github.com/openward/accountd/internal/account/store/drivers/sqlite"
	"github.com/openward/accountd/pkg/credential"
	"github.com/openward/accountd/pkg/idx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// newTestService wires an AccountService over an in-memory store with a
// controllable clock.
func newTestService(t *testing.T, st store.Store, now *time.Time) *service.AccountService {
	t.Helper()

	return &service.AccountService{
		Users:         st.Users(),
		Verifications: st.VerificationStatuses(),
		Collisions:    service.NewCollisionChecker(st.Users()),
		Codec:         credential.New(),
		Now:           func() time.Time { return *now },
	}
}

func createUser(t *testing.T, st store.Store, u domain.User) domain.User {
	t.Helper()

	if u.ID == "" {
		u.ID = idx.New().String()
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func createUserWithPassword(t *testing.T, st store.Store, username, password string) domain.User {
	t.Helper()

	cred, err := credential.New().Encrypt(password)
	require.NoError(t, err)

	return createUser(t, st, domain.User{
		Username: username,
		Password: &cred,
	})
}

func TestVerifyPasswordRecordsStatus(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "correct-horse")

	err := svc.VerifyPassword(t.Context(), user.ID, "sess-1", "correct-horse")
	require.NoError(t, err)

	status, err := st.VerificationStatuses().Get(t.Context(), user.ID, "sess-1")
	require.NoError(t, err)
	require.Equal(t, user.ID, status.UserID)
	require.Equal(t, "sess-1", status.SessionID)
	require.False(t, status.Expired(now))
}

func TestVerifyPasswordMismatchRecordsNothing(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "correct-horse")

	err := svc.VerifyPassword(t.Context(), user.ID, "sess-1", "wrong-guess")
	require.ErrorIs(t, err, credential.ErrMismatch)

	_, err = st.VerificationStatuses().Get(t.Context(), user.ID, "sess-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestVerifyPasswordNoCredentialIsMismatch(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUser(t, st, domain.User{Username: "nopass"})

	err := svc.VerifyPassword(t.Context(), user.ID, "sess-1", "anything")
	require.ErrorIs(t, err, credential.ErrMismatch)
}

func TestVerifyPasswordLegacyBcrypt(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	hash, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := createUser(t, st, domain.User{
		Username: "legacy",
		Password: &credential.Encrypted{Method: credential.MethodBcrypt, Hash: string(hash)},
	})

	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))
	require.ErrorIs(t,
		svc.VerifyPassword(t.Context(), user.ID, "sess-1", "not-it"),
		credential.ErrMismatch)
}

func TestSetPasswordFirstTimeNeedsNoVerification(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUser(t, st, domain.User{Username: "fresh"})

	require.NoError(t, svc.SetPassword(t.Context(), user.ID, "sess-1", "brand-new-pass"))

	// The new password verifies and the stored method is the current one.
	stored, err := st.Users().GetUserByID(t.Context(), user.ID)
	require.NoError(t, err)
	require.True(t, stored.HasPassword())
	require.Equal(t, credential.MethodArgon2id, stored.Password.Method)
	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "brand-new-pass"))
}

func TestSetPasswordReplaceRequiresVerification(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "old-password")

	err := svc.SetPassword(t.Context(), user.ID, "sess-1", "new-password")
	require.ErrorIs(t, err, service.ErrVerificationRequired)

	// Old credential untouched after the rejected attempt.
	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))
}

func TestSetPasswordAfterVerification(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "old-password")

	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))
	require.NoError(t, svc.SetPassword(t.Context(), user.ID, "sess-1", "new-password"))

	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "new-password"))
	require.ErrorIs(t,
		svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"),
		credential.ErrMismatch)
}

func TestSetPasswordVerificationIsNonConsuming(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "old-password")

	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))

	// Two sensitive changes inside the same window both pass the gate.
	require.NoError(t, svc.SetPassword(t.Context(), user.ID, "sess-1", "second-password"))
	require.NoError(t, svc.SetPassword(t.Context(), user.ID, "sess-1", "third-password"))
}

func TestSetPasswordVerificationExpires(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "old-password")

	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))

	// Just inside the window the change is allowed.
	now = now.Add(service.DefaultVerificationTTL - time.Second)
	require.NoError(t, svc.SetPassword(t.Context(), user.ID, "sess-1", "new-password"))

	// Reverify at the new instant, then cross the boundary.
	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "new-password"))
	now = now.Add(service.DefaultVerificationTTL + time.Second)
	err := svc.SetPassword(t.Context(), user.ID, "sess-1", "later-password")
	require.ErrorIs(t, err, service.ErrVerificationRequired)
}

func TestSetPasswordOtherSessionNotVerified(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "old-password")

	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))

	// Verification is scoped to the session that performed it.
	err := svc.SetPassword(t.Context(), user.ID, "sess-2", "new-password")
	require.ErrorIs(t, err, service.ErrVerificationRequired)
}

func TestReverificationExtendsWindow(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUserWithPassword(t, st, "alice", "old-password")

	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))

	// Halfway in, verify again. The second record supersedes the first, so
	// a change after the original window would have closed still passes.
	now = now.Add(service.DefaultVerificationTTL / 2)
	require.NoError(t, svc.VerifyPassword(t.Context(), user.ID, "sess-1", "old-password"))

	now = now.Add(service.DefaultVerificationTTL - time.Second)
	require.NoError(t, svc.SetPassword(t.Context(), user.ID, "sess-1", "new-password"))
}

func TestSuspendedUserRejectedEverywhere(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	cred, err := credential.New().Encrypt("some-password")
	require.NoError(t, err)
	user := createUser(t, st, domain.User{
		Username:    "frozen",
		IsSuspended: true,
		Password:    &cred,
	})

	name := "New Name"
	_, err = svc.UpdateProfile(t.Context(), user.ID, domain.ProfilePatch{Name: &name})
	require.ErrorIs(t, err, service.ErrUserSuspended)

	_, err = svc.CustomData(t.Context(), user.ID)
	require.ErrorIs(t, err, service.ErrUserSuspended)

	_, err = svc.UpdateCustomData(t.Context(), user.ID, map[string]any{"k": "v"})
	require.ErrorIs(t, err, service.ErrUserSuspended)

	// Suspension wins even with a correct password or a missing session.
	err = svc.VerifyPassword(t.Context(), user.ID, "sess-1", "some-password")
	require.ErrorIs(t, err, service.ErrUserSuspended)
	err = svc.VerifyPassword(t.Context(), user.ID, "", "some-password")
	require.ErrorIs(t, err, service.ErrUserSuspended)
	err = svc.SetPassword(t.Context(), user.ID, "sess-1", "new-password")
	require.ErrorIs(t, err, service.ErrUserSuspended)
}

func TestMissingSessionRejectedBeforeCredentialChecks(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	// No credential on file: the session gate still fires first.
	user := createUser(t, st, domain.User{Username: "nosession"})

	err := svc.VerifyPassword(t.Context(), user.ID, "", "whatever")
	require.ErrorIs(t, err, service.ErrSessionNotFound)

	err = svc.SetPassword(t.Context(), user.ID, "", "whatever-else")
	require.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestUpdateProfilePartialPatch(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUser(t, st, domain.User{Username: "alice", Name: "Alice"})

	name := "Alice Cooper"
	profile, err := svc.UpdateProfile(t.Context(), user.ID, domain.ProfilePatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Alice Cooper", profile.Name)
	require.Equal(t, "alice", profile.Username)
	require.False(t, profile.HasPassword)
}

func TestUpdateProfileUsernameCollision(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	createUser(t, st, domain.User{Username: "taken"})
	user := createUser(t, st, domain.User{Username: "alice"})

	username := "taken"
	_, err := svc.UpdateProfile(t.Context(), user.ID, domain.ProfilePatch{Username: &username})
	require.ErrorIs(t, err, service.ErrUsernameTaken)

	// Differently-cased collisions count too.
	username = "TAKEN"
	_, err = svc.UpdateProfile(t.Context(), user.ID, domain.ProfilePatch{Username: &username})
	require.ErrorIs(t, err, service.ErrUsernameTaken)

	// Keeping your own username is not a collision.
	username = "alice"
	_, err = svc.UpdateProfile(t.Context(), user.ID, domain.ProfilePatch{Username: &username})
	require.NoError(t, err)
}

func TestUpdateProfileEmailCollision(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	createUser(t, st, domain.User{Username: "bob", PrimaryEmail: "bob@example.com"})
	user := createUser(t, st, domain.User{Username: "alice"})

	email := "Bob@Example.com"
	_, err := svc.UpdateProfile(t.Context(), user.ID, domain.ProfilePatch{PrimaryEmail: &email})
	require.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestCustomDataRoundTrip(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	user := createUser(t, st, domain.User{Username: "alice"})

	initial, err := svc.CustomData(t.Context(), user.ID)
	require.NoError(t, err)
	require.Empty(t, initial)

	stored, err := svc.UpdateCustomData(t.Context(), user.ID, map[string]any{
		"theme": "dark",
		"beta":  true,
	})
	require.NoError(t, err)
	require.Equal(t, "dark", stored["theme"])
	require.Equal(t, true, stored["beta"])

	// Replacement is wholesale, not a merge.
	stored, err = svc.UpdateCustomData(t.Context(), user.ID, map[string]any{"theme": "light"})
	require.NoError(t, err)
	require.Equal(t, "light", stored["theme"])
	require.NotContains(t, stored, "beta")
}

func TestProfileUnknownUser(t *testing.T) {
	st := newTestStore(t)
	now := time.Now().UTC()
	svc := newTestService(t, st, &now)

	_, err := svc.Profile(t.Context(), idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)
}
