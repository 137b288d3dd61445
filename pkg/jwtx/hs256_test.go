package jwtx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHS256RoundTrip(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "accountd-test")
	now := time.Now().UTC()

	token, err := h.Sign(NewClaims("user-1", "sess-1", "accountd-test", time.Hour, now))
	require.NoError(t, err)

	claims, err := h.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.Subject)
	require.Equal(t, "sess-1", claims.SID)
}

func TestHS256RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewHS256([]byte("secret-a"), "accountd-test")
	token, err := signer.Sign(NewClaims("user-1", "", "accountd-test", time.Hour, time.Now()))
	require.NoError(t, err)

	verifier := NewHS256([]byte("secret-b"), "accountd-test")
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrInvalidSig)
}

func TestHS256RejectsExpired(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "accountd-test")
	token, err := h.Sign(NewClaims("user-1", "", "accountd-test", time.Hour, time.Now().Add(-2*time.Hour)))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrExpired)
}

func TestHS256RejectsWrongIssuer(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "other-issuer")
	token, err := h.Sign(NewClaims("user-1", "", "other-issuer", time.Hour, time.Now()))
	require.NoError(t, err)

	verifier := NewHS256([]byte("test-secret"), "accountd")
	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, ErrIssuer)
}

func TestHS256RequiresSubject(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "accountd-test")
	token, err := h.Sign(NewClaims("", "", "accountd-test", time.Hour, time.Now()))
	require.NoError(t, err)

	_, err = h.Verify(token)
	require.ErrorIs(t, err, ErrNoSubject)
}

func TestHS256RejectsGarbage(t *testing.T) {
	t.Parallel()

	h := NewHS256([]byte("test-secret"), "accountd-test")
	_, err := h.Verify("not.a.token")
	require.Error(t, err)
}
