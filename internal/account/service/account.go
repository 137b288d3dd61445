package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/store"
	"github.com/openward/accountd/pkg/credential"
	"github.com/openward/accountd/pkg/slogx"
)

// DefaultVerificationTTL is how long a successful password verification
// keeps gating sensitive changes for the same session.
const DefaultVerificationTTL = 10 * time.Minute

// AccountService owns the credential lifecycle: password verification,
// password changes gated on recent verification, and profile mutations
// gated on suspension. All collaborators arrive by injection; there is no
// ambient state.
//
// Gate order is fixed across operations: suspension, then session, then
// whatever the operation itself requires. A suspended user always sees
// the suspension failure, and a missing session fails before any
// credential shortcut applies.
type AccountService struct {
	Users         store.Users
	Verifications store.VerificationStatuses
	Collisions    CollisionChecker
	Codec         *credential.Codec

	// VerificationTTL defaults to DefaultVerificationTTL when zero.
	VerificationTTL time.Duration

	// Now is the clock; nil means time.Now. Injected for expiry tests.
	Now func() time.Time
}

func (s *AccountService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *AccountService) ttl() time.Duration {
	if s.VerificationTTL > 0 {
		return s.VerificationTTL
	}
	return DefaultVerificationTTL
}

// Profile returns the user's profile fields plus whether a password is on
// file. Reads are not suspension-gated.
func (s *AccountService) Profile(ctx context.Context, userID string) (domain.Profile, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.ProfileOf(user), nil
}

// UpdateProfile applies a partial profile update after the suspension
// gate and the identifier collision check. Profile fields are not secret
// credentials, so no step-up verification applies.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (domain.Profile, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.Profile{}, err
	}
	if user.IsSuspended {
		return domain.Profile{}, ErrUserSuspended
	}

	if err := s.Collisions.CheckIdentifierCollision(ctx, patch, userID); err != nil {
		return domain.Profile{}, err
	}

	updated, err := s.Users.UpdateProfile(ctx, userID, patch)
	if err != nil {
		return domain.Profile{}, err
	}
	return domain.ProfileOf(updated), nil
}

// CustomData returns the user's opaque custom data document.
func (s *AccountService) CustomData(ctx context.Context, userID string) (map[string]any, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuspended {
		return nil, ErrUserSuspended
	}
	return user.CustomData, nil
}

// UpdateCustomData replaces the custom data document and echoes back what
// was stored.
func (s *AccountService) UpdateCustomData(ctx context.Context, userID string, data map[string]any) (map[string]any, error) {
	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsSuspended {
		return nil, ErrUserSuspended
	}
	return s.Users.UpdateCustomData(ctx, userID, data)
}

// VerifyPassword checks the supplied password against the stored
// credential and, on success, records a verification status for the
// (user, session) pair. A mismatch records nothing.
func (s *AccountService) VerifyPassword(ctx context.Context, userID, sessionID, password string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsSuspended {
		return ErrUserSuspended
	}
	if sessionID == "" {
		return ErrSessionNotFound
	}

	// No credential on file verifies against nothing; treat it as a
	// mismatch rather than leaking whether a password exists.
	if user.Password == nil {
		return credential.ErrMismatch
	}

	if err := s.Codec.Verify(*user.Password, password); err != nil {
		if errors.Is(err, credential.ErrMismatch) {
			log.Info("password verification failed", "user_id", userID)
		}
		return err
	}

	now := s.now()
	status := domain.VerificationStatus{
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Verifications.Upsert(ctx, status); err != nil {
		return fmt.Errorf("recording verification status: %w", err)
	}

	return nil
}

// SetPassword replaces the stored credential. A first-time set (no prior
// credential) needs no step-up proof; replacing an existing credential
// requires a live verification status for the same (user, session) pair.
func (s *AccountService) SetPassword(ctx context.Context, userID, sessionID, password string) error {
	log := slogx.FromContext(ctx)

	user, err := s.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsSuspended {
		return ErrUserSuspended
	}
	if sessionID == "" {
		return ErrSessionNotFound
	}

	if user.HasPassword() {
		if err := s.checkVerified(ctx, userID, sessionID); err != nil {
			return err
		}
	}

	cred, err := s.Codec.Encrypt(password)
	if err != nil {
		return fmt.Errorf("encrypting password: %w", err)
	}

	if err := s.Users.UpdatePassword(ctx, userID, cred); err != nil {
		return fmt.Errorf("persisting credential: %w", err)
	}

	log.Info("password updated", "user_id", userID, "method", cred.Method)
	return nil
}

// checkVerified is non-consuming: a status stays valid until its TTL
// lapses and may gate several sensitive actions in that window.
func (s *AccountService) checkVerified(ctx context.Context, userID, sessionID string) error {
	status, err := s.Verifications.Get(ctx, userID, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrVerificationRequired
		}
		return err
	}
	if status.Expired(s.now()) {
		return ErrVerificationRequired
	}
	return nil
}
