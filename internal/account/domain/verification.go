package domain

import "time"

// VerificationStatus proves that a user re-entered their password within
// the current browser session. At most one live status exists per
// (UserID, SessionID) pair; re-verifying replaces it.
type VerificationStatus struct {
	UserID    string
	SessionID string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the status is past its validity window at now.
func (v VerificationStatus) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
