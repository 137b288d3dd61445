// Package store defines the data access contracts the account service
// depends on. Concrete drivers live under drivers/.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/pkg/credential"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns tidy and testable.
type Store interface {
	Users() Users
	VerificationStatuses() VerificationStatuses

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing database is still reachable.
	Ping(ctx context.Context) error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile applies a partial profile update and bumps updated_at.
	// Returns the updated user.
	UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (domain.User, error)

	// UpdateCustomData replaces the custom data document wholesale and
	// returns the stored document.
	UpdateCustomData(ctx context.Context, userID string, data map[string]any) (map[string]any, error)

	// UpdatePassword writes the credential's method tag and hash in a
	// single statement so the record can never hold one without the other.
	UpdatePassword(ctx context.Context, userID string, cred credential.Encrypted) error

	// FindByUsername returns the user holding username, compared
	// case-insensitively.
	FindByUsername(ctx context.Context, username string) (domain.User, error)

	// FindByEmail returns the user holding the primary email, compared
	// case-insensitively.
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// VerificationStatuses is the step-up verification store. Records are
// upsert-only per pair and expire; checks are non-consuming.
type VerificationStatuses interface {
	// Upsert inserts or replaces the status for (userID, sessionID).
	Upsert(ctx context.Context, status domain.VerificationStatus) error

	// Get returns the stored status for the pair, expired or not, or
	// ErrNotFound. Expiry is judged by the caller against its clock.
	Get(ctx context.Context, userID, sessionID string) (domain.VerificationStatus, error)

	// DeleteExpired removes statuses whose expiry is at or before cutoff
	// (housekeeping). Backends with native TTL expiry treat this as a
	// no-op.
	DeleteExpired(ctx context.Context, cutoff time.Time) error
}
