package service

import (
	"context"
	"errors"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/store"
)

// CollisionChecker guarantees username/email uniqueness before a profile
// update lands. Kept as an interface so deployments with an external
// identity directory can swap in their own check.
type CollisionChecker interface {
	// CheckIdentifierCollision fails with ErrUsernameTaken or
	// ErrEmailTaken when an identifier in patch belongs to a user other
	// than excludeUserID. Comparison is case-insensitive.
	CheckIdentifierCollision(ctx context.Context, patch domain.ProfilePatch, excludeUserID string) error
}

// storeCollisionChecker is the default implementation backed by the user
// store's case-insensitive lookups.
type storeCollisionChecker struct {
	users store.Users
}

// NewCollisionChecker returns the store-backed CollisionChecker.
func NewCollisionChecker(users store.Users) CollisionChecker {
	return &storeCollisionChecker{users: users}
}

func (c *storeCollisionChecker) CheckIdentifierCollision(ctx context.Context, patch domain.ProfilePatch, excludeUserID string) error {
	if patch.Username != nil && *patch.Username != "" {
		other, err := c.users.FindByUsername(ctx, *patch.Username)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil && other.ID != excludeUserID {
			return ErrUsernameTaken
		}
	}

	if patch.PrimaryEmail != nil && *patch.PrimaryEmail != "" {
		other, err := c.users.FindByEmail(ctx, *patch.PrimaryEmail)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
		if err == nil && other.ID != excludeUserID {
			return ErrEmailTaken
		}
	}

	return nil
}
