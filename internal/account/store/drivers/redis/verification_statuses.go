// Package redis implements the step-up verification store on Redis.
// Verification statuses are ephemeral and session-scoped, which suits a
// key with a native TTL: records vanish on their own and deployments that
// already run Redis avoid growing a SQLite table that needs sweeping.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/store"
)

const keyPrefix = "accountd:vstat"

var errUnavailable = errors.New("redis: verification store unavailable")

type VerificationStatuses struct {
	client *redis.Client
}

func NewVerificationStatuses(client *redis.Client) *VerificationStatuses {
	return &VerificationStatuses{client: client}
}

func key(userID, sessionID string) string {
	return keyPrefix + ":" + userID + ":" + sessionID
}

// record is the stored wire form. Times travel as unix seconds so the
// value stays stable across redis-server and client versions.
type record struct {
	CreatedAt int64 `json:"c"`
	ExpiresAt int64 `json:"e"`
}

// Upsert writes the status under its pair key with a TTL matching the
// expiry, replacing any previous record for the pair. SET is already
// last-writer-wins, which is exactly the upsert semantics required.
func (s *VerificationStatuses) Upsert(ctx context.Context, status domain.VerificationStatus) error {
	encoded, err := json.Marshal(record{
		CreatedAt: status.CreatedAt.Unix(),
		ExpiresAt: status.ExpiresAt.Unix(),
	})
	if err != nil {
		return err
	}

	ttl := time.Until(status.ExpiresAt)
	if ttl <= 0 {
		// Already expired; nothing worth storing.
		return nil
	}

	if err := s.client.Set(ctx, key(status.UserID, status.SessionID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errUnavailable, err)
	}
	return nil
}

func (s *VerificationStatuses) Get(ctx context.Context, userID, sessionID string) (domain.VerificationStatus, error) {
	data, err := s.client.Get(ctx, key(userID, sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.VerificationStatus{}, store.ErrNotFound
		}
		return domain.VerificationStatus{}, fmt.Errorf("%w: %v", errUnavailable, err)
	}

	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.VerificationStatus{}, fmt.Errorf("redis: decoding verification status: %w", err)
	}

	return domain.VerificationStatus{
		UserID:    userID,
		SessionID: sessionID,
		CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
		ExpiresAt: time.Unix(r.ExpiresAt, 0).UTC(),
	}, nil
}

// DeleteExpired is a no-op: Redis evicts keys when their TTL lapses.
func (s *VerificationStatuses) DeleteExpired(ctx context.Context, cutoff time.Time) error {
	return nil
}
