package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/openward/accountd/internal/account/domain"
)

type verificationStatusesRepo struct {
	db *sql.DB
}

func (r *verificationStatusesRepo) Upsert(ctx context.Context, status domain.VerificationStatus) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_statuses (user_id, session_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, session_id)
		DO UPDATE SET created_at = excluded.created_at, expires_at = excluded.expires_at`,
		status.UserID,
		status.SessionID,
		status.CreatedAt.UTC(),
		status.ExpiresAt.UTC(),
	)
	return err
}

func (r *verificationStatusesRepo) Get(ctx context.Context, userID, sessionID string) (domain.VerificationStatus, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, session_id, created_at, expires_at
		FROM verification_statuses
		WHERE user_id = ? AND session_id = ?`,
		userID, sessionID)

	var status domain.VerificationStatus
	if err := row.Scan(&status.UserID, &status.SessionID, &status.CreatedAt, &status.ExpiresAt); err != nil {
		return domain.VerificationStatus{}, mapNotFound(err)
	}
	return status, nil
}

func (r *verificationStatusesRepo) DeleteExpired(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_statuses WHERE expires_at <= ?`, cutoff.UTC())
	return err
}
