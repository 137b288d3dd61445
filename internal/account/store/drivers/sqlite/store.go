// Package sqlite implements the account store on SQLite. It is the
// default driver; the database is a single file (or :memory: in tests).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/store"
	"github.com/openward/accountd/pkg/credential"

	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Users() store.Users { return &usersRepo{db: s.db} }

func (s *Store) VerificationStatuses() store.VerificationStatuses {
	return &verificationStatusesRepo{db: s.db}
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// userRow mirrors the users table. Nullable columns stay sql.Null* here
// and are folded into the domain type by toDomain.
type userRow struct {
	ID             string
	Username       sql.NullString
	PrimaryEmail   sql.NullString
	Name           string
	Avatar         string
	IsSuspended    bool
	PasswordHash   sql.NullString
	PasswordMethod sql.NullString
	CustomData     string
	CreatedAt      sql.NullTime
	UpdatedAt      sql.NullTime
}

func (r userRow) toDomain() (domain.User, error) {
	u := domain.User{
		ID:           r.ID,
		Username:     r.Username.String,
		PrimaryEmail: r.PrimaryEmail.String,
		Name:         r.Name,
		Avatar:       r.Avatar,
		IsSuspended:  r.IsSuspended,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}

	// The schema CHECK keeps hash and method in lockstep, so seeing one
	// without the other here is corruption worth surfacing loudly.
	if r.PasswordHash.Valid != r.PasswordMethod.Valid {
		return domain.User{}, fmt.Errorf("sqlite: user %s has a half-set credential", r.ID)
	}
	if r.PasswordHash.Valid {
		u.Password = &credential.Encrypted{
			Method: credential.Method(r.PasswordMethod.String),
			Hash:   r.PasswordHash.String,
		}
	}

	if r.CustomData != "" {
		if err := json.Unmarshal([]byte(r.CustomData), &u.CustomData); err != nil {
			return domain.User{}, fmt.Errorf("sqlite: user %s custom data: %w", r.ID, err)
		}
	}
	if u.CustomData == nil {
		u.CustomData = map[string]any{}
	}

	return u, nil
}

func mapStringNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
