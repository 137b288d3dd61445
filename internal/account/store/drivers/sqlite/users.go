package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openward/accountd/internal/account/domain"
	"github.com/openward/accountd/internal/account/store"
	"github.com/openward/accountd/pkg/credential"
)

type usersRepo struct {
	db *sql.DB
}

const userColumns = `id, username, primary_email, name, avatar, is_suspended,
	password_hash, password_method, custom_data, created_at, updated_at`

func scanUser(row *sql.Row) (domain.User, error) {
	var r userRow
	err := row.Scan(
		&r.ID,
		&r.Username,
		&r.PrimaryEmail,
		&r.Name,
		&r.Avatar,
		&r.IsSuspended,
		&r.PasswordHash,
		&r.PasswordMethod,
		&r.CustomData,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	return r.toDomain()
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ? COLLATE NOCASE`, username)
	return scanUser(row)
}

func (r *usersRepo) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE primary_email = ? COLLATE NOCASE`, email)
	return scanUser(row)
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	customData := u.CustomData
	if customData == nil {
		customData = map[string]any{}
	}
	encoded, err := json.Marshal(customData)
	if err != nil {
		return fmt.Errorf("sqlite: encoding custom data: %w", err)
	}

	var hash, method sql.NullString
	if u.Password != nil {
		hash = sql.NullString{String: u.Password.Hash, Valid: true}
		method = sql.NullString{String: string(u.Password.Method), Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, primary_email, name, avatar, is_suspended,
			password_hash, password_method, custom_data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		mapStringNull(u.Username),
		mapStringNull(u.PrimaryEmail),
		u.Name,
		u.Avatar,
		u.IsSuspended,
		hash,
		method,
		string(encoded),
	)
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *usersRepo) UpdateProfile(ctx context.Context, userID string, patch domain.ProfilePatch) (domain.User, error) {
	sets := make([]string, 0, 5)
	args := make([]any, 0, 5)

	if patch.Username != nil {
		sets = append(sets, "username = ?")
		args = append(args, mapStringNull(*patch.Username))
	}
	if patch.PrimaryEmail != nil {
		sets = append(sets, "primary_email = ?")
		args = append(args, mapStringNull(*patch.PrimaryEmail))
	}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Avatar != nil {
		sets = append(sets, "avatar = ?")
		args = append(args, *patch.Avatar)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
		args = append(args, userID)

		res, err := r.db.ExecContext(ctx,
			`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed") {
				return domain.User{}, store.ErrAlreadyExists
			}
			return domain.User{}, err
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.User{}, store.ErrNotFound
		}
	}

	return r.GetUserByID(ctx, userID)
}

func (r *usersRepo) UpdateCustomData(ctx context.Context, userID string, data map[string]any) (map[string]any, error) {
	if data == nil {
		data = map[string]any{}
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("sqlite: encoding custom data: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET custom_data = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(encoded), userID)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrNotFound
	}

	updated, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return updated.CustomData, nil
}

// UpdatePassword writes both credential columns in one statement; the
// schema CHECK rejects anything that would leave them out of step.
func (r *usersRepo) UpdatePassword(ctx context.Context, userID string, cred credential.Encrypted) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = ?, password_method = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		cred.Hash, string(cred.Method), userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}
