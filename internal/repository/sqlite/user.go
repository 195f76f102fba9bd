package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/problemspark/internal/apperror"
	"github.com/sakif/problemspark/internal/model"
	"github.com/sakif/problemspark/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, name, password_hash, github_id, avatar_url, created_at, updated_at`

func scanUser(s rowScanner) (model.User, error) {
	var (
		u        model.User
		githubID sql.NullInt64
	)
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &githubID, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	u.GitHubID = githubID.Int64
	return u, err
}

// githubIDArg stores "no GitHub account" as NULL so the UNIQUE index on
// github_id ignores email-only accounts.
func githubIDArg(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

// CreateUser inserts a new account. A duplicate email is an apperror.ErrConflict.
func (db *DB) CreateUser(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.ID = xid.New().String()
	u.CreatedAt = now
	u.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, githubIDArg(u.GitHubID), u.AvatarURL, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("an account with this email already exists")
		}
		return fmt.Errorf("sqlite: inserting user %s: %w", u.Email, err)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetUserByEmail looks up an account by email, case-insensitively.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(email),
	))
	if err != nil {
		if isNoRows(err) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return &u, nil
}

// UpsertGitHubUser finds the account for a GitHub login, refreshing its
// profile, or creates one. Lookup order is GitHub ID, then email, so an
// existing email/password account gets linked instead of duplicated.
//
// On return u holds the stored record (ID, timestamps, password hash).
func (db *DB) UpsertGitHubUser(ctx context.Context, u *model.User) error {
	existing, err := scanUser(db.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, u.GitHubID,
	))
	if isNoRows(err) && u.Email != "" {
		existing, err = scanUser(db.conn.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = ?`, strings.ToLower(u.Email),
		))
	}

	switch {
	case isNoRows(err):
		return db.CreateUser(ctx, u)
	case err != nil:
		return fmt.Errorf("sqlite: looking up github user %d: %w", u.GitHubID, err)
	}

	// Keep the user's chosen name; only fill it when empty.
	if existing.Name == "" {
		existing.Name = u.Name
	}
	existing.GitHubID = u.GitHubID
	existing.AvatarURL = u.AvatarURL
	existing.UpdatedAt = time.Now().UTC()

	_, err = db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, github_id = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
		existing.Name, githubIDArg(existing.GitHubID), existing.AvatarURL, existing.UpdatedAt, existing.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", existing.ID, err)
	}

	*u = existing
	return nil
}
