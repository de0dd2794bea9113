package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

const userColumns = `id, username, email, password_hash, avatar, settings, email_templates,
	reset_token_hash, reset_token_expires, created_at, updated_at`

// Count returns the number of accounts.
func (db *DB) Count(ctx context.Context) (int, error) {
	var n int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("accounts: count: %w", err)
	}
	return n, nil
}

// Create inserts a new account. Email is stored lower-cased.
func (db *DB) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	settings, templates, err := encodeDocs(u)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Avatar, settings, templates,
		nullString(u.ResetTokenHash), nullTime(u.ResetTokenExpires), u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		return wrapWriteErr("create", err)
	}
	return nil
}

// ByID returns the account with the given id.
func (db *DB) ByID(ctx context.Context, id string) (*models.User, error) {
	return db.one(ctx, `WHERE id = ?`, id)
}

// ByUsername returns the account with exactly this username.
func (db *DB) ByUsername(ctx context.Context, username string) (*models.User, error) {
	return db.one(ctx, `WHERE username = ?`, username)
}

// ByEmail matches email case-insensitively.
func (db *DB) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.one(ctx, `WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
}

// ByResetTokenHash returns the account holding the given reset token hash,
// whether or not the token has expired.
func (db *DB) ByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	if hash == "" {
		return nil, apperr.ErrNotFound
	}
	return db.one(ctx, `WHERE reset_token_hash = ?`, hash)
}

// Update overwrites every mutable column of the account.
func (db *DB) Update(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	settings, templates, err := encodeDocs(u)
	if err != nil {
		return err
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET
			username            = ?,
			email               = ?,
			password_hash       = ?,
			avatar              = ?,
			settings            = ?,
			email_templates     = ?,
			reset_token_hash    = ?,
			reset_token_expires = ?,
			updated_at          = ?
		WHERE id = ?
	`, u.Username, u.Email, u.PasswordHash, u.Avatar, settings, templates,
		nullString(u.ResetTokenHash), nullTime(u.ResetTokenExpires), u.UpdatedAt.UTC(), u.ID)
	if err != nil {
		return wrapWriteErr("update", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("accounts: update: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ClearExpiredResetTokens drops reset tokens whose expiry is before now.
// Times are stored in UTC so the text comparison in SQL orders them.
func (db *DB) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET reset_token_hash = NULL, reset_token_expires = NULL
		WHERE reset_token_expires IS NOT NULL AND reset_token_expires < ?
	`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("accounts: clear expired tokens: %w", err)
	}
	return res.RowsAffected()
}

func (db *DB) one(ctx context.Context, where string, args ...any) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users `+where, args...)

	var (
		u                   models.User
		settings, templates string
		resetHash           sql.NullString
		resetExpires        sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Avatar, &settings, &templates,
		&resetHash, &resetExpires, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("accounts: query: %w", err)
	}
	if err := json.Unmarshal([]byte(settings), &u.Settings); err != nil {
		return nil, fmt.Errorf("accounts: decode settings: %w", err)
	}
	if err := json.Unmarshal([]byte(templates), &u.EmailTemplates); err != nil {
		return nil, fmt.Errorf("accounts: decode email templates: %w", err)
	}
	u.ResetTokenHash = resetHash.String
	if resetExpires.Valid {
		t := resetExpires.Time
		u.ResetTokenExpires = &t
	}
	return &u, nil
}

func encodeDocs(u *models.User) (string, string, error) {
	settings, err := json.Marshal(u.Settings)
	if err != nil {
		return "", "", fmt.Errorf("accounts: encode settings: %w", err)
	}
	templates, err := json.Marshal(u.EmailTemplates)
	if err != nil {
		return "", "", fmt.Errorf("accounts: encode email templates: %w", err)
	}
	return string(settings), string(templates), nil
}

func wrapWriteErr(op string, err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return fmt.Errorf("accounts: %s: %w", op, apperr.ErrAlreadyExists)
	}
	return fmt.Errorf("accounts: %s: %w", op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
