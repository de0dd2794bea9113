package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
)

// resetTokenBytes yields a 64-character hex token.
const resetTokenBytes = 32

func newResetToken() (string, error) {
	b := make([]byte, resetTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("auth: generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// RequestPasswordReset issues a reset token for the account registered under
// email and mails a reset link. Unknown emails return apperr.ErrNotFound and
// touch no account.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return err
	}

	token, err := newResetToken()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	exp := now.Add(s.resetTTL)
	u.ResetTokenHash = checksum.String(token)
	u.ResetTokenExpires = &exp
	u.UpdatedAt = now
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(ctx, u, s.resetLink(token)); err != nil {
		return fmt.Errorf("auth: send reset email: %w: %w", apperr.ErrUpstream, err)
	}
	return nil
}

// VerifyResetToken reports whether token names a live reset request.
func (s *Service) VerifyResetToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	u, err := s.users.ByResetTokenHash(ctx, checksum.String(token))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return u.ResetTokenExpires != nil && s.now().Before(*u.ResetTokenExpires), nil
}

// ResetPassword consumes a reset token and sets a new password.
// An unknown token yields apperr.ErrInvalidToken; a known but expired one
// yields apperr.ErrTokenExpired and is discarded.
func (s *Service) ResetPassword(ctx context.Context, token, password string) error {
	if len(password) < MinPasswordLength {
		return apperr.Invalid("password", fmt.Sprintf("must be at least %d characters", MinPasswordLength))
	}
	if token == "" {
		return apperr.ErrInvalidToken
	}
	u, err := s.users.ByResetTokenHash(ctx, checksum.String(token))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrInvalidToken
		}
		return err
	}

	now := s.now().UTC()
	if u.ResetTokenExpires == nil || !now.Before(*u.ResetTokenExpires) {
		u.ResetTokenHash, u.ResetTokenExpires, u.UpdatedAt = "", nil, now
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		return apperr.ErrTokenExpired
	}

	hash, err := hashPassword(password, s.hashCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	u.PasswordHash = hash
	u.ResetTokenHash, u.ResetTokenExpires, u.UpdatedAt = "", nil, now
	return s.users.Update(ctx, u)
}

func (s *Service) resetLink(token string) string {
	return strings.TrimRight(s.publicURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}
