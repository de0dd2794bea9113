package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Login checks credentials and issues a session token.
// Failures are reported as *apperr.CredentialsError with a reason.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	u, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, &apperr.CredentialsError{Reason: apperr.ReasonUsernameNotFound}
		}
		return "", nil, err
	}
	ok, err := checkPassword(u.PasswordHash, password)
	if err != nil {
		return "", nil, fmt.Errorf("auth: compare password: %w", err)
	}
	if !ok {
		return "", nil, &apperr.CredentialsError{Reason: apperr.ReasonIncorrectPassword}
	}
	token, err := s.tokens.Issue(u)
	if err != nil {
		return "", nil, err
	}
	return token, u, nil
}

func newUserID() string {
	return uuid.NewString()
}
