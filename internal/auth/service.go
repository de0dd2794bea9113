package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/starford/folio/internal/accounts"
	"github.com/starford/folio/internal/models"
)

// Mailer delivers account emails.
type Mailer interface {
	SendPasswordReset(ctx context.Context, u *models.User, link string) error
}

// Service implements login, password reset and account self-service.
type Service struct {
	users     accounts.Store
	tokens    *Tokens
	mailer    Mailer
	resetTTL  time.Duration
	publicURL string
	hashCost  int
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithResetTTL sets how long a password reset token stays valid.
func WithResetTTL(d time.Duration) Option {
	return func(s *Service) { s.resetTTL = d }
}

// WithPublicURL sets the site origin used in reset links.
func WithPublicURL(u string) Option {
	return func(s *Service) { s.publicURL = u }
}

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates an auth service.
func NewService(users accounts.Store, tokens *Tokens, mailer Mailer, opts ...Option) *Service {
	s := &Service{
		users:    users,
		tokens:   tokens,
		mailer:   mailer,
		resetTTL: time.Hour,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens returns the session token issuer.
func (s *Service) Tokens() *Tokens {
	return s.tokens
}

// SeedAccount is the account created on first boot.
type SeedAccount struct {
	Username string
	Email    string
	Password string
}

// EnsureSeed creates the seed account when no accounts exist yet.
// It reports whether an account was created.
func (s *Service) EnsureSeed(ctx context.Context, seed SeedAccount) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 || seed.Password == "" {
		return false, nil
	}
	hash, err := hashPassword(seed.Password, s.hashCost)
	if err != nil {
		return false, fmt.Errorf("auth: hash seed password: %w", err)
	}
	now := s.now().UTC()
	u := &models.User{
		ID:           newUserID(),
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: hash,
		Settings:     models.DefaultSettings(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}
