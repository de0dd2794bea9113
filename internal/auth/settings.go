package auth

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/models"
)

// Themes and cursors selectable in the admin UI.
var (
	Themes  = []any{"light", "dark", "system"}
	Cursors = []any{"default", "custom", "none"}
)

// SettingsUpdate is a partial update of the caller's account.
// Nil fields are left unchanged.
type SettingsUpdate struct {
	Username        *string `json:"username"`
	Email           *string `json:"email"`
	Theme           *string `json:"theme"`
	Cursor          *string `json:"cursor"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     string  `json:"newPassword"`
	Avatar          *string `json:"-"`
}

// Validate checks the supplied fields.
func (u SettingsUpdate) Validate() error {
	return validation.ValidateStruct(&u,
		validation.Field(&u.Username, validation.NilOrNotEmpty, validation.Length(3, 50)),
		validation.Field(&u.Email, validation.NilOrNotEmpty, is.EmailFormat),
		validation.Field(&u.Theme, validation.NilOrNotEmpty, validation.In(Themes...)),
		validation.Field(&u.Cursor, validation.NilOrNotEmpty, validation.In(Cursors...)),
		validation.Field(&u.NewPassword, validation.Length(MinPasswordLength, 0)),
		validation.Field(&u.CurrentPassword, validation.When(u.NewPassword != "", validation.Required)),
	)
}

// Me returns the account with the given id.
func (s *Service) Me(ctx context.Context, userID string) (*models.User, error) {
	return s.users.ByID(ctx, userID)
}

// UpdateSettings applies upd and returns the updated account together with
// the avatar path it replaced, if any.
func (s *Service) UpdateSettings(ctx context.Context, userID string, upd SettingsUpdate) (*models.User, string, error) {
	if err := apperr.FromValidation(upd.Validate()); err != nil {
		return nil, "", err
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	if upd.Username != nil {
		u.Username = strings.TrimSpace(*upd.Username)
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Theme != nil {
		u.Settings.Theme = *upd.Theme
	}
	if upd.Cursor != nil {
		u.Settings.Cursor = *upd.Cursor
	}
	if upd.NewPassword != "" {
		if err := s.setPassword(u, upd.CurrentPassword, upd.NewPassword); err != nil {
			return nil, "", err
		}
	}
	var replaced string
	if upd.Avatar != nil {
		replaced = u.Avatar
		u.Avatar = *upd.Avatar
	}

	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return nil, "", err
	}
	return u, replaced, nil
}

// UpdateTheme sets the theme and, when non-empty, the cursor.
func (s *Service) UpdateTheme(ctx context.Context, userID, theme, cursor string) (*models.User, error) {
	upd := SettingsUpdate{Theme: &theme}
	if cursor != "" {
		upd.Cursor = &cursor
	}
	u, _, err := s.UpdateSettings(ctx, userID, upd)
	return u, err
}

// ChangePassword replaces the password after checking the current one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	if next == "" {
		return apperr.Invalid("newPassword", "cannot be blank")
	}
	_, _, err := s.UpdateSettings(ctx, userID, SettingsUpdate{CurrentPassword: current, NewPassword: next})
	return err
}

// PasswordResetTemplate returns the caller's stored reset email template.
func (s *Service) PasswordResetTemplate(ctx context.Context, userID string) (models.EmailTemplate, error) {
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return models.EmailTemplate{}, err
	}
	return u.EmailTemplates.PasswordReset, nil
}

// UpdatePasswordResetTemplate replaces the caller's reset email template.
func (s *Service) UpdatePasswordResetTemplate(ctx context.Context, userID string, t models.EmailTemplate) (models.EmailTemplate, error) {
	if err := apperr.FromValidation(validateTemplate(t)); err != nil {
		return models.EmailTemplate{}, err
	}
	u, err := s.users.ByID(ctx, userID)
	if err != nil {
		return models.EmailTemplate{}, err
	}
	u.EmailTemplates.PasswordReset = t
	u.UpdatedAt = s.now().UTC()
	if err := s.users.Update(ctx, u); err != nil {
		return models.EmailTemplate{}, err
	}
	return t, nil
}

func (s *Service) setPassword(u *models.User, current, next string) error {
	ok, err := checkPassword(u.PasswordHash, current)
	if err != nil {
		return fmt.Errorf("auth: compare password: %w", err)
	}
	if !ok {
		return apperr.Invalid("currentPassword", "is incorrect")
	}
	hash, err := hashPassword(next, s.hashCost)
	if err != nil {
		return fmt.Errorf("auth: hash password: %w", err)
	}
	u.PasswordHash = hash
	return nil
}

func validateTemplate(t models.EmailTemplate) error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Subject, validation.Length(0, 200)),
		validation.Field(&t.PrimaryColor, is.HexColor),
		validation.Field(&t.BackgroundColor, is.HexColor),
		validation.Field(&t.LogoURL, is.URL),
		validation.Field(&t.Message, validation.Length(0, 5000)),
	)
}
