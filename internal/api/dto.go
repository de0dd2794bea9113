package api

import (
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/portfolio"
)

// LoginRequest is the request body for POST /login.
type LoginRequest struct {
	Username string `json:"username" example:"admin" validate:"required"`
	Password string `json:"password" example:"admin123" validate:"required"`
}

// LoginResponse carries the session token and the signed-in account.
type LoginResponse struct {
	Token string       `json:"token" validate:"required"`
	User  *models.User `json:"user" validate:"required"`
}

// VerifyResponse answers token checks.
type VerifyResponse struct {
	Valid bool         `json:"valid"`
	User  *models.User `json:"user,omitempty"`
}

// ResetRequest is the body of POST /auth/request-password-reset.
type ResetRequest struct {
	Email string `json:"email" example:"admin@example.com" validate:"required"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ThemeRequest is the body of PUT /user/theme.
type ThemeRequest struct {
	Theme  string `json:"theme" example:"dark" validate:"required"`
	Cursor string `json:"cursor" example:"default"`
}

// PasswordRequest is the body of PUT /user/password.
type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// MessageRequest is the contact form body.
type MessageRequest = portfolio.MessagePatch

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// UnreadCountResponse is returned by GET /messages/unread-count.
type UnreadCountResponse struct {
	Count int `json:"count" example:"3"`
}

// ArchiveYearsResponse is returned by GET /messages/archive.
type ArchiveYearsResponse struct {
	Years []int `json:"years"`
}
