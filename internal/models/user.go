package models

import "time"

// User is an administrator account.
type User struct {
	ID                string         `json:"id"`
	Username          string         `json:"username"`
	Email             string         `json:"email"`
	PasswordHash      string         `json:"-"`
	Avatar            string         `json:"avatar,omitempty"`
	Settings          Settings       `json:"settings"`
	EmailTemplates    EmailTemplates `json:"emailTemplates"`
	ResetTokenHash    string         `json:"-"`
	ResetTokenExpires *time.Time     `json:"-"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
}

// Settings holds per-account UI preferences.
type Settings struct {
	Theme  string `json:"theme"`
	Cursor string `json:"cursor"`
}

// EmailTemplates groups the customisable outgoing emails.
type EmailTemplates struct {
	PasswordReset EmailTemplate `json:"passwordReset"`
}

// EmailTemplate customises the copy and branding of an outgoing email.
// Empty fields fall back to the defaults of the mail package.
type EmailTemplate struct {
	Subject         string `json:"subject,omitempty"`
	Heading         string `json:"heading,omitempty"`
	Message         string `json:"message,omitempty"`
	ButtonText      string `json:"buttonText,omitempty"`
	PrimaryColor    string `json:"primaryColor,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	LogoURL         string `json:"logoUrl,omitempty"`
	Footer          string `json:"footer,omitempty"`
}

// DefaultSettings are applied to new accounts.
func DefaultSettings() Settings {
	return Settings{Theme: "dark", Cursor: "default"}
}
