package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/mail"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Storage StorageConfig     `yaml:"storage"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Auth    AuthConfig        `yaml:"auth"`
	Mail    MailConfig        `yaml:"mail"`
	Contact ContactConfig     `yaml:"contact"`
	Archive ArchiveConfig     `yaml:"archive"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for _, v := range []validation.Validatable{
		&c.App, &c.Storage, &c.SQLite, &c.Auth, &c.Mail, &c.Contact, &c.Archive,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	// PublicURL is the site origin used in links sent by email.
	PublicURL string `yaml:"public_url"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if err := c.HTTP.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.PublicURL, validation.Required, is.URL),
	)
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StorageConfig holds the content data and uploaded asset directories.
type StorageConfig struct {
	DataDir   string `yaml:"data_dir"`
	AssetsDir string `yaml:"assets_dir"`
}

// Validate validates the storage configuration.
func (c *StorageConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.AssetsDir, validation.Required),
	)
}

// SQLiteConfig holds the account database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds session and password-reset configuration.
//
// JWTSecret has no default and must be supplied, typically as
// ${JWT_SECRET}. The seed account is created only when the account store is
// empty and Seed.Password is set.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	ResetTTL  time.Duration `yaml:"reset_ttl"`
	Seed      SeedConfig    `yaml:"seed"`
}

// SeedConfig is the first-boot administrator account.
type SeedConfig struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.TokenTTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&c.ResetTTL, validation.Required, validation.Min(time.Minute)),
	); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if c.Seed.Password == "" {
		return nil
	}
	return validation.ValidateStruct(&c.Seed,
		validation.Field(&c.Seed.Username, validation.Required),
		validation.Field(&c.Seed.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Seed.Password, validation.Length(6, 0)),
	)
}

// MailConfig selects and configures the outgoing mail transport.
type MailConfig struct {
	Provider     string `yaml:"provider"`
	APIKey       string `yaml:"api_key"`
	From         string `yaml:"from"`
	AdminAddress string `yaml:"admin_address"`
}

// Validate validates the mail configuration.
func (c *MailConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Provider, validation.Required, validation.In(mail.ProviderLog, mail.ProviderResend, mail.ProviderSendGrid)),
		validation.Field(&c.APIKey, validation.When(c.Provider != mail.ProviderLog, validation.Required)),
		validation.Field(&c.From, validation.Required),
		validation.Field(&c.AdminAddress, validation.Required, is.EmailFormat),
	)
}

// SenderConfig converts to the mail package configuration.
func (c *MailConfig) SenderConfig() mail.Config {
	return mail.Config{Provider: c.Provider, APIKey: c.APIKey, From: c.From}
}

// ContactConfig throttles the public contact endpoints per client IP.
type ContactConfig struct {
	RatePerMinute int           `yaml:"rate_per_minute"`
	Burst         int           `yaml:"burst"`
	IdleTTL       time.Duration `yaml:"idle_ttl"`
}

// Validate validates the contact configuration.
func (c *ContactConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.RatePerMinute, validation.Required, validation.Min(1)),
		validation.Field(&c.Burst, validation.Required, validation.Min(1)),
	)
}

// ArchiveConfig schedules inbox housekeeping.
type ArchiveConfig struct {
	DailySchedule  string        `yaml:"daily_schedule"`
	WeeklySchedule string        `yaml:"weekly_schedule"`
	MaxAge         time.Duration `yaml:"max_age"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DailySchedule, validation.Required),
		validation.Field(&c.WeeklySchedule, validation.Required),
		validation.Field(&c.MaxAge, validation.Required, validation.Min(time.Hour)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
// Secrets are left empty.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 3001,
			},
			PublicURL: "http://localhost:3000",
		},
		Storage: StorageConfig{
			DataDir:   "./data",
			AssetsDir: "./assets",
		},
		SQLite: SQLiteConfig{
			Path: "./folio.db",
		},
		Auth: AuthConfig{
			TokenTTL: time.Hour,
			ResetTTL: time.Hour,
			Seed: SeedConfig{
				Username: "admin",
				Email:    "admin@example.com",
			},
		},
		Mail: MailConfig{
			Provider:     mail.ProviderLog,
			From:         "Portfolio <noreply@example.com>",
			AdminAddress: "admin@example.com",
		},
		Contact: ContactConfig{
			RatePerMinute: 5,
			Burst:         5,
			IdleTTL:       24 * time.Hour,
		},
		Archive: ArchiveConfig{
			DailySchedule:  archive.DefaultDailySchedule,
			WeeklySchedule: archive.DefaultWeeklySchedule,
			MaxAge:         archive.DefaultMaxAge,
		},
	}
}
