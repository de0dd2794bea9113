package internal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/folio/internal/accounts"
	"github.com/starford/folio/internal/mail"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/uploads"
)

var errConfigRequired = errors.New("config is required")

// content holds the portfolio services shared by every command.
type content struct {
	store        storage.Provider
	files        *uploads.Store
	projects     *portfolio.Projects
	education    *portfolio.Education
	skills       *portfolio.Skills
	technologies *portfolio.Technologies
	messages     *portfolio.Messages
	stats        *portfolio.Stats
	personalInfo *portfolio.PersonalInfo
}

func openContent(cfg *Config, notify portfolio.Notifier, events portfolio.Publisher) (*content, error) {
	for _, dir := range []string{cfg.Storage.DataDir, cfg.Storage.AssetsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	store, err := storage.NewFS(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	files, err := uploads.NewStore(cfg.Storage.AssetsDir)
	if err != nil {
		return nil, fmt.Errorf("init uploads: %w", err)
	}

	return &content{
		store:        store,
		files:        files,
		projects:     portfolio.NewProjects(store, events),
		education:    portfolio.NewEducation(store, events),
		skills:       portfolio.NewSkills(store, events),
		technologies: portfolio.NewTechnologies(store, events),
		messages:     portfolio.NewMessages(store, notify, events),
		stats:        portfolio.NewStats(store),
		personalInfo: portfolio.NewPersonalInfo(store, events),
	}, nil
}

func newNotifier(cfg *Config, logger *slog.Logger) (*mail.Notifier, error) {
	sender, err := mail.NewSender(cfg.Mail.SenderConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("init mail: %w", err)
	}
	return mail.NewNotifier(sender, cfg.Mail.From, cfg.Mail.AdminAddress), nil
}

func openAccounts(cfg *Config) (*accounts.DB, error) {
	db, err := accounts.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init accounts: %w", err)
	}
	return db, nil
}
