package internal

import (
	"context"
	"log/slog"
	"time"

	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/mcpserver"
)

// RunArchive moves read messages older than the configured age into their
// yearly archives once and reports how many were moved.
func RunArchive(ctx context.Context, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	app.logger()

	c, err := openContent(app.config, nil, nil)
	if err != nil {
		return 0, err
	}
	return archive.NewArchiver(c.store, app.config.Archive.MaxAge).Run(ctx, time.Now().UTC())
}

// MigrateMessages backfills legacy message fields once and reports how many
// messages changed.
func MigrateMessages(ctx context.Context, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	logger := app.logger()

	c, err := openContent(app.config, nil, nil)
	if err != nil {
		return 0, err
	}
	n, err := c.messages.Migrate(ctx)
	if err != nil {
		return 0, err
	}
	logger.Info("messages migrated", slog.Int("count", n))
	return n, nil
}

// RunMCP serves the portfolio tools over stdio. Mail notifications are
// not sent for changes made through MCP.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	logger := app.logger()

	c, err := openContent(app.config, nil, nil)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("data_dir", app.config.Storage.DataDir))
	return mcpserver.New(mcpserver.Services{
		Projects:     c.projects,
		Education:    c.education,
		Skills:       c.skills,
		Technologies: c.technologies,
		Messages:     c.messages,
		Stats:        c.stats,
		PersonalInfo: c.personalInfo,
		Files:        c.files,
	}).ServeStdio()
}
