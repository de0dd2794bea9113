package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/folio/internal"
	"github.com/starford/folio/internal/auth"
	pkgconfig "github.com/starford/folio/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func archiveNow(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	n, err := internal.RunArchive(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("archive: %w", err)
	}
	fmt.Printf("archived %d message(s)\n", n)
	return nil
}

func migrateMessages(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	n, err := internal.MigrateMessages(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("migrate messages: %w", err)
	}
	fmt.Printf("migrated %d message(s)\n", n)
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// stdout carries the MCP protocol.
	return internal.RunMCP(ctx, internal.WithConfig(cfg), internal.WithLogOutput(os.Stderr))
}

func hashPassword(_ context.Context, cmd *cli.Command) error {
	password := cmd.Args().First()
	if password == "" {
		return fmt.Errorf("usage: folio hash-password <password>")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "folio",
		Usage:  "Portfolio content API with JSON file storage, admin auth and contact inbox",
		Action: serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API (default)",
				Action: serve,
			},
			{
				Name:   "archive",
				Usage:  "Archive old read messages once and exit",
				Action: archiveNow,
			},
			{
				Name:   "migrate-messages",
				Usage:  "Backfill legacy message fields and exit",
				Action: migrateMessages,
			},
			{
				Name:   "mcp",
				Usage:  "Serve portfolio tools over MCP stdio",
				Action: serveMCP,
			},
			{
				Name:      "hash-password",
				Usage:     "Print a bcrypt hash for a password",
				ArgsUsage: "<password>",
				Action:    hashPassword,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
