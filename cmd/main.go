package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"tmpsync/internal/discord"
	"tmpsync/internal/syncer"
	"tmpsync/internal/truckersmp"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "tmpsync",
		Usage: "Mirror TruckersMP VTC events into Discord scheduled events.",
		Commands: []*cli.Command{
			syncCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Fetch VTC events once and create any missing on the server.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be created without making changes."},
		},
		Action: func(c *cli.Context) error {
			logLevel := os.Getenv("LOG_LEVEL")
			if logLevel == "" {
				logLevel = "info"
			}
			// Tag every line of this run so interleaved logs stay attributable.
			logger := setupLogger(logLevel).With("run", uuid.New().String())

			vtcID := os.Getenv("TMP_ID")
			if vtcID == "" {
				return fmt.Errorf("TMP_ID environment variable not set")
			}
			token := os.Getenv("DISCORD_TOKEN")
			if token == "" {
				return fmt.Errorf("DISCORD_TOKEN environment variable not set")
			}

			if c.Bool("dry-run") {
				logger.Info("Performing a dry run. No changes will be made.")
			}

			logger.Info("Fetching events from TruckersMP.", "vtcID", vtcID)
			tmpClient := truckersmp.NewClient(logger, truckersmp.DefaultBaseURL)
			events, err := tmpClient.FetchEvents(c.Context, vtcID)
			if err != nil {
				return fmt.Errorf("failed to fetch TruckersMP events: %w", err)
			}
			logger.Info("We have events from TruckersMP.", "count", len(events))

			logger.Info("Connecting to Discord...")
			bot, err := discord.New(logger, token)
			if err != nil {
				return fmt.Errorf("failed to create discord client: %w", err)
			}
			if err := bot.Connect(c.Context); err != nil {
				return fmt.Errorf("failed to connect to discord: %w", err)
			}
			defer bot.Close()

			s := syncer.New(logger, bot, c.Bool("dry-run"))
			if err := s.Sync(c.Context, events); err != nil {
				return fmt.Errorf("sync failed: %w", err)
			}

			logger.Info("Sync finished.")
			return nil
		},
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
