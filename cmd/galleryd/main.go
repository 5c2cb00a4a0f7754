package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"galleryd/internal/asset"
	"galleryd/internal/bot"
	"galleryd/internal/composer"
	"galleryd/internal/config"
	"galleryd/internal/storage"
)

func main() {
	// --- Configuration Loading ---
	configDir := os.Getenv("GALLERYD_CONFIG_DIR")
	if configDir == "" {
		configDir = "./configs"
	}
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// --- Logger Setup ---
	log := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		stop()
		log.WithError(err).Fatal("galleryd stopped with error")
	}
	log.Info("galleryd shut down gracefully.")
}

func newLogger(levelName string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	level, err := logrus.ParseLevel(levelName)
	if err != nil {
		log.WithField("log_level", levelName).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// run wires the components and blocks until ctx is cancelled. Any startup
// or gateway failure is returned so main exits non-zero.
func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	// --- Placeholder Asset ---
	spacerPath, err := asset.Resolve(cfg.SpacerPath)
	if err != nil {
		return fmt.Errorf("failed to resolve placeholder path: %w", err)
	}
	spacer, err := asset.Load(spacerPath)
	if err != nil {
		return fmt.Errorf("failed to load placeholder asset: %w", err)
	}

	log.WithFields(logrus.Fields{
		"spacer_path": spacerPath,
		"ledger_ttl":  cfg.LedgerTTL.String(),
		"link_host":   cfg.LinkHost,
	}).Info("Configuration loaded successfully")

	// --- Initialize Components ---
	repo, err := storage.NewBadgerRepository(cfg.LedgerTTL, log)
	if err != nil {
		return fmt.Errorf("failed to initialize reply ledger: %w", err)
	}
	defer func() {
		if err := repo.Close(); err != nil {
			log.WithError(err).Error("Error closing reply ledger")
		}
	}()

	discord, err := bot.NewDiscord(cfg.DiscordToken, log)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord session: %w", err)
	}

	replyComposer := composer.New(composer.Attachment{
		Name:     spacer.Name,
		MimeType: spacer.MimeType,
		Data:     spacer.Data,
	}, cfg.LinkHost)
	handler := bot.NewHandler(discord, replyComposer, repo, log)

	// --- Application Startup ---
	log.Info("Starting galleryd...")
	if err := discord.Start(ctx, handler); err != nil {
		return fmt.Errorf("discord gateway: %w", err)
	}
	return nil
}
