package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"remna-tg-admin/internal/config"
	"remna-tg-admin/internal/locales"
	"remna-tg-admin/internal/nodes"
	"remna-tg-admin/internal/panel"
	"remna-tg-admin/internal/services"
	"remna-tg-admin/internal/settings"
	"remna-tg-admin/pkg/telegrambot"
)

func main() {
	// Setup logger
	logger := setupLogger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration:", err)
	}

	// Load translation tables; the bot is useless without them
	loc, err := locales.Load(cfg.LocalesFile, logger)
	if err != nil {
		logger.Fatal("Failed to load locales:", err)
	}

	nodeConfigs, err := config.LoadNodes(cfg.NodesFile)
	if err != nil {
		logger.Fatal("Failed to load nodes config:", err)
	}

	// Initialize services
	settingsStore := settings.NewStore(cfg.SettingsFile, logger)
	sessionService := services.NewSessionService(logger)
	qrService := services.NewQRService(logger)
	panelClient := panel.NewClient(cfg.Panel, logger)
	nodeOps := nodes.NewAdapter(nodeConfigs, logger)

	// Initialize bot
	bot, err := telegrambot.NewBot(cfg, panelClient, nodeOps, sessionService, qrService, settingsStore, loc, logger)
	if err != nil {
		logger.Fatal("Failed to create bot:", err)
	}

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	// Start bot
	logger.Info("Starting panel admin bot")
	if err := bot.Start(ctx); err != nil {
		logger.Fatal("Bot failed:", err)
	}
}

// setupLogger sets up the logger
func setupLogger() *logrus.Logger {
	logger := logrus.New()

	// Set log level from environment variable or default to info
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		log.Printf("Invalid log level %s, defaulting to info", logLevel)
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	return logger
}
