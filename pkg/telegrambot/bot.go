package telegrambot

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/bulk"
	"remna-tg-admin/internal/config"
	"remna-tg-admin/internal/handlers"
	"remna-tg-admin/internal/locales"
	"remna-tg-admin/internal/nodes"
	"remna-tg-admin/internal/panel"
	"remna-tg-admin/internal/services"
	"remna-tg-admin/internal/settings"
)

// Bot is the Telegram front-end. It owns the long-poll loop, gates every
// update behind the single-admin check and forwards the rest to the
// conversation handler.
type Bot struct {
	bot      *telebot.Bot
	config   *config.Config
	handler  *handlers.Handler
	locales  *locales.Store
	settings *settings.Store
	logger   *logrus.Logger
}

// NewBot creates and wires the Telegram bot
func NewBot(
	cfg *config.Config,
	panelClient *panel.Client,
	nodeOps *nodes.Adapter,
	sessionService *services.SessionService,
	qrService *services.QRService,
	settingsStore *settings.Store,
	loc *locales.Store,
	logger *logrus.Logger,
) (*Bot, error) {
	tbSettings := telebot.Settings{
		Token:  cfg.Telegram.Token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			logger.Errorf("Telegram bot error: %v", err)
		},
	}

	b, err := telebot.NewBot(tbSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	messenger := &chatMessenger{bot: b, logger: logger}
	runner := bulk.NewRunner(panelClient, messenger, loc, logger)

	handler := handlers.NewHandler(
		panelClient,
		nodeOps,
		sessionService,
		qrService,
		settingsStore,
		loc,
		runner,
		logger,
	)

	bot := &Bot{
		bot:      b,
		config:   cfg,
		handler:  handler,
		locales:  loc,
		settings: settingsStore,
		logger:   logger,
	}
	bot.setupRouting()

	return bot, nil
}

// Start registers the localized commands and runs the poll loop until the
// context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	lang := b.settings.Language()
	commands := []telebot.Command{
		{Text: "start", Description: b.locales.T(lang, "start_command_description")},
	}
	if err := b.bot.SetCommands(commands); err != nil {
		b.logger.Warnf("Failed to register bot commands: %v", err)
	}

	go func() {
		<-ctx.Done()
		b.logger.Info("Stopping Telegram bot")
		b.bot.Stop()
	}()

	b.logger.Info("Starting Telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) setupRouting() {
	b.bot.Use(b.adminOnly)

	b.bot.Handle(telebot.OnText, b.handler.Handle)
	b.bot.Handle(telebot.OnCallback, b.handler.Handle)
	b.bot.Handle("/start", b.handler.Handle)
}

// adminOnly drops every update that is not from the configured operator.
// The bot stays silent toward strangers.
func (b *Bot) adminOnly(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil || sender.ID != b.config.Telegram.AdminUserID {
			if sender != nil {
				b.logger.Warnf("Ignoring update from non-admin user %d", sender.ID)
			}
			return nil
		}
		b.logger.Debugf("Update from admin: %q", c.Text())
		return next(c)
	}
}

// chatMessenger lets the bulk runner report back without depending on the
// conversation machinery.
type chatMessenger struct {
	bot    *telebot.Bot
	logger *logrus.Logger
}

func (m *chatMessenger) SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) error {
	opts := &telebot.SendOptions{ParseMode: telebot.ModeHTML}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	_, err := m.bot.Send(&telebot.Chat{ID: chatID}, text, opts)
	return err
}

func (m *chatMessenger) DeleteMessage(chatID int64, messageID int) error {
	return m.bot.Delete(&telebot.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    chatID,
	})
}
