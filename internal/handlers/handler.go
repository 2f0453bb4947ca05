package handlers

import (
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/bulk"
	"remna-tg-admin/internal/locales"
	"remna-tg-admin/internal/models"
	"remna-tg-admin/internal/nodes"
	"remna-tg-admin/internal/panel"
	"remna-tg-admin/internal/reports"
	"remna-tg-admin/internal/services"
	"remna-tg-admin/internal/settings"
)

const (
	errorFlashDuration  = 5 * time.Second
	formatFlashDuration = 10 * time.Second
)

// Handler is the admin conversation handler. Every update lands here after
// the admin gate; the session's state decides what a text message means,
// decoded callback events carry their own meaning.
type Handler struct {
	panel    *panel.Client
	nodeOps  *nodes.Adapter
	sessions *services.SessionService
	qr       *services.QRService
	settings *settings.Store
	locales  *locales.Store
	reports  *reports.Builder
	bulkRuns *bulk.Runner
	logger   *logrus.Logger
}

// NewHandler creates the admin conversation handler
func NewHandler(
	panelClient *panel.Client,
	nodeOps *nodes.Adapter,
	sessionService *services.SessionService,
	qrService *services.QRService,
	settingsStore *settings.Store,
	loc *locales.Store,
	bulkRunner *bulk.Runner,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		panel:    panelClient,
		nodeOps:  nodeOps,
		sessions: sessionService,
		qr:       qrService,
		settings: settingsStore,
		locales:  loc,
		reports:  reports.NewBuilder(loc),
		bulkRuns: bulkRunner,
		logger:   logger,
	}
}

// lang resolves the display language: the session override if the operator
// switched mid-conversation, the persisted setting otherwise.
func (h *Handler) lang(session *models.Session) string {
	if session.Lang != "" {
		return session.Lang
	}
	return h.settings.Language()
}

func (h *Handler) t(lang, key string, args ...any) string {
	return h.locales.T(lang, key, args...)
}

func htmlOpts(markup *telebot.ReplyMarkup) *telebot.SendOptions {
	opts := &telebot.SendOptions{ParseMode: telebot.ModeHTML}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	return opts
}

// sendHTML sends a new HTML message to the operator
func (h *Handler) sendHTML(c telebot.Context, text string, markup *telebot.ReplyMarkup) (*telebot.Message, error) {
	msg, err := c.Bot().Send(c.Recipient(), text, htmlOpts(markup))
	if err != nil {
		h.logger.Errorf("Failed to send message: %v", err)
	}
	return msg, err
}

// editHTML rewrites the callback message in place. A photo message cannot
// become a text message, so on edit failure the old message is dropped and
// a fresh one sent.
func (h *Handler) editHTML(c telebot.Context, text string, markup *telebot.ReplyMarkup) error {
	if c.Callback() == nil {
		_, err := h.sendHTML(c, text, markup)
		return err
	}
	if err := c.Edit(text, htmlOpts(markup)); err != nil {
		if delErr := c.Delete(); delErr != nil {
			h.logger.Debugf("Failed to delete stale message: %v", delErr)
		}
		_, sendErr := h.sendHTML(c, text, markup)
		return sendErr
	}
	return nil
}

// editStored rewrites an earlier message by its stored ID
func (h *Handler) editStored(c telebot.Context, messageID int, text string, markup *telebot.ReplyMarkup) error {
	stored := &telebot.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    c.Chat().ID,
	}
	_, err := c.Bot().Edit(stored, text, htmlOpts(markup))
	if err != nil {
		h.logger.Debugf("Failed to edit message %d: %v", messageID, err)
	}
	return err
}

// deleteByID removes an earlier message best-effort
func (h *Handler) deleteByID(c telebot.Context, messageID int) {
	if messageID == 0 {
		return
	}
	stored := &telebot.StoredMessage{
		MessageID: strconv.Itoa(messageID),
		ChatID:    c.Chat().ID,
	}
	if err := c.Bot().Delete(stored); err != nil {
		h.logger.Debugf("Failed to delete message %d: %v", messageID, err)
	}
}

// deleteInput drops the operator's own text message to keep the chat clean
func (h *Handler) deleteInput(c telebot.Context) {
	if c.Message() == nil {
		return
	}
	if err := c.Bot().Delete(c.Message()); err != nil {
		h.logger.Debugf("Failed to delete operator message: %v", err)
	}
}

// flash shows a transient notice that removes itself shortly after
func (h *Handler) flash(c telebot.Context, text string, lifetime time.Duration) {
	msg, err := h.sendHTML(c, text, nil)
	if err != nil || msg == nil {
		return
	}
	bot := c.Bot()
	time.AfterFunc(lifetime, func() {
		if err := bot.Delete(msg); err != nil {
			h.logger.Debugf("Failed to delete transient message: %v", err)
		}
	})
}
