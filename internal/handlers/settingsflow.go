package handlers

import (
	"strings"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/expiry"
	"remna-tg-admin/internal/models"
)

// expiryRule parses the persisted expiry-time rule, nil when unset or
// malformed (the legacy fallback anchor applies then).
func (h *Handler) expiryRule() *expiry.Rule {
	raw := h.settings.ExpireTimeSetting()
	if raw == "" {
		return nil
	}
	rule, err := expiry.ParseRule(raw)
	if err != nil {
		h.logger.Warnf("Stored expire time rule is invalid: %v", err)
		return nil
	}
	return rule
}

// startExpireTimeSetting prompts for a new expiry-time rule, showing the
// current one.
func (h *Handler) startExpireTimeSetting(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.AwaitingTimezoneSetting

	current := h.settings.ExpireTimeSetting()
	if current == "" {
		current = h.t(lang, "not_set")
	}

	prompt := h.t(lang, "ask_for_timezone_and_time", "current_setting", current)
	if err := h.editHTML(c, prompt, h.backToMainMarkup(lang)); err != nil {
		return err
	}
	if c.Callback() != nil {
		session.PromptMessageID = c.Callback().Message.ID
	}
	return nil
}

// onTimezoneInput validates and persists the rule. A rejected rule reposts
// the prompt alongside a transient format reminder, so the operator can try
// again without re-entering the menu.
func (h *Handler) onTimezoneInput(c telebot.Context, session *models.Session, text string) error {
	lang := h.lang(session)
	h.deleteInput(c)
	h.deleteByID(c, session.PromptMessageID)
	session.PromptMessageID = 0

	rule := strings.ToUpper(strings.TrimSpace(text))
	if _, err := expiry.ParseRule(rule); err != nil {
		h.flash(c, h.t(lang, "invalid_timezone_format"), formatFlashDuration)

		current := h.settings.ExpireTimeSetting()
		if current == "" {
			current = h.t(lang, "not_set")
		}
		prompt, sendErr := h.sendHTML(c,
			h.t(lang, "ask_for_timezone_and_time", "current_setting", current),
			h.backToMainMarkup(lang))
		if sendErr == nil && prompt != nil {
			session.PromptMessageID = prompt.ID
		}
		return sendErr
	}

	if err := h.settings.SetExpireTimeSetting(rule); err != nil {
		h.logger.Errorf("Failed to persist expire time rule: %v", err)
	}

	session.State = models.MainMenu
	_, err := h.sendHTML(c, h.t(lang, "timezone_set_success"), h.backToMainMarkup(lang))
	return err
}

func (h *Handler) showLanguageMenu(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.SelectingLanguage
	return h.editHTML(c, h.t(lang, "select_language_prompt"), h.languageMarkup(lang))
}

// onLanguageSelected persists the new display language, refreshes the bot
// command descriptions to match and re-renders the main menu.
func (h *Handler) onLanguageSelected(c telebot.Context, session *models.Session, lang string) error {
	session.Lang = lang
	if err := h.settings.SetLanguage(lang); err != nil {
		h.logger.Errorf("Failed to persist language setting: %v", err)
	}

	commands := []telebot.Command{
		{Text: "start", Description: h.t(lang, "start_command_description")},
	}
	if err := c.Bot().SetCommands(commands); err != nil {
		h.logger.Warnf("Failed to update bot commands: %v", err)
	}

	session.Reset()
	return h.showMainMenu(c, session)
}
