package handlers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/bulk"
	"remna-tg-admin/internal/models"
)

// bulkDeltaRe matches the signed-delta grammar: an explicit sign, then a
// decimal number, surrounding whitespace allowed.
var bulkDeltaRe = regexp.MustCompile(`^\s*([+-])\s*(\d+(\.\d+)?)\s*$`)

func (h *Handler) showBulkMenu(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.EditAllUsersMenu
	return h.editHTML(c, h.t(lang, "edit_all_users_prompt"), h.bulkMenuMarkup(lang))
}

// startBulkValue prompts for the signed volume or date delta
func (h *Handler) startBulkValue(c telebot.Context, session *models.Session, kind models.BulkKind) error {
	lang := h.lang(session)
	session.Bulk = &models.BulkDraft{Kind: kind}
	session.State = models.AwaitingBulkValue

	promptKey := "ask_for_bulk_volume_change"
	if kind == models.BulkDate {
		promptKey = "ask_for_bulk_date_change"
	}
	if err := h.editHTML(c, h.t(lang, promptKey), nil); err != nil {
		return err
	}
	if c.Callback() != nil {
		session.PromptMessageID = c.Callback().Message.ID
	}
	return nil
}

func (h *Handler) showBulkHwidMenu(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.Bulk = &models.BulkDraft{Kind: models.BulkHwid}
	session.State = models.SelectBulkHwidAction

	if err := h.editHTML(c, h.t(lang, "ask_hwid_bulk_action"), h.bulkHwidMarkup(lang)); err != nil {
		return err
	}
	if c.Callback() != nil {
		session.PromptMessageID = c.Callback().Message.ID
	}
	return nil
}

func (h *Handler) onBulkHwidEnable(c telebot.Context, session *models.Session) error {
	if session.Bulk == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	session.State = models.AwaitingBulkHwidValue
	return h.editHTML(c, h.t(h.lang(session), "ask_for_bulk_hwid_value"), nil)
}

func (h *Handler) onBulkHwidDisable(c telebot.Context, session *models.Session) error {
	if session.Bulk == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	session.Bulk.Delta = 0
	return h.showBulkConfirmation(c, session)
}

func (h *Handler) onBulkHwidValueInput(c telebot.Context, session *models.Session, text string) error {
	if session.Bulk == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	limit, err := strconv.Atoi(text)
	if err != nil || limit <= 0 {
		h.flash(c, h.t(lang, "invalid_number"), errorFlashDuration)
		return nil
	}

	session.Bulk.Delta = float64(limit)
	h.deleteInput(c)
	return h.showBulkConfirmation(c, session)
}

func (h *Handler) onBulkValueInput(c telebot.Context, session *models.Session, text string) error {
	if session.Bulk == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)
	h.deleteInput(c)

	m := bulkDeltaRe.FindStringSubmatch(text)
	if m == nil {
		h.flash(c, h.t(lang, "invalid_bulk_input"), errorFlashDuration)
		return nil
	}

	delta, _ := strconv.ParseFloat(m[2], 64)
	if m[1] == "-" {
		delta = -delta
	}
	session.Bulk.Delta = delta
	return h.showBulkConfirmation(c, session)
}

// showBulkConfirmation materializes the frozen user snapshot and asks for
// the final go-ahead with the affected-user count spelled out.
func (h *Handler) showBulkConfirmation(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	draft := session.Bulk
	promptID := session.PromptMessageID

	_ = h.editStored(c, promptID, h.t(lang, "fetching_all_users"), nil)

	users, err := h.panel.GetAllUsers(context.Background())
	if err != nil {
		text := h.t(lang, "error_fetching_all_users", "error", err.Error())
		session.Reset()
		return h.editStored(c, promptID, text, h.backToMainMarkup(lang))
	}

	draft.Users = users
	session.State = models.ConfirmBulkAction

	var changeValue string
	switch draft.Kind {
	case models.BulkVolume:
		changeValue = fmt.Sprintf("%+g GB", draft.Delta)
	case models.BulkDate:
		changeValue = fmt.Sprintf("%+d %s", int(draft.Delta), h.t(lang, "days_unit"))
	case models.BulkHwid:
		if draft.Delta > 0 {
			changeValue = strconv.Itoa(int(draft.Delta))
		} else {
			changeValue = h.t(lang, "disable_hwid_bulk_btn")
		}
	}

	text := h.t(lang, "confirm_bulk_update_prompt",
		"change_type", h.t(lang, "change_type_"+string(draft.Kind)),
		"change_value", changeValue,
		"user_count", len(users))
	return h.editStored(c, promptID, text, h.bulkConfirmMarkup(lang))
}

// onBulkConfirmed hands the frozen snapshot to the detached runner. The
// conversation resets immediately, the runner reports to the chat when done.
func (h *Handler) onBulkConfirmed(c telebot.Context, session *models.Session) error {
	if session.Bulk == nil || session.Bulk.Users == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)
	draft := session.Bulk

	if err := h.editHTML(c, h.t(lang, "bulk_update_started", "user_count", len(draft.Users)), nil); err != nil {
		return err
	}

	placeholderID := 0
	if c.Callback() != nil {
		placeholderID = c.Callback().Message.ID
	}

	h.bulkRuns.Launch(bulk.Job{
		ChatID:            c.Chat().ID,
		MessageIDToDelete: placeholderID,
		Lang:              lang,
		Users:             draft.Users,
		Kind:              draft.Kind,
		Delta:             draft.Delta,
	})

	session.Reset()
	return nil
}

func (h *Handler) onBulkCancelled(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	if err := h.editHTML(c, h.t(lang, "bulk_update_cancelled"), nil); err != nil {
		return err
	}
	session.Reset()
	_, err := h.sendHTML(c, h.t(lang, "main_menu_prompt"), h.mainMenuMarkup(lang))
	return err
}
