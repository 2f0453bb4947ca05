package handlers

import (
	"bytes"
	"context"
	"errors"
	"html"
	"strconv"
	"strings"
	"time"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/expiry"
	"remna-tg-admin/internal/models"
	"remna-tg-admin/internal/panel"
)

// startManageUser asks which user to look up
func (h *Handler) startManageUser(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.AwaitingUsername
	if err := h.editHTML(c, h.t(lang, "ask_for_username"), nil); err != nil {
		return err
	}
	if c.Callback() != nil {
		session.PromptMessageID = c.Callback().Message.ID
	}
	return nil
}

func (h *Handler) onUsernameInput(c telebot.Context, session *models.Session, text string) error {
	h.deleteInput(c)
	h.deleteByID(c, session.PromptMessageID)
	session.PromptMessageID = 0
	session.Username = text
	return h.showUserCard(c, session)
}

// showUserCard fetches the user record and renders the card with its action
// keyboard as a fresh message.
func (h *Handler) showUserCard(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	if session.Username == "" {
		session.Reset()
		return h.showMainMenu(c, session)
	}

	waiting, _ := h.sendHTML(c, h.t(lang, "fetching_user_info", "username", session.Username), nil)

	user, err := h.panel.GetUserByUsername(context.Background(), session.Username)
	if err != nil {
		session.State = models.AwaitingUsername
		text := h.t(lang, "error_fetching", "error", html.EscapeString(err.Error()))
		if errors.Is(err, panel.ErrNotFound) {
			text = h.t(lang, "user_not_found", "username", html.EscapeString(session.Username))
		}
		if waiting != nil {
			_, editErr := c.Bot().Edit(waiting, text, htmlOpts(h.backToMainMarkup(lang)))
			return editErr
		}
		_, sendErr := h.sendHTML(c, text, h.backToMainMarkup(lang))
		return sendErr
	}

	session.UserRecord = user
	session.UserUUID = user.UUID
	session.State = models.UserMenu

	card := h.reports.UserCard(lang, user, time.Now())
	markup := h.userCardMarkup(lang, user)
	if waiting != nil {
		_, editErr := c.Bot().Edit(waiting, card, htmlOpts(markup))
		return editErr
	}
	_, sendErr := h.sendHTML(c, card, markup)
	return sendErr
}

// startFieldEdit turns the card into a prompt for one field's new value
func (h *Handler) startFieldEdit(c telebot.Context, session *models.Session, field models.EditField) error {
	if session.UserUUID == "" {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	var promptKey string
	switch field {
	case models.EditLimit:
		promptKey = "ask_for_new_limit"
		session.State = models.AwaitingLimit
	case models.EditExpire:
		promptKey = "ask_for_new_expire"
		session.State = models.AwaitingExpire
	case models.EditHwid:
		promptKey = "ask_for_new_hwid_limit"
		session.State = models.AwaitingHwidEdit
	default:
		return nil
	}
	session.Editing = field

	prompt := h.t(lang, promptKey, "username", html.EscapeString(session.Username))
	if err := h.editHTML(c, prompt, nil); err != nil {
		return err
	}
	if c.Callback() != nil {
		session.EditPromptMessageID = c.Callback().Message.ID
	}
	return nil
}

// onEditValueInput applies the new field value and re-renders the card
func (h *Handler) onEditValueInput(c telebot.Context, session *models.Session, text string) error {
	lang := h.lang(session)
	h.deleteInput(c)
	h.deleteByID(c, session.EditPromptMessageID)
	session.EditPromptMessageID = 0

	if session.UserUUID == "" {
		session.Reset()
		return h.showMainMenu(c, session)
	}

	patch := panel.UserPatch{UUID: session.UserUUID}
	switch session.Editing {
	case models.EditLimit:
		limitGB, err := strconv.ParseFloat(text, 64)
		if err != nil {
			h.flash(c, h.t(lang, "invalid_number"), errorFlashDuration)
			return nil
		}
		limit := int64(limitGB * float64(constants.BytesInGB))
		patch.TrafficLimitBytes = &limit

	case models.EditExpire:
		days, err := strconv.Atoi(text)
		if err != nil {
			h.flash(c, h.t(lang, "invalid_number"), errorFlashDuration)
			return nil
		}
		expireAt := models.FormatISO(expiry.Compute(time.Now(), days, h.expiryRule()))
		patch.ExpireAt = &expireAt

	case models.EditHwid:
		limit, err := strconv.Atoi(text)
		if err != nil || limit < 0 {
			h.flash(c, h.t(lang, "invalid_number"), errorFlashDuration)
			return nil
		}
		patch.HwidDeviceLimit = &limit

	default:
		session.Reset()
		return h.showMainMenu(c, session)
	}

	if err := h.panel.UpdateUser(context.Background(), patch); err != nil {
		h.flash(c, h.t(lang, "update_failed", "error", html.EscapeString(err.Error())), errorFlashDuration)
	}
	session.Editing = models.EditNone
	return h.showUserCard(c, session)
}

// onUserAction runs enable/disable/reset-traffic and refreshes the card
func (h *Handler) onUserAction(c telebot.Context, session *models.Session, action string) error {
	if session.UserUUID == "" {
		session.Reset()
		return h.showMainMenu(c, session)
	}

	if err := h.panel.UserAction(context.Background(), session.UserUUID, action); err != nil {
		lang := h.lang(session)
		h.flash(c, h.t(lang, "update_failed", "error", html.EscapeString(err.Error())), errorFlashDuration)
		return nil
	}

	if err := c.Delete(); err != nil {
		h.logger.Debugf("Failed to delete user card: %v", err)
	}
	return h.showUserCard(c, session)
}

func (h *Handler) onRefreshCard(c telebot.Context, session *models.Session) error {
	if err := c.Delete(); err != nil {
		h.logger.Debugf("Failed to delete user card: %v", err)
	}
	return h.showUserCard(c, session)
}

// onShowQR replaces the card with the subscription QR code
func (h *Handler) onShowQR(c telebot.Context, session *models.Session) error {
	if session.UserRecord == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	png, err := h.qr.Generate(session.UserRecord.SubscriptionURL)
	if err != nil {
		h.flash(c, h.t(lang, "error_generating_qr"), errorFlashDuration)
		return nil
	}

	session.State = models.QRView
	if err := c.Delete(); err != nil {
		h.logger.Debugf("Failed to delete user card: %v", err)
	}
	photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(png))}
	_, err = c.Bot().Send(c.Recipient(), photo, htmlOpts(h.backToUserInfoMarkup(lang)))
	return err
}

// onShowHappQR fetches the subscription, asks the panel for the encrypted
// Happ form and shows it as a QR photo. Encryption failure degrades to the
// raw link rather than aborting.
func (h *Handler) onShowHappQR(c telebot.Context, session *models.Session) error {
	if session.Username == "" {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)
	ctx := context.Background()

	waiting, _ := h.sendHTML(c, h.t(lang, "generating_happ_link"), nil)
	defer func() {
		if waiting != nil {
			if err := c.Bot().Delete(waiting); err != nil {
				h.logger.Debugf("Failed to delete waiting message: %v", err)
			}
		}
	}()

	sub, err := h.panel.GetSubscription(ctx, session.Username)
	if err != nil || sub.SubscriptionURL == "" {
		h.flash(c, h.t(lang, "error_fetching", "error", "subscription"), errorFlashDuration)
		return nil
	}

	link := sub.SubscriptionURL
	if encrypted, encErr := h.panel.EncryptHappLink(ctx, link); encErr == nil && encrypted != "" {
		link = encrypted
	} else if encErr != nil {
		h.logger.Warnf("Happ link encryption failed, using raw link: %v", encErr)
	}

	png, err := h.qr.Generate(link)
	if err != nil {
		h.flash(c, h.t(lang, "error_generating_qr"), errorFlashDuration)
		return nil
	}

	caption := h.t(lang, "happ_qr_caption", "username", html.EscapeString(session.Username)) +
		"\n<pre>" + html.EscapeString(link) + "</pre>"

	session.State = models.QRView
	if err := c.Delete(); err != nil {
		h.logger.Debugf("Failed to delete user card: %v", err)
	}

	markup := h.backToUserInfoMarkup(lang)
	if len(caption) > constants.MaxCaptionLength {
		photo := &telebot.Photo{
			File:    telebot.FromReader(bytes.NewReader(png)),
			Caption: h.t(lang, "happ_qr_caption", "username", html.EscapeString(session.Username)),
		}
		if _, err := c.Bot().Send(c.Recipient(), photo, htmlOpts(markup)); err != nil {
			return err
		}
		_, err := h.sendHTML(c, "<pre>"+html.EscapeString(link)+"</pre>", nil)
		return err
	}

	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	_, err = c.Bot().Send(c.Recipient(), photo, htmlOpts(markup))
	return err
}

// onShowAllLinks lists every subscription link for the user
func (h *Handler) onShowAllLinks(c telebot.Context, session *models.Session) error {
	if session.Username == "" {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	sub, err := h.panel.GetSubscription(context.Background(), session.Username)
	if err != nil {
		h.flash(c, h.t(lang, "error_fetching", "error", html.EscapeString(err.Error())), errorFlashDuration)
		return nil
	}
	if len(sub.Links) == 0 {
		h.flash(c, h.t(lang, "no_links_found"), errorFlashDuration)
		return nil
	}

	var sb strings.Builder
	sb.WriteString(h.t(lang, "user_links_title", "username", html.EscapeString(session.Username)))
	sb.WriteString("\n\n")
	for _, link := range sub.Links {
		sb.WriteString("<code>")
		sb.WriteString(html.EscapeString(link))
		sb.WriteString("</code>\n\n")
	}

	session.State = models.QRView
	return h.editHTML(c, sb.String(), h.backToUserInfoMarkup(lang))
}

// onDeletePrompt asks for confirmation before deleting the user
func (h *Handler) onDeletePrompt(c telebot.Context, session *models.Session) error {
	if session.UserRecord == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	session.State = models.ConfirmDelete
	text := h.t(lang, "delete_confirm_prompt", "username", html.EscapeString(session.Username))
	markup := inline([]telebot.InlineButton{
		btn(h.t(lang, "confirm_delete_btn"), "confirm_delete"),
		btn(h.t(lang, "cancel_delete_btn"), "cancel_delete"),
	})
	return h.editHTML(c, text, markup)
}

func (h *Handler) onDeleteConfirmed(c telebot.Context, session *models.Session) error {
	if session.UserUUID == "" {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	if err := h.editHTML(c, h.t(lang, "deleting_user", "username", html.EscapeString(session.Username)), nil); err != nil {
		return err
	}

	var text string
	if err := h.panel.DeleteUser(context.Background(), session.UserUUID); err != nil {
		text = h.t(lang, "error_deleting_user", "error", html.EscapeString(err.Error()))
	} else {
		text = h.t(lang, "user_deleted_success", "username", html.EscapeString(session.Username))
	}

	session.Reset()
	return h.editHTML(c, text, h.backToMainMarkup(lang))
}

// onBackToUserCard returns from a QR/links/delete view to the card
func (h *Handler) onBackToUserCard(c telebot.Context, session *models.Session) error {
	if err := c.Delete(); err != nil {
		h.logger.Debugf("Failed to delete sub-view: %v", err)
	}
	return h.showUserCard(c, session)
}
