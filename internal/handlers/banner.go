package handlers

import (
	"bytes"
	"context"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/models"
)

// showBannerMenu offers the banner format choice for a freshly created user
func (h *Handler) showBannerMenu(c telebot.Context, session *models.Session) error {
	if session.CreatedUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}

	session.State = models.UserCreatedMenu
	lang := h.lang(session)
	text := h.t(lang, "user_created_select_format", "username", session.CreatedUser.Username)
	return h.editHTML(c, text, h.bannerMenuMarkup(lang))
}

// onBannerGenerate renders the QR banner for the created user. The Happ
// variant asks the panel to encrypt the subscription link first and falls
// back to the raw link when encryption is unavailable.
func (h *Handler) onBannerGenerate(c telebot.Context, session *models.Session, happ bool) error {
	if session.CreatedUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)
	user := session.CreatedUser

	loading, _ := h.sendHTML(c, h.t(lang, "generating_banner"), nil)

	link := user.SubscriptionURL
	if happ {
		if encrypted, err := h.panel.EncryptHappLink(context.Background(), link); err == nil && encrypted != "" {
			link = encrypted
		} else if err != nil {
			h.logger.Warnf("Happ link encryption failed, using raw link: %v", err)
		}
	}

	caption := h.reports.BannerCaption(lang, user, link)
	png, err := h.qr.Generate(link)

	if err := c.Delete(); err != nil {
		h.logger.Debugf("Failed to delete banner menu: %v", err)
	}
	if loading != nil {
		if err := c.Bot().Delete(loading); err != nil {
			h.logger.Debugf("Failed to delete loading message: %v", err)
		}
	}

	markup := h.bannerResultMarkup(lang)
	if err != nil {
		h.logger.Errorf("Failed to generate banner QR: %v", err)
		_, sendErr := h.sendHTML(c, caption, markup)
		return sendErr
	}

	// Telegram caps photo captions; an oversized caption goes out as a
	// separate message after a bare QR photo.
	if len(caption) > constants.MaxCaptionLength {
		photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(png))}
		if _, err := c.Bot().Send(c.Recipient(), photo); err != nil {
			h.logger.Errorf("Failed to send banner photo: %v", err)
			return err
		}
		_, sendErr := h.sendHTML(c, caption, markup)
		return sendErr
	}

	photo := &telebot.Photo{
		File:    telebot.FromReader(bytes.NewReader(png)),
		Caption: caption,
	}
	if _, err := c.Bot().Send(c.Recipient(), photo, htmlOpts(markup)); err != nil {
		h.logger.Errorf("Failed to send banner photo: %v", err)
		return err
	}
	return nil
}
