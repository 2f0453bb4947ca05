package handlers

import (
	"bytes"
	"context"
	"fmt"
	"time"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/models"
	"remna-tg-admin/internal/reports"
)

// startUpdatedUsersReport asks how far back the activity window reaches
func (h *Handler) startUpdatedUsersReport(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.AwaitingHoursForUpdatedList
	if err := h.editHTML(c, h.t(lang, "ask_for_hours_ago"), nil); err != nil {
		return err
	}
	if c.Callback() != nil {
		session.PromptMessageID = c.Callback().Message.ID
	}
	return nil
}

// onHoursInput builds the activity report: a summary in chat plus the full
// name lists as an attached text file.
func (h *Handler) onHoursInput(c telebot.Context, session *models.Session, text string) error {
	lang := h.lang(session)

	var hours int
	if _, err := fmt.Sscanf(text, "%d", &hours); err != nil || hours <= 0 {
		h.flash(c, h.t(lang, "invalid_hours_input"), errorFlashDuration)
		return nil
	}

	h.deleteInput(c)
	h.deleteByID(c, session.PromptMessageID)
	session.PromptMessageID = 0
	session.State = models.MainMenu

	waiting, _ := h.sendHTML(c, h.t(lang, "fetching_updated_users"), nil)

	users, err := h.panel.GetAllUsers(context.Background())
	if err != nil {
		text := h.t(lang, "error_fetching_all_users", "error", err.Error())
		if waiting != nil {
			_, editErr := c.Bot().Edit(waiting, text, htmlOpts(nil))
			return editErr
		}
		_, sendErr := h.sendHTML(c, text, nil)
		return sendErr
	}

	threshold := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	updated, inactive := reports.SplitByActivity(users, threshold)

	if len(updated) == 0 && len(inactive) == 0 && len(users) > 0 {
		text := h.t(lang, "no_users_found_in_period", "hours", hours)
		if waiting != nil {
			_, editErr := c.Bot().Edit(waiting, text, htmlOpts(h.backToMainMarkup(lang)))
			return editErr
		}
		_, sendErr := h.sendHTML(c, text, h.backToMainMarkup(lang))
		return sendErr
	}

	summary := h.t(lang, "updated_users_summary",
		"total_count", len(users),
		"updated_count", len(updated),
		"not_updated_count", len(inactive),
		"hours", hours)
	if waiting != nil {
		if _, err := c.Bot().Edit(waiting, summary, htmlOpts(h.backToMainMarkup(lang))); err != nil {
			h.logger.Errorf("Failed to edit summary message: %v", err)
		}
	} else {
		_, _ = h.sendHTML(c, summary, h.backToMainMarkup(lang))
	}

	body := h.reports.ActivityReportFile(lang, updated, inactive)
	doc := &telebot.Document{
		File:     telebot.FromReader(bytes.NewReader([]byte(body))),
		FileName: fmt.Sprintf("user_update_report_%dh.txt", hours),
		Caption:  h.t(lang, "user_activity_report_caption", "hours", hours),
	}
	_, err = c.Bot().Send(c.Recipient(), doc)
	if err != nil {
		h.logger.Errorf("Failed to send activity report file: %v", err)
	}
	return err
}

func (h *Handler) showExpiringMenu(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.ExpiringUsersMenu
	return h.editHTML(c, h.t(lang, "expiring_users_prompt"), h.expiringMenuMarkup(lang))
}

var expiringPeriodKeys = map[int]string{
	0: "today",
	1: "tomorrow",
	2: "day_after_tomorrow",
}

// onExpiringRange renders the expiring-users report for the chosen day.
// Oversized reports go out as a file instead of an unreadable wall of text.
func (h *Handler) onExpiringRange(c telebot.Context, session *models.Session, daysOffset int) error {
	lang := h.lang(session)
	session.State = models.ExpiringUsersMenu

	if err := h.editHTML(c, h.t(lang, "fetching_expiring_users"), nil); err != nil {
		return err
	}

	users, err := h.panel.GetAllUsers(context.Background())
	if err != nil {
		text := h.t(lang, "error_fetching_all_users", "error", err.Error())
		return h.editHTML(c, text, h.backToExpiringMarkup(lang))
	}

	expiring := reports.FilterExpiring(users, time.Now(), daysOffset)
	if len(expiring) == 0 {
		return h.editHTML(c, h.t(lang, "no_expiring_users_found"), h.backToExpiringMarkup(lang))
	}

	displayLoc := time.UTC
	if rule := h.expiryRule(); rule != nil {
		displayLoc = rule.Location
	}

	periodKey := expiringPeriodKeys[daysOffset]
	period := h.t(lang, "period_"+periodKey)
	report := h.reports.ExpiringReportLines(lang, period, expiring, displayLoc)

	if len(report) > constants.MaxReportLength {
		body := reports.ExpiringReportFile(expiring, displayLoc)
		doc := &telebot.Document{
			File:     telebot.FromReader(bytes.NewReader([]byte(body))),
			FileName: fmt.Sprintf("expiring_users_%s.txt", periodKey),
			Caption:  h.t(lang, "expiring_users_report_title", "period", period),
		}
		if _, err := c.Bot().Send(c.Recipient(), doc); err != nil {
			h.logger.Errorf("Failed to send expiring report file: %v", err)
			return err
		}
		return h.editHTML(c, h.t(lang, "user_list_sent_as_file"), h.backToExpiringMarkup(lang))
	}

	opts := &telebot.SendOptions{
		ParseMode:   telebot.ModeMarkdown,
		ReplyMarkup: h.backToExpiringMarkup(lang),
	}
	if err := c.Edit(report, opts); err != nil {
		h.logger.Errorf("Failed to show expiring report: %v", err)
		return err
	}
	return nil
}
