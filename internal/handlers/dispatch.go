package handlers

import (
	"strings"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/events"
	"remna-tg-admin/internal/models"
	"remna-tg-admin/internal/panel"
)

// Handle routes one update. Callback events carry their own meaning; plain
// text means whatever the conversation state says it means.
func (h *Handler) Handle(c telebot.Context) error {
	if c.Callback() != nil {
		return h.handleCallback(c)
	}
	if c.Message() != nil {
		return h.handleText(c)
	}
	return nil
}

func (h *Handler) handleText(c telebot.Context) error {
	session := h.sessions.Get(c.Chat().ID)
	defer h.sessions.Save(c.Chat().ID, session)

	text := strings.TrimSpace(c.Text())
	if strings.HasPrefix(text, "/start") {
		session.Reset()
		return h.showMainMenu(c, session)
	}

	switch session.State {
	case models.AwaitingUsername:
		return h.onUsernameInput(c, session, text)
	case models.AwaitingLimit, models.AwaitingExpire, models.AwaitingHwidEdit:
		return h.onEditValueInput(c, session, text)
	case models.AwaitingNewUsername:
		return h.onNewUsernameInput(c, session, text)
	case models.AwaitingDataLimit:
		return h.onDataLimitInput(c, session, text)
	case models.AwaitingExpireDays:
		return h.onExpireDaysInput(c, session, text)
	case models.AwaitingHwidValue:
		return h.onHwidValueInput(c, session, text)
	case models.AwaitingBulkValue:
		return h.onBulkValueInput(c, session, text)
	case models.AwaitingBulkHwidValue:
		return h.onBulkHwidValueInput(c, session, text)
	case models.AwaitingHoursForUpdatedList:
		return h.onHoursInput(c, session, text)
	case models.AwaitingTimezoneSetting:
		return h.onTimezoneInput(c, session, text)
	default:
		// Free text outside an input state restarts the conversation
		session.Reset()
		return h.showMainMenu(c, session)
	}
}

func (h *Handler) handleCallback(c telebot.Context) error {
	if err := c.Respond(); err != nil {
		h.logger.Debugf("Failed to answer callback: %v", err)
	}

	session := h.sessions.Get(c.Chat().ID)
	defer h.sessions.Save(c.Chat().ID, session)

	event := events.Decode(c.Callback().Data)
	switch event.Kind {
	case events.BackToMain:
		session.Reset()
		return h.showMainMenu(c, session)

	// Main menu
	case events.GoAddUser:
		return h.startAddUser(c, session)
	case events.GoManageUser:
		return h.startManageUser(c, session)
	case events.GoViewLogs:
		return h.showNodeLogList(c, session)
	case events.GoRestartNodes:
		return h.showNodeRestartList(c, session)
	case events.GoEditAllUsers:
		return h.showBulkMenu(c, session)
	case events.GoUpdatedUsers:
		return h.startUpdatedUsersReport(c, session)
	case events.GoExpiringUsers:
		return h.showExpiringMenu(c, session)
	case events.GoSetExpireTime:
		return h.startExpireTimeSetting(c, session)
	case events.GoChangeLanguage:
		return h.showLanguageMenu(c, session)
	case events.SetLanguage:
		return h.onLanguageSelected(c, session, event.Lang)

	// Node operations
	case events.NodeLogs:
		return h.onNodeLogs(c, session, event.Node)
	case events.NodeRestart:
		return h.onNodeRestart(c, session, event.Node)

	// Add-user flow
	case events.HwidEnable:
		return h.onHwidEnable(c, session)
	case events.HwidDisable:
		return h.onHwidDisable(c, session)
	case events.SquadToggle:
		return h.onSquadToggle(c, session, event.SquadID)
	case events.CreateUserFinal:
		return h.onCreateUser(c, session)
	case events.BannerHapp, events.BannerSub:
		return h.onBannerGenerate(c, session, event.Kind == events.BannerHapp)
	case events.BackToBannerMenu:
		return h.showBannerMenu(c, session)

	// User card
	case events.EditLimit:
		return h.startFieldEdit(c, session, models.EditLimit)
	case events.EditExpire:
		return h.startFieldEdit(c, session, models.EditExpire)
	case events.EditHwid:
		return h.startFieldEdit(c, session, models.EditHwid)
	case events.ResetUsage:
		return h.onUserAction(c, session, panel.ActionResetTraffic)
	case events.EnableUser:
		return h.onUserAction(c, session, panel.ActionEnable)
	case events.DisableUser:
		return h.onUserAction(c, session, panel.ActionDisable)
	case events.RefreshCard:
		return h.onRefreshCard(c, session)
	case events.ShowQR:
		return h.onShowQR(c, session)
	case events.ShowHappQR:
		return h.onShowHappQR(c, session)
	case events.ShowAllLinks:
		return h.onShowAllLinks(c, session)
	case events.DeleteUser:
		return h.onDeletePrompt(c, session)
	case events.ConfirmDelete:
		return h.onDeleteConfirmed(c, session)
	case events.CancelDelete, events.BackToUserInfo:
		return h.onBackToUserCard(c, session)

	// Bulk flow
	case events.BulkEditVolume:
		return h.startBulkValue(c, session, models.BulkVolume)
	case events.BulkEditDate:
		return h.startBulkValue(c, session, models.BulkDate)
	case events.BulkEditHwid:
		return h.showBulkHwidMenu(c, session)
	case events.BulkHwidEnable:
		return h.onBulkHwidEnable(c, session)
	case events.BulkHwidDisable:
		return h.onBulkHwidDisable(c, session)
	case events.ConfirmBulk:
		return h.onBulkConfirmed(c, session)
	case events.CancelBulk:
		return h.onBulkCancelled(c, session)

	// Expiring report
	case events.ExpiringRange:
		return h.onExpiringRange(c, session, event.DaysOffset)

	default:
		h.logger.Warnf("Unknown callback data: %q", c.Callback().Data)
		return nil
	}
}

// showMainMenu renders the main menu, editing in place when triggered by a
// callback and sending fresh otherwise.
func (h *Handler) showMainMenu(c telebot.Context, session *models.Session) error {
	session.State = models.MainMenu
	lang := h.lang(session)
	return h.editHTML(c, h.t(lang, "main_menu_prompt"), h.mainMenuMarkup(lang))
}
