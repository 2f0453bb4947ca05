package handlers

import (
	"context"
	"html"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/expiry"
	"remna-tg-admin/internal/models"
	"remna-tg-admin/internal/panel"
)

// startAddUser opens the add-user flow. The prompt suggests the most
// recently created username so sequential naming schemes are easy to
// continue.
func (h *Handler) startAddUser(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	if err := h.editHTML(c, h.t(lang, "fetching_last_user"), nil); err != nil {
		return err
	}

	lastUsername := "N/A"
	if users, err := h.panel.GetAllUsers(context.Background()); err == nil && len(users) > 0 {
		sort.Slice(users, func(i, j int) bool {
			return users[i].CreationDate().After(users[j].CreationDate())
		})
		if users[0].Username != "" {
			lastUsername = users[0].Username
		}
	} else if err != nil {
		h.logger.Errorf("Could not fetch users for last-username suggestion: %v", err)
	}

	session.NewUser = &models.NewUserDraft{SelectedSquads: make(map[string]bool)}
	session.State = models.AwaitingNewUsername

	prompt := h.t(lang, "ask_for_new_username_with_suggestion", "last_user", lastUsername)
	if err := h.editHTML(c, prompt, nil); err != nil {
		return err
	}
	if c.Callback() != nil {
		session.PromptMessageID = c.Callback().Message.ID
	}
	return nil
}

func (h *Handler) onNewUsernameInput(c telebot.Context, session *models.Session, text string) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	session.NewUser.Username = text
	session.State = models.AwaitingDataLimit
	h.deleteInput(c)
	return h.editStored(c, session.PromptMessageID, h.t(lang, "ask_for_data_limit"), nil)
}

func (h *Handler) onDataLimitInput(c telebot.Context, session *models.Session, text string) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	limitGB, err := strconv.Atoi(text)
	if err != nil || limitGB < 0 {
		h.flash(c, h.t(lang, "invalid_number"), errorFlashDuration)
		return nil
	}

	session.NewUser.TrafficLimitBytes = int64(limitGB) * constants.BytesInGB
	session.State = models.AwaitingExpireDays
	h.deleteInput(c)
	return h.editStored(c, session.PromptMessageID, h.t(lang, "ask_for_expire_days"), nil)
}

func (h *Handler) onExpireDaysInput(c telebot.Context, session *models.Session, text string) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	days, err := strconv.Atoi(text)
	if err != nil || days < 0 {
		h.flash(c, h.t(lang, "invalid_number"), errorFlashDuration)
		return nil
	}

	expireAt := expiry.Compute(time.Now(), days, h.expiryRule())
	session.NewUser.ExpireAt = models.FormatISO(expireAt)
	session.State = models.SelectingHwidOption
	h.deleteInput(c)

	markup := inline(
		[]telebot.InlineButton{btn(h.t(lang, "enable_hwid_btn"), "hwid_enable")},
		[]telebot.InlineButton{btn(h.t(lang, "disable_hwid_btn"), "hwid_disable")},
	)
	return h.editStored(c, session.PromptMessageID, h.t(lang, "ask_hwid_limit_prompt"), markup)
}

func (h *Handler) onHwidEnable(c telebot.Context, session *models.Session) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	session.State = models.AwaitingHwidValue
	return h.editHTML(c, h.t(h.lang(session), "ask_for_hwid_value"), nil)
}

func (h *Handler) onHwidDisable(c telebot.Context, session *models.Session) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	session.NewUser.HwidDeviceLimit = 0
	if err := h.editHTML(c, h.t(h.lang(session), "fetching_squads_prompt"), nil); err != nil {
		return err
	}
	return h.showSquadSelection(c, session)
}

func (h *Handler) onHwidValueInput(c telebot.Context, session *models.Session, text string) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)

	limit, err := strconv.Atoi(text)
	if err != nil || limit <= 0 {
		h.flash(c, h.t(lang, "invalid_number"), errorFlashDuration)
		return nil
	}

	session.NewUser.HwidDeviceLimit = limit
	h.deleteInput(c)
	if err := h.editStored(c, session.PromptMessageID, h.t(lang, "fetching_squads_prompt"), nil); err != nil {
		return err
	}
	return h.showSquadSelection(c, session)
}

// showSquadSelection loads the panel's internal squads and renders the
// multi-select keyboard in place of the current prompt.
func (h *Handler) showSquadSelection(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)

	squads, err := h.panel.GetInternalSquads(context.Background())
	if err != nil {
		h.logger.Errorf("Failed to fetch internal squads: %v", err)
		if c.Callback() != nil {
			_ = h.editHTML(c, h.t(lang, "fetching_squads_error"), nil)
		} else {
			_ = h.editStored(c, session.PromptMessageID, h.t(lang, "fetching_squads_error"), nil)
		}
		session.Reset()
		return h.showMainMenu(c, session)
	}

	session.NewUser.AvailableSquads = squads
	session.NewUser.SelectedSquads = make(map[string]bool)
	session.State = models.SelectingSquads

	markup := h.squadMarkup(lang, session.NewUser)
	if c.Callback() != nil {
		return h.editHTML(c, h.t(lang, "select_squads_prompt"), markup)
	}
	return h.editStored(c, session.PromptMessageID, h.t(lang, "select_squads_prompt"), markup)
}

func (h *Handler) onSquadToggle(c telebot.Context, session *models.Session, squadID string) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}

	if session.NewUser.SelectedSquads[squadID] {
		delete(session.NewUser.SelectedSquads, squadID)
	} else {
		session.NewUser.SelectedSquads[squadID] = true
	}

	lang := h.lang(session)
	return h.editHTML(c, h.t(lang, "select_squads_prompt"), h.squadMarkup(lang, session.NewUser))
}

func (h *Handler) onCreateUser(c telebot.Context, session *models.Session) error {
	if session.NewUser == nil {
		session.Reset()
		return h.showMainMenu(c, session)
	}
	lang := h.lang(session)
	draft := session.NewUser

	if err := h.editHTML(c, h.t(lang, "creating_user", "username", draft.Username), nil); err != nil {
		return err
	}

	selected := make([]string, 0, len(draft.SelectedSquads))
	for id := range draft.SelectedSquads {
		selected = append(selected, id)
	}
	sort.Strings(selected)

	req := panel.CreateUserRequest{
		Username:             draft.Username,
		Status:               models.StatusActive,
		TrojanPassword:       models.RandomString(10),
		VlessUUID:            uuid.NewString(),
		SsPassword:           models.RandomString(10),
		TrafficLimitBytes:    draft.TrafficLimitBytes,
		TrafficLimitStrategy: "NO_RESET",
		ExpireAt:             draft.ExpireAt,
		Description:          "",
		Tag:                  models.RandomTag(8),
		Email:                models.RandomString(5) + "@placeholder.com",
		TelegramID:           0,
		HwidDeviceLimit:      draft.HwidDeviceLimit,
		ActiveInternalSquads: selected,
	}

	user, err := h.panel.CreateUser(context.Background(), req)
	if err != nil {
		session.State = models.MainMenu
		text := h.t(lang, "error_creating_user", "error", html.EscapeString(err.Error()))
		return h.editHTML(c, text, h.backToMainMarkup(lang))
	}

	session.CreatedUser = user
	session.NewUser = nil
	return h.showBannerMenu(c, session)
}
