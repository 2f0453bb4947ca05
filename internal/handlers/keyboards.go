package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/events"
	"remna-tg-admin/internal/models"
)

func btn(text, data string) telebot.InlineButton {
	return telebot.InlineButton{Text: text, Data: data}
}

func inline(rows ...[]telebot.InlineButton) *telebot.ReplyMarkup {
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

func (h *Handler) backToMainRow(lang string) []telebot.InlineButton {
	return []telebot.InlineButton{btn(h.t(lang, "back_to_main_menu_btn"), "back_to_main")}
}

func (h *Handler) backToMainMarkup(lang string) *telebot.ReplyMarkup {
	return inline(h.backToMainRow(lang))
}

func (h *Handler) mainMenuMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{
			btn(h.t(lang, "add_user_btn"), "go_add_user"),
			btn(h.t(lang, "manage_user_btn"), "go_manage_user"),
		},
		[]telebot.InlineButton{
			btn(h.t(lang, "restart_nodes_btn"), "go_restart_nodes"),
			btn(h.t(lang, "view_logs_btn"), "go_view_logs"),
		},
		[]telebot.InlineButton{
			btn(h.t(lang, "edit_all_users_btn"), "go_edit_all_users"),
		},
		[]telebot.InlineButton{
			btn(h.t(lang, "updated_users_btn"), "go_updated_users"),
			btn(h.t(lang, "expiring_users_btn"), "go_expiring_users"),
		},
		[]telebot.InlineButton{
			btn(h.t(lang, "set_expire_time_btn"), "go_set_expire_time"),
			btn(h.t(lang, "change_language_btn"), "go_change_language"),
		},
	)
}

// nodeListMarkup builds one button per node. A single node shares a row,
// more than one gets a row each.
func (h *Handler) nodeListMarkup(lang string, names []string, dataFor func(string) string) *telebot.ReplyMarkup {
	var rows [][]telebot.InlineButton
	if len(names) == 1 {
		rows = append(rows, []telebot.InlineButton{btn(names[0], dataFor(names[0]))})
	} else {
		for _, name := range names {
			rows = append(rows, []telebot.InlineButton{btn(name, dataFor(name))})
		}
	}
	rows = append(rows, h.backToMainRow(lang))
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

func (h *Handler) userCardMarkup(lang string, user *models.User) *telebot.ReplyMarkup {
	toggle := btn(h.t(lang, "enable_user_btn"), "enable_user")
	if user.IsActive() {
		toggle = btn(h.t(lang, "disable_user_btn"), "disable_user")
	}

	return inline(
		[]telebot.InlineButton{
			btn(h.t(lang, "edit_volume_btn"), "edit_limit"),
			btn(h.t(lang, "edit_date_btn"), "edit_expire"),
		},
		[]telebot.InlineButton{
			btn(h.t(lang, "edit_hwid_btn"), "edit_hwid"),
			btn(h.t(lang, "reset_usage_btn"), "reset_usage"),
		},
		[]telebot.InlineButton{
			toggle,
			btn(h.t(lang, "refresh_btn"), "refresh"),
		},
		[]telebot.InlineButton{
			btn(h.t(lang, "show_qr_btn"), "show_qr"),
			btn(h.t(lang, "get_happ_qr_btn"), "get_happ_qr"),
		},
		[]telebot.InlineButton{
			btn(h.t(lang, "delete_user_btn"), "delete_user"),
			btn(h.t(lang, "user_links_btn"), "show_all_links"),
		},
		h.backToMainRow(lang),
	)
}

func (h *Handler) squadMarkup(lang string, draft *models.NewUserDraft) *telebot.ReplyMarkup {
	var rows [][]telebot.InlineButton
	for _, squad := range draft.AvailableSquads {
		label := squad.Name
		if draft.SelectedSquads[squad.UUID] {
			label = "✅ " + squad.Name
		}
		rows = append(rows, []telebot.InlineButton{btn(label, events.SquadToggleData(squad.UUID))})
	}
	rows = append(rows, []telebot.InlineButton{
		btn(h.t(lang, "done_squad_selection_btn"), "create_user_final"),
	})
	return &telebot.ReplyMarkup{InlineKeyboard: rows}
}

func (h *Handler) bannerMenuMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn(h.t(lang, "btn_happ_banner"), "banner_happ")},
		[]telebot.InlineButton{btn(h.t(lang, "btn_sub_banner"), "banner_sub")},
		h.backToMainRow(lang),
	)
}

func (h *Handler) bannerResultMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn(h.t(lang, "back_to_banner_select"), "back_to_banner_menu")},
		h.backToMainRow(lang),
	)
}

func (h *Handler) backToUserInfoMarkup(lang string) *telebot.ReplyMarkup {
	return inline([]telebot.InlineButton{
		btn(h.t(lang, "back_to_user_info_btn"), "back_to_user_info"),
	})
}

func (h *Handler) languageMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{
			btn("English 🇬🇧", events.SetLanguageData("en")),
			btn("Русский 🇷🇺", events.SetLanguageData("ru")),
			btn("فارسی 🇮🇷", events.SetLanguageData("fa")),
		},
		h.backToMainRow(lang),
	)
}

func (h *Handler) bulkMenuMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn(h.t(lang, "bulk_edit_volume_btn"), "bulk_edit_volume")},
		[]telebot.InlineButton{btn(h.t(lang, "bulk_edit_date_btn"), "bulk_edit_date")},
		[]telebot.InlineButton{btn(h.t(lang, "bulk_edit_hwid_btn"), "bulk_edit_hwid")},
		h.backToMainRow(lang),
	)
}

func (h *Handler) bulkHwidMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn(h.t(lang, "enable_hwid_bulk_btn"), "bulk_hwid_enable")},
		[]telebot.InlineButton{btn(h.t(lang, "disable_hwid_bulk_btn"), "bulk_hwid_disable")},
		h.backToMainRow(lang),
	)
}

func (h *Handler) bulkConfirmMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn(h.t(lang, "confirm_btn"), "confirm_bulk_action")},
		[]telebot.InlineButton{btn(h.t(lang, "cancel_btn"), "cancel_bulk_action")},
	)
}

func (h *Handler) expiringMenuMarkup(lang string) *telebot.ReplyMarkup {
	return inline(
		[]telebot.InlineButton{btn(h.t(lang, "expiring_today_btn"), events.ExpiringRangeData(0))},
		[]telebot.InlineButton{btn(h.t(lang, "expiring_tomorrow_btn"), events.ExpiringRangeData(1))},
		[]telebot.InlineButton{btn(h.t(lang, "expiring_day_after_tomorrow_btn"), events.ExpiringRangeData(2))},
		h.backToMainRow(lang),
	)
}

func (h *Handler) backToExpiringMarkup(lang string) *telebot.ReplyMarkup {
	return inline([]telebot.InlineButton{
		btn(h.t(lang, "back_btn"), "go_expiring_users"),
	})
}
