// Package events turns raw callback payloads into tagged events. Parameters
// embedded in the payload (node name, squad id, day offset) are decoded once
// here, at the boundary, so handlers never parse action strings themselves.
package events

import (
	"strconv"
	"strings"
)

// Kind identifies an inline-keyboard event
type Kind int

const (
	Unknown Kind = iota

	// Menu navigation
	BackToMain
	GoAddUser
	GoManageUser
	GoRestartNodes
	GoViewLogs
	GoEditAllUsers
	GoUpdatedUsers
	GoExpiringUsers
	GoSetExpireTime
	GoChangeLanguage

	// Parameterized selections
	SetLanguage   // Lang
	NodeLogs      // Node
	NodeRestart   // Node
	SquadToggle   // SquadID
	ExpiringRange // DaysOffset

	// Add-user flow
	HwidEnable
	HwidDisable
	CreateUserFinal
	BannerHapp
	BannerSub
	BackToBannerMenu

	// User card
	EditLimit
	EditExpire
	EditHwid
	ResetUsage
	EnableUser
	DisableUser
	RefreshCard
	ShowQR
	ShowHappQR
	DeleteUser
	ShowAllLinks
	ConfirmDelete
	CancelDelete
	BackToUserInfo

	// Bulk flow
	BulkEditVolume
	BulkEditDate
	BulkEditHwid
	BulkHwidEnable
	BulkHwidDisable
	ConfirmBulk
	CancelBulk
)

// Event is a decoded callback event with its typed payload
type Event struct {
	Kind       Kind
	Node       string
	SquadID    string
	Lang       string
	DaysOffset int
}

var plainActions = map[string]Kind{
	"back_to_main":        BackToMain,
	"go_add_user":         GoAddUser,
	"go_manage_user":      GoManageUser,
	"go_restart_nodes":    GoRestartNodes,
	"go_view_logs":        GoViewLogs,
	"go_edit_all_users":   GoEditAllUsers,
	"go_updated_users":    GoUpdatedUsers,
	"go_expiring_users":   GoExpiringUsers,
	"go_set_expire_time":  GoSetExpireTime,
	"go_change_language":  GoChangeLanguage,
	"hwid_enable":         HwidEnable,
	"hwid_disable":        HwidDisable,
	"create_user_final":   CreateUserFinal,
	"banner_happ":         BannerHapp,
	"banner_sub":          BannerSub,
	"back_to_banner_menu": BackToBannerMenu,
	"edit_limit":          EditLimit,
	"edit_expire":         EditExpire,
	"edit_hwid":           EditHwid,
	"reset_usage":         ResetUsage,
	"enable_user":         EnableUser,
	"disable_user":        DisableUser,
	"refresh":             RefreshCard,
	"show_qr":             ShowQR,
	"get_happ_qr":         ShowHappQR,
	"delete_user":         DeleteUser,
	"show_all_links":      ShowAllLinks,
	"confirm_delete":      ConfirmDelete,
	"cancel_delete":       CancelDelete,
	"back_to_user_info":   BackToUserInfo,
	"bulk_edit_volume":    BulkEditVolume,
	"bulk_edit_date":      BulkEditDate,
	"bulk_edit_hwid":      BulkEditHwid,
	"bulk_hwid_enable":    BulkHwidEnable,
	"bulk_hwid_disable":   BulkHwidDisable,
	"confirm_bulk_action": ConfirmBulk,
	"cancel_bulk_action":  CancelBulk,
}

// Decode parses a callback payload into an Event
func Decode(data string) Event {
	data = strings.TrimSpace(data)

	if kind, ok := plainActions[data]; ok {
		return Event{Kind: kind}
	}

	switch {
	case strings.HasPrefix(data, "set_lang_"):
		return Event{Kind: SetLanguage, Lang: strings.TrimPrefix(data, "set_lang_")}
	case strings.HasPrefix(data, "lognode_"):
		return Event{Kind: NodeLogs, Node: strings.TrimPrefix(data, "lognode_")}
	case strings.HasPrefix(data, "restartnode_"):
		return Event{Kind: NodeRestart, Node: strings.TrimPrefix(data, "restartnode_")}
	case strings.HasPrefix(data, "squad_"):
		return Event{Kind: SquadToggle, SquadID: strings.TrimPrefix(data, "squad_")}
	case strings.HasPrefix(data, "expiring_"):
		offset, err := strconv.Atoi(strings.TrimPrefix(data, "expiring_"))
		if err != nil || offset < 0 {
			return Event{Kind: Unknown}
		}
		return Event{Kind: ExpiringRange, DaysOffset: offset}
	}

	return Event{Kind: Unknown}
}

// Callback data builders, the inverse of Decode for keyboard construction

func NodeLogsData(name string) string    { return "lognode_" + name }
func NodeRestartData(name string) string { return "restartnode_" + name }
func SquadToggleData(uuid string) string { return "squad_" + uuid }
func SetLanguageData(lang string) string { return "set_lang_" + lang }
func ExpiringRangeData(offset int) string {
	return "expiring_" + strconv.Itoa(offset)
}
