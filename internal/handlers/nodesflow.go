package handlers

import (
	"context"
	"html"

	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/events"
	"remna-tg-admin/internal/models"
)

// truncateLogs keeps the message under Telegram's size limit by dropping
// the oldest lines. The most recent output is the interesting part.
func truncateLogs(logs string) string {
	if len(logs) <= constants.MaxLogLength {
		return logs
	}
	return "...\n" + logs[len(logs)-constants.MaxLogLength:]
}

func (h *Handler) showNodeLogList(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.NodeList
	markup := h.nodeListMarkup(lang, h.nodeOps.Names(), events.NodeLogsData)
	return h.editHTML(c, h.t(lang, "select_node_prompt"), markup)
}

func (h *Handler) showNodeRestartList(c telebot.Context, session *models.Session) error {
	lang := h.lang(session)
	session.State = models.SelectNodeRestart
	markup := h.nodeListMarkup(lang, h.nodeOps.Names(), events.NodeRestartData)
	return h.editHTML(c, h.t(lang, "select_node_restart_prompt"), markup)
}

// onNodeLogs fetches and displays a node's log tail, with a refresh button
// that re-runs the same fetch.
func (h *Handler) onNodeLogs(c telebot.Context, session *models.Session, name string) error {
	lang := h.lang(session)
	session.State = models.ViewingLogs

	if err := h.editHTML(c, h.t(lang, "fetching_logs", "node_name", name), nil); err != nil {
		return err
	}

	logs, err := h.nodeOps.FetchLogs(context.Background(), name)
	if err != nil {
		text := h.t(lang, "error_fetching_logs", "node_name", name, "details", html.EscapeString(err.Error()))
		markup := inline([]telebot.InlineButton{
			btn(h.t(lang, "back_to_nodes_btn"), "go_view_logs"),
		})
		return h.editHTML(c, text, markup)
	}

	if logs == "" {
		logs = h.t(lang, "logs_empty")
	}
	text := h.t(lang, "logs_title", "node_name", name) +
		"\n\n<pre><code>" + html.EscapeString(truncateLogs(logs)) + "</code></pre>"
	markup := inline(
		[]telebot.InlineButton{btn(h.t(lang, "refresh_logs_btn"), events.NodeLogsData(name))},
		[]telebot.InlineButton{btn(h.t(lang, "back_to_nodes_btn"), "go_view_logs")},
	)
	return h.editHTML(c, text, markup)
}

// onNodeRestart restarts a node and shows the captured restart logs. The
// remote call can take a while, the placeholder keeps the operator informed.
func (h *Handler) onNodeRestart(c telebot.Context, session *models.Session, name string) error {
	lang := h.lang(session)

	if err := h.editHTML(c, h.t(lang, "restarting_node", "node_name", name), nil); err != nil {
		return err
	}

	output, err := h.nodeOps.Restart(context.Background(), name)

	var text string
	if err != nil {
		text = h.t(lang, "node_restart_failed", "node_name", name) +
			"\n\n<pre><code>" + html.EscapeString(err.Error()) + "</code></pre>"
	} else {
		text = h.t(lang, "node_restart_success", "node_name", name) +
			"\n\n<b>" + h.t(lang, "logs_title", "node_name", name) + "</b>\n" +
			"<pre><code>" + html.EscapeString(truncateLogs(output)) + "</code></pre>"
	}

	session.State = models.MainMenu
	markup := inline([]telebot.InlineButton{
		btn(h.t(lang, "back_to_restart_list_btn"), "go_restart_nodes"),
	})
	return h.editHTML(c, text, markup)
}
