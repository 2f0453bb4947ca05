package handlers

import (
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/locales"
	"remna-tg-admin/internal/models"
)

func testHandler() *Handler {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Handler{
		locales: locales.NewStore(map[string]map[string]string{"en": {}}, logger),
		logger:  logger,
	}
}

func TestTruncateLogs(t *testing.T) {
	short := "a few lines of output"
	assert.Equal(t, short, truncateLogs(short))

	long := strings.Repeat("x", constants.MaxLogLength+100)
	got := truncateLogs(long)
	assert.True(t, strings.HasPrefix(got, "...\n"))
	assert.Len(t, got, constants.MaxLogLength+4)
	assert.Equal(t, long[100:], got[4:], "the tail survives, the head is dropped")
}

func TestBulkDeltaGrammar(t *testing.T) {
	tests := []struct {
		input string
		want  float64
		ok    bool
	}{
		{input: "+5", want: 5, ok: true},
		{input: "-3.5", want: -3.5, ok: true},
		{input: " + 10 ", want: 10, ok: true},
		{input: "-0", want: 0, ok: true},
		{input: "+0.25", want: 0.25, ok: true},
		{input: "5"},
		{input: "++5"},
		{input: "+5.5.5"},
		{input: "+abc"},
		{input: ""},
		{input: "+"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m := bulkDeltaRe.FindStringSubmatch(tt.input)
			if !tt.ok {
				assert.Nil(t, m)
				return
			}
			require.NotNil(t, m)
			delta := mustParseDelta(t, m)
			assert.Equal(t, tt.want, delta)
		})
	}
}

func mustParseDelta(t *testing.T, m []string) float64 {
	t.Helper()
	delta, err := strconv.ParseFloat(m[2], 64)
	require.NoError(t, err)
	if m[1] == "-" {
		delta = -delta
	}
	return delta
}

func TestMainMenuMarkupShape(t *testing.T) {
	markup := testHandler().mainMenuMarkup("en")

	rows := markup.InlineKeyboard
	require.Len(t, rows, 5)

	var data []string
	for _, row := range rows {
		for _, b := range row {
			data = append(data, b.Data)
		}
	}
	assert.Equal(t, []string{
		"go_add_user", "go_manage_user",
		"go_restart_nodes", "go_view_logs",
		"go_edit_all_users",
		"go_updated_users", "go_expiring_users",
		"go_set_expire_time", "go_change_language",
	}, data)
}

func TestUserCardMarkupToggle(t *testing.T) {
	h := testHandler()

	active := h.userCardMarkup("en", &models.User{Status: models.StatusActive})
	assert.Equal(t, "disable_user", active.InlineKeyboard[2][0].Data)

	disabled := h.userCardMarkup("en", &models.User{Status: "DISABLED"})
	assert.Equal(t, "enable_user", disabled.InlineKeyboard[2][0].Data)

	// Delete and links share the next-to-last row
	deleteRow := active.InlineKeyboard[4]
	require.Len(t, deleteRow, 2)
	assert.Equal(t, "delete_user", deleteRow[0].Data)
	assert.Equal(t, "show_all_links", deleteRow[1].Data)
}

func TestSquadMarkupMarksSelection(t *testing.T) {
	h := testHandler()
	draft := &models.NewUserDraft{
		AvailableSquads: []models.Squad{
			{UUID: "s-1", Name: "alpha"},
			{UUID: "s-2", Name: "beta"},
		},
		SelectedSquads: map[string]bool{"s-2": true},
	}

	markup := h.squadMarkup("en", draft)
	rows := markup.InlineKeyboard
	require.Len(t, rows, 3)
	assert.Equal(t, "alpha", rows[0][0].Text)
	assert.Equal(t, "✅ beta", rows[1][0].Text)
	assert.Equal(t, "squad_s-2", rows[1][0].Data)
	assert.Equal(t, "create_user_final", rows[2][0].Data)
}

func TestNodeListMarkup(t *testing.T) {
	h := testHandler()
	dataFor := func(name string) string { return "lognode_" + name }

	single := h.nodeListMarkup("en", []string{"solo"}, dataFor)
	require.Len(t, single.InlineKeyboard, 2)
	assert.Equal(t, "lognode_solo", single.InlineKeyboard[0][0].Data)

	many := h.nodeListMarkup("en", []string{"a", "b", "c"}, dataFor)
	assert.Len(t, many.InlineKeyboard, 4, "one row per node plus the back row")
}
