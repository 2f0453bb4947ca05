package bulk

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/locales"
	"remna-tg-admin/internal/models"
	"remna-tg-admin/internal/panel"
)

type fakePanel struct {
	mu      sync.Mutex
	patches []panel.UserPatch
	failFor map[string]error
}

func (f *fakePanel) UpdateUser(ctx context.Context, patch panel.UserPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[patch.UUID]; ok {
		return err
	}
	f.patches = append(f.patches, patch)
	return nil
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []string
	deleted  []int
	done     chan struct{}
	doneOnce sync.Once
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{done: make(chan struct{})}
}

func (f *fakeMessenger) SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) error {
	f.mu.Lock()
	f.sent = append(f.sent, text)
	f.mu.Unlock()
	return nil
}

func (f *fakeMessenger) DeleteMessage(chatID int64, messageID int) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, messageID)
	f.mu.Unlock()
	f.doneOnce.Do(func() { close(f.done) })
	return nil
}

func (f *fakeMessenger) wait(t *testing.T) {
	t.Helper()
	select {
	case <-f.done:
	case <-time.After(2 * time.Second):
		t.Fatal("bulk job did not finish in time")
	}
}

func testRunner(p PanelClient, m Messenger) *Runner {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store := locales.NewStore(map[string]map[string]string{
		"en": {
			"bulk_update_complete_detailed": "done ok={success_count} fail={failed_count} skip={skipped_count}{skipped_reason_unlimited}",
			"skipped_reason_unlimited":      " (unlimited)",
			"bulk_update_fatal_error":       "fatal: {error}",
			"back_to_main_menu_btn":         "Main menu",
		},
	}, logger)
	return NewRunner(p, m, store, logger)
}

func int64p(v int64) *int64 { return &v }

func strp(s string) *string { return &s }

func TestApplyVolumePolicy(t *testing.T) {
	p := &fakePanel{}
	r := testRunner(p, newFakeMessenger())

	job := Job{
		Kind:  models.BulkVolume,
		Delta: -5,
		Users: []models.User{
			{UUID: "u-1", Username: "limited", TrafficLimitBytes: int64p(10 * constants.BytesInGB)},
			{UUID: "u-2", Username: "tiny", TrafficLimitBytes: int64p(2 * constants.BytesInGB)},
			{UUID: "u-3", Username: "unlimited-nil"},
			{UUID: "u-4", Username: "unlimited-zero", TrafficLimitBytes: int64p(0)},
		},
	}

	outcome := r.Apply(context.Background(), job)
	assert.Equal(t, Outcome{Succeeded: 2, Skipped: 2}, outcome)

	require.Len(t, p.patches, 2)
	assert.EqualValues(t, 5*constants.BytesInGB, *p.patches[0].TrafficLimitBytes)
	assert.EqualValues(t, 0, *p.patches[1].TrafficLimitBytes, "negative results clamp to zero")
}

func TestApplyDatePolicy(t *testing.T) {
	p := &fakePanel{failFor: map[string]error{"u-fail": errors.New("boom")}}
	r := testRunner(p, newFakeMessenger())

	job := Job{
		Kind:  models.BulkDate,
		Delta: 7,
		Users: []models.User{
			{UUID: "u-1", Username: "dated", ExpireAt: strp("2026-06-01T18:30:00.000Z")},
			{UUID: "u-2", Username: "no-date"},
			{UUID: "u-3", Username: "bad-date", ExpireAt: strp("not-a-date")},
			{UUID: "u-fail", Username: "unlucky", ExpireAt: strp("2026-06-01T18:30:00.000Z")},
		},
	}

	outcome := r.Apply(context.Background(), job)
	assert.Equal(t, Outcome{Succeeded: 1, Failed: 2, Skipped: 1}, outcome)

	require.Len(t, p.patches, 1)
	assert.Equal(t, "2026-06-08T18:30:00.000Z", *p.patches[0].ExpireAt)
}

func TestApplyHwidPolicy(t *testing.T) {
	p := &fakePanel{}
	r := testRunner(p, newFakeMessenger())

	job := Job{
		Kind:  models.BulkHwid,
		Delta: 0,
		Users: []models.User{
			{UUID: "u-1", Username: "a"},
			{UUID: "u-2", Username: "b", TrafficLimitBytes: int64p(0)},
		},
	}

	outcome := r.Apply(context.Background(), job)
	assert.Equal(t, Outcome{Succeeded: 2}, outcome, "hwid edits never skip")

	for _, patch := range p.patches {
		require.NotNil(t, patch.HwidDeviceLimit)
		assert.Equal(t, 0, *patch.HwidDeviceLimit)
	}
}

func TestApplyMissingUUIDFails(t *testing.T) {
	p := &fakePanel{}
	r := testRunner(p, newFakeMessenger())

	job := Job{
		Kind:  models.BulkHwid,
		Delta: 2,
		Users: []models.User{{Username: "ghost"}},
	}

	outcome := r.Apply(context.Background(), job)
	assert.Equal(t, Outcome{Failed: 1}, outcome)
	assert.Empty(t, p.patches)
}

func TestApplyFailureNeverAborts(t *testing.T) {
	p := &fakePanel{failFor: map[string]error{"u-2": errors.New("boom")}}
	r := testRunner(p, newFakeMessenger())

	job := Job{
		Kind:  models.BulkHwid,
		Delta: 1,
		Users: []models.User{
			{UUID: "u-1", Username: "a"},
			{UUID: "u-2", Username: "b"},
			{UUID: "u-3", Username: "c"},
		},
	}

	outcome := r.Apply(context.Background(), job)
	assert.Equal(t, Outcome{Succeeded: 2, Failed: 1}, outcome)
	require.Len(t, p.patches, 2, "users after a failure must still be processed")
}

func TestApplyDateMixedBatch(t *testing.T) {
	p := &fakePanel{failFor: map[string]error{"u-broken": errors.New("panel down")}}
	r := testRunner(p, newFakeMessenger())

	job := Job{
		Kind:  models.BulkDate,
		Delta: 3,
		Users: []models.User{
			{UUID: "u-ok", Username: "shifts", ExpireAt: strp("2026-06-10T18:30:00.000Z")},
			{UUID: "u-broken", Username: "errors", ExpireAt: strp("2026-06-10T18:30:00.000Z")},
			{UUID: "u-unlimited", Username: "skips"},
		},
	}

	outcome := r.Apply(context.Background(), job)
	assert.Equal(t, Outcome{Succeeded: 1, Failed: 1, Skipped: 1}, outcome)

	require.Len(t, p.patches, 1)
	assert.Equal(t, "2026-06-13T18:30:00.000Z", *p.patches[0].ExpireAt)
}

func TestLaunchReportsAndDeletesPlaceholder(t *testing.T) {
	p := &fakePanel{}
	m := newFakeMessenger()
	r := testRunner(p, m)

	r.Launch(Job{
		ChatID:            42,
		MessageIDToDelete: 777,
		Lang:              "en",
		Kind:              models.BulkVolume,
		Delta:             1,
		Users: []models.User{
			{UUID: "u-1", Username: "a", TrafficLimitBytes: int64p(constants.BytesInGB)},
			{UUID: "u-2", Username: "b"},
		},
	})

	m.wait(t)

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.sent, 1)
	assert.Equal(t, "done ok=1 fail=0 skip=1 (unlimited)", m.sent[0])
	assert.Equal(t, []int{777}, m.deleted)
}

func TestLaunchHwidReportOmitsSkipReason(t *testing.T) {
	p := &fakePanel{}
	m := newFakeMessenger()
	r := testRunner(p, m)

	r.Launch(Job{
		ChatID:            42,
		MessageIDToDelete: 1,
		Lang:              "en",
		Kind:              models.BulkHwid,
		Delta:             3,
		Users:             []models.User{{UUID: "u-1", Username: "a"}},
	})

	m.wait(t)

	m.mu.Lock()
	defer m.mu.Unlock()
	require.Len(t, m.sent, 1)
	assert.Equal(t, "done ok=1 fail=0 skip=0", m.sent[0])
}
