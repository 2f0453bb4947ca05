package bulk

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	telebot "gopkg.in/telebot.v3"

	"remna-tg-admin/internal/constants"
	"remna-tg-admin/internal/locales"
	"remna-tg-admin/internal/models"
	"remna-tg-admin/internal/panel"
)

// PanelClient is the slice of the panel API the runner needs
type PanelClient interface {
	UpdateUser(ctx context.Context, patch panel.UserPatch) error
}

// Messenger delivers the job's final report back to the origin chat
type Messenger interface {
	SendMessage(chatID int64, text string, markup *telebot.ReplyMarkup) error
	DeleteMessage(chatID int64, messageID int) error
}

// Job is the frozen snapshot a bulk run operates on. It carries everything
// the run needs, so the triggering conversation can be torn down the moment
// the job is launched.
type Job struct {
	ChatID            int64
	MessageIDToDelete int
	Lang              string
	Users             []models.User
	Kind              models.BulkKind
	Delta             float64
}

// Outcome is the aggregate tally of one bulk run
type Outcome struct {
	Succeeded int
	Failed    int
	Skipped   int
}

// Runner executes bulk jobs detached from the conversation that confirmed
// them. There is no cancellation: a confirmed job runs to completion or
// process death.
type Runner struct {
	panel     PanelClient
	messenger Messenger
	locales   *locales.Store
	logger    *logrus.Logger
}

// NewRunner creates a bulk job runner
func NewRunner(panelClient PanelClient, messenger Messenger, loc *locales.Store, logger *logrus.Logger) *Runner {
	return &Runner{
		panel:     panelClient,
		messenger: messenger,
		locales:   loc,
		logger:    logger,
	}
}

// Launch schedules the job on its own goroutine and returns immediately
func (r *Runner) Launch(job Job) {
	r.logger.Infof("Scheduling bulk %s job for chat %d over %d users", job.Kind, job.ChatID, len(job.Users))
	go r.run(job)
}

func (r *Runner) run(job Job) {
	defer func() {
		// Retire the "in progress" placeholder whatever happened
		if err := r.messenger.DeleteMessage(job.ChatID, job.MessageIDToDelete); err != nil {
			r.logger.Warnf("Could not delete in-progress message %d: %v", job.MessageIDToDelete, err)
		}
	}()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Errorf("Fatal error in bulk job for chat %d: %v", job.ChatID, rec)
			text := r.locales.T(job.Lang, "bulk_update_fatal_error", "error", rec)
			if err := r.messenger.SendMessage(job.ChatID, text, nil); err != nil {
				r.logger.Errorf("Failed to report bulk job failure: %v", err)
			}
		}
	}()

	outcome := r.Apply(context.Background(), job)
	r.logger.Infof("Bulk job finished. Success: %d, Failed: %d, Skipped: %d",
		outcome.Succeeded, outcome.Failed, outcome.Skipped)

	skipReason := ""
	if job.Kind != models.BulkHwid {
		skipReason = r.locales.T(job.Lang, "skipped_reason_unlimited")
	}
	text := r.locales.T(job.Lang, "bulk_update_complete_detailed",
		"success_count", outcome.Succeeded,
		"failed_count", outcome.Failed,
		"skipped_count", outcome.Skipped,
		"skipped_reason_unlimited", skipReason)

	markup := &telebot.ReplyMarkup{InlineKeyboard: [][]telebot.InlineButton{{
		{Text: r.locales.T(job.Lang, "back_to_main_menu_btn"), Data: "back_to_main"},
	}}}
	if err := r.messenger.SendMessage(job.ChatID, text, markup); err != nil {
		r.logger.Errorf("Failed to send bulk job report: %v", err)
	}
}

// Apply walks the snapshot sequentially, patching one user per call. A
// failed patch is tallied and never aborts the rest of the batch.
func (r *Runner) Apply(ctx context.Context, job Job) Outcome {
	var outcome Outcome

	for i := range job.Users {
		user := &job.Users[i]
		if user.UUID == "" {
			outcome.Failed++
			continue
		}

		patch, ok := buildPatch(user, job.Kind, job.Delta)
		switch ok {
		case patchSkip:
			outcome.Skipped++
			continue
		case patchInvalid:
			outcome.Failed++
			continue
		}

		if err := r.panel.UpdateUser(ctx, patch); err != nil {
			outcome.Failed++
			r.logger.Errorf("Bulk update failed for user %s: %v", user.Username, err)
			continue
		}
		outcome.Succeeded++
	}

	return outcome
}

type patchVerdict int

const (
	patchApply patchVerdict = iota
	patchSkip
	patchInvalid
)

// buildPatch computes the per-user patch for the given edit kind. Users
// that are already unlimited for the edited dimension are skipped rather
// than failed.
func buildPatch(user *models.User, kind models.BulkKind, delta float64) (panel.UserPatch, patchVerdict) {
	patch := panel.UserPatch{UUID: user.UUID}

	switch kind {
	case models.BulkVolume:
		if user.TrafficLimitBytes == nil || *user.TrafficLimitBytes == 0 {
			return patch, patchSkip
		}
		newLimit := *user.TrafficLimitBytes + int64(delta*float64(constants.BytesInGB))
		if newLimit < 0 {
			newLimit = 0
		}
		patch.TrafficLimitBytes = &newLimit

	case models.BulkDate:
		if user.ExpireAt == nil || *user.ExpireAt == "" {
			return patch, patchSkip
		}
		current := models.ParseISO(user.ExpireAt)
		if current == nil {
			return patch, patchInvalid
		}
		shifted := models.FormatISO(current.Add(time.Duration(int(delta)) * 24 * time.Hour))
		patch.ExpireAt = &shifted

	case models.BulkHwid:
		limit := int(delta)
		patch.HwidDeviceLimit = &limit

	default:
		return patch, patchInvalid
	}

	return patch, patchApply
}
