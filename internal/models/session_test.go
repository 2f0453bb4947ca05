package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResetClearsScratchState(t *testing.T) {
	session := &Session{
		State:    ConfirmBulkAction,
		Lang:     "fa",
		Username: "alice",
		UserUUID: "u-1",
		NewUser:  &NewUserDraft{Username: "draft"},
		Bulk:     &BulkDraft{Kind: BulkVolume, Delta: 5},
		Editing:  EditLimit,

		PromptMessageID:     10,
		EditPromptMessageID: 11,
	}

	session.Reset()

	assert.Equal(t, MainMenu, session.State)
	assert.Equal(t, "fa", session.Lang, "language override survives a reset")
	assert.Empty(t, session.Username)
	assert.Empty(t, session.UserUUID)
	assert.Nil(t, session.NewUser)
	assert.Nil(t, session.Bulk)
	assert.Equal(t, EditNone, session.Editing)
	assert.Zero(t, session.PromptMessageID)
	assert.Zero(t, session.EditPromptMessageID)
}
