package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeitig/internal/backend"
	"zeitig/internal/types"
)

func TestTracker_CreationDialog(t *testing.T) {
	f := newTrackerFixture(t)
	assert.Equal(t, "New Item", f.tracker.Setup().NewItemLabel())

	f.tracker.ToggleCreating()
	assert.Equal(t, types.CreatingChoosing, f.tracker.Setup().Creating.Kind)
	assert.Equal(t, "Cancel", f.tracker.Setup().NewItemLabel())

	require.NoError(t, f.tracker.ChooseCreating(types.CreatingSubject))
	f.tracker.SetDraft("  Rust ")

	id, ok, err := f.tracker.SubmitDraft()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, types.Creating{}, f.tracker.Setup().Creating)
	assert.Equal(t, []backend.Command{backend.AddSubject{Name: "Rust"}}, f.backend.Commands())
}

func TestTracker_BlankDraftIsNotSubmitted(t *testing.T) {
	f := newTrackerFixture(t)
	f.tracker.ToggleCreating()
	require.NoError(t, f.tracker.ChooseCreating(types.CreatingAction))
	f.tracker.SetDraft("   ")

	_, ok, err := f.tracker.SubmitDraft()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, types.CreatingAction, f.tracker.Setup().Creating.Kind, "dialog stays open")
	assert.Empty(t, f.backend.Commands())
}

func TestTracker_CreationDialogTransitions(t *testing.T) {
	f := newTrackerFixture(t)

	assert.Error(t, f.tracker.ChooseCreating(types.CreatingAction), "dialog is closed")

	f.tracker.ToggleCreating()
	assert.Error(t, f.tracker.ChooseCreating(types.CreatingChoosing))
	require.NoError(t, f.tracker.ChooseCreating(types.CreatingAction))
	f.tracker.SetDraft("Audit")

	f.tracker.ToggleCreating()
	assert.Equal(t, types.Creating{}, f.tracker.Setup().Creating, "cancel drops the draft")

	f.tracker.SetDraft("ignored")
	assert.Equal(t, "", f.tracker.Setup().Creating.Draft)
}
