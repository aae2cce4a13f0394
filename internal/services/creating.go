package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"zeitig/internal/backend"
	"zeitig/internal/types"
)

// ToggleCreating opens the creation dialog, or closes it when open
func (t *Tracker) ToggleCreating() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.setup.Creating.Kind == types.CreatingNothing {
		t.setup.Creating = types.Creating{Kind: types.CreatingChoosing}
	} else {
		t.setup.Creating = types.Creating{}
	}
}

// ChooseCreating picks what the open dialog creates. kind must be
// CreatingAction or CreatingSubject.
func (t *Tracker) ChooseCreating(kind types.CreatingKind) error {
	if kind != types.CreatingAction && kind != types.CreatingSubject {
		return fmt.Errorf("cannot choose to create %s", kind)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.setup.Creating.Kind != types.CreatingChoosing {
		return fmt.Errorf("creation dialog is %s, not choosing", t.setup.Creating.Kind)
	}
	t.setup.Creating = types.Creating{Kind: kind}
	return nil
}

// SetDraft replaces the name typed into the dialog
func (t *Tracker) SetDraft(draft string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.setup.Creating.Kind {
	case types.CreatingAction, types.CreatingSubject:
		t.setup.Creating.Draft = draft
	}
}

// SubmitDraft sends the drafted action or subject to the backend and closes
// the dialog. A blank draft keeps the dialog open and submits nothing; ok
// reports whether a command was submitted.
func (t *Tracker) SubmitDraft() (id uuid.UUID, ok bool, err error) {
	t.mu.Lock()
	creating := t.setup.Creating
	name := strings.TrimSpace(creating.Draft)

	var cmd backend.Command
	switch creating.Kind {
	case types.CreatingAction:
		cmd = backend.AddAction{Name: name}
	case types.CreatingSubject:
		cmd = backend.AddSubject{Name: name}
	}
	if cmd == nil || name == "" {
		t.mu.Unlock()
		return uuid.Nil, false, nil
	}
	t.setup.Creating = types.Creating{}
	b := t.backend
	t.mu.Unlock()

	if b == nil {
		return uuid.Nil, false, fmt.Errorf("no backend to create %q", name)
	}
	id, err = b.Submit(cmd)
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}
