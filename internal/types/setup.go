package types

// CreatingKind tells which step of the creation dialog is open
type CreatingKind int

const (
	CreatingNothing CreatingKind = iota
	CreatingChoosing
	CreatingAction
	CreatingSubject
)

func (k CreatingKind) String() string {
	switch k {
	case CreatingChoosing:
		return "choosing"
	case CreatingAction:
		return "action"
	case CreatingSubject:
		return "subject"
	default:
		return "nothing"
	}
}

// Creating is the state of the creation dialog. Draft only carries meaning
// for CreatingAction and CreatingSubject.
type Creating struct {
	Kind  CreatingKind
	Draft string
}

// Setup is the ephemeral selection state
type Setup struct {
	Action   *Action
	Subject  *Subject
	Creating Creating
}

// Topic returns the selected topic when both an action and a subject are selected
func (s Setup) Topic() (Topic, bool) {
	if s.Action == nil || s.Subject == nil {
		return Topic{}, false
	}
	return Topic{Action: *s.Action, Subject: *s.Subject}, true
}

// NewItemLabel is the caption of the button toggling the creation dialog
func (s Setup) NewItemLabel() string {
	if s.Creating.Kind == CreatingNothing {
		return "New Item"
	}
	return "Cancel"
}
