package types

import (
	"cmp"
	"fmt"
	"iter"
	"slices"
	"time"
)

// Action is a user defined activity label
type Action struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Subject is a user defined context the time is spent on
type Subject struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (a Action) String() string  { return a.Name }
func (s Subject) String() string { return s.Name }

// CompareActions orders actions by name, then by id
func CompareActions(a, b Action) int {
	return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
}

// CompareSubjects orders subjects by name, then by id
func CompareSubjects(a, b Subject) int {
	return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
}

// TopicKey is the identity of a topic
type TopicKey struct {
	Action  int64
	Subject int64
}

// Topic pairs one action with one subject; it is the unit of time accounting
type Topic struct {
	Action  Action  `json:"action"`
	Subject Subject `json:"subject"`
}

// Key returns the id pair identifying the topic
func (t Topic) Key() TopicKey {
	return TopicKey{Action: t.Action.ID, Subject: t.Subject.ID}
}

// Compare orders topics for display
func (t Topic) Compare(other Topic) int {
	return cmp.Or(CompareActions(t.Action, other.Action), CompareSubjects(t.Subject, other.Subject))
}

func (t Topic) String() string {
	return fmt.Sprintf("%s / %s", t.Action.Name, t.Subject.Name)
}

// Session is one committed interval of tracked time
type Session struct {
	Topic   Topic     `json:"topic"`
	Started time.Time `json:"started"`
	Ended   time.Time `json:"ended"`
}

// Duration is the time between start and end
func (s Session) Duration() SpentTime {
	return SpentTime(s.Ended.Sub(s.Started))
}

// ActiveSession is the running, not yet committed timer
type ActiveSession struct {
	Started  time.Time
	Duration SpentTime
}

// History is the append-only, chronological list of sessions
type History struct {
	sessions []Session
}

// NewHistory creates a history holding the given sessions in order
func NewHistory(sessions ...Session) *History {
	return &History{sessions: slices.Clone(sessions)}
}

// Append adds a session to the end of the history
func (h *History) Append(s Session) {
	h.sessions = append(h.sessions, s)
}

// Len returns the number of sessions
func (h *History) Len() int {
	if h == nil {
		return 0
	}
	return len(h.sessions)
}

// At returns the i-th session
func (h *History) At(i int) Session {
	return h.sessions[i]
}

// All iterates the sessions in insertion order
func (h *History) All() iter.Seq[Session] {
	return func(yield func(Session) bool) {
		if h == nil {
			return
		}
		for _, s := range h.sessions {
			if !yield(s) {
				return
			}
		}
	}
}

// Sessions returns a copy of the sessions
func (h *History) Sessions() []Session {
	if h == nil {
		return nil
	}
	return slices.Clone(h.sessions)
}

type timeEntry struct {
	topic Topic
	spent SpentTime
}

// TimeEntry is one row of a time table
type TimeEntry struct {
	Topic Topic
	Spent SpentTime
}

// TimeTable maps topics to their accumulated time.
// Entries are created on first GetMut and never removed.
type TimeTable struct {
	entries map[TopicKey]*timeEntry
}

// Get returns the time recorded for topic, zero when nothing was recorded
func (tt *TimeTable) Get(topic Topic) SpentTime {
	if tt == nil || tt.entries == nil {
		return 0
	}
	if e, ok := tt.entries[topic.Key()]; ok {
		return e.spent
	}
	return 0
}

// GetMut returns the entry for topic, creating a zero entry when missing
func (tt *TimeTable) GetMut(topic Topic) *SpentTime {
	if tt.entries == nil {
		tt.entries = make(map[TopicKey]*timeEntry)
	}
	e, ok := tt.entries[topic.Key()]
	if !ok {
		e = &timeEntry{topic: topic}
		tt.entries[topic.Key()] = e
	}
	return &e.spent
}

// Len returns the number of entries
func (tt *TimeTable) Len() int {
	if tt == nil {
		return 0
	}
	return len(tt.entries)
}

// Entries returns all entries ordered by topic
func (tt *TimeTable) Entries() []TimeEntry {
	if tt == nil {
		return nil
	}
	out := make([]TimeEntry, 0, len(tt.entries))
	for _, e := range tt.entries {
		out = append(out, TimeEntry{Topic: e.topic, Spent: e.spent})
	}
	slices.SortFunc(out, func(a, b TimeEntry) int { return a.Topic.Compare(b.Topic) })
	return out
}

// Content is the durable catalog: actions, subjects and the time table
type Content struct {
	Actions   []Action
	Subjects  []Subject
	TimeTable TimeTable
}

// NewContent returns an empty catalog
func NewContent() *Content {
	return &Content{}
}

// FindAction looks an action up by id
func (c *Content) FindAction(id int64) (Action, bool) {
	for _, a := range c.Actions {
		if a.ID == id {
			return a, true
		}
	}
	return Action{}, false
}

// FindSubject looks a subject up by id
func (c *Content) FindSubject(id int64) (Subject, bool) {
	for _, s := range c.Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// InsertAction adds an action keeping the list ordered by name
func (c *Content) InsertAction(a Action) {
	i, _ := slices.BinarySearchFunc(c.Actions, a, CompareActions)
	c.Actions = slices.Insert(c.Actions, i, a)
}

// InsertSubject adds a subject keeping the list ordered by name
func (c *Content) InsertSubject(s Subject) {
	i, _ := slices.BinarySearchFunc(c.Subjects, s, CompareSubjects)
	c.Subjects = slices.Insert(c.Subjects, i, s)
}
