// Package snapshot reads and writes the name keyed interchange file used for
// imports from the legacy format, exports and autosave.
package snapshot

import (
	"fmt"
	"time"

	"zeitig/internal/types"
)

// Snapshot is the whole tracker state with actions and subjects referenced by name
type Snapshot struct {
	Actions   []string     `toml:"actions" yaml:"actions" json:"actions"`
	Subjects  []string     `toml:"subjects" yaml:"subjects" json:"subjects"`
	TimeTable []TimeRecord `toml:"time_table" yaml:"time_table" json:"time_table"`
	History   []Record     `toml:"history" yaml:"history" json:"history"`
}

// TimeRecord is the accumulated time of one topic
type TimeRecord struct {
	Action  string `toml:"action" yaml:"action" json:"action"`
	Subject string `toml:"subject" yaml:"subject" json:"subject"`
	Seconds int64  `toml:"seconds" yaml:"seconds" json:"seconds"`
}

// Record is one finished session
type Record struct {
	Action  string    `toml:"action" yaml:"action" json:"action"`
	Subject string    `toml:"subject" yaml:"subject" json:"subject"`
	Started time.Time `toml:"started" yaml:"started" json:"started"`
	Ended   time.Time `toml:"ended" yaml:"ended" json:"ended"`
}

// FromState builds a snapshot of content and history. Entries sharing a
// name collapse into one; their times add up.
func FromState(content *types.Content, history *types.History) *Snapshot {
	snap := &Snapshot{}
	if content == nil {
		content = types.NewContent()
	}

	seen := make(map[string]bool)
	for _, a := range content.Actions {
		if !seen[a.Name] {
			seen[a.Name] = true
			snap.Actions = append(snap.Actions, a.Name)
		}
	}
	clear(seen)
	for _, s := range content.Subjects {
		if !seen[s.Name] {
			seen[s.Name] = true
			snap.Subjects = append(snap.Subjects, s.Name)
		}
	}

	index := make(map[[2]string]int)
	for _, entry := range content.TimeTable.Entries() {
		key := [2]string{entry.Topic.Action.Name, entry.Topic.Subject.Name}
		if i, ok := index[key]; ok {
			snap.TimeTable[i].Seconds += entry.Spent.Seconds()
			continue
		}
		index[key] = len(snap.TimeTable)
		snap.TimeTable = append(snap.TimeTable, TimeRecord{
			Action:  key[0],
			Subject: key[1],
			Seconds: entry.Spent.Seconds(),
		})
	}

	for s := range history.All() {
		snap.History = append(snap.History, Record{
			Action:  s.Topic.Action.Name,
			Subject: s.Topic.Subject.Name,
			Started: s.Started,
			Ended:   s.Ended,
		})
	}
	return snap
}

// ToState resolves names into a catalog with provisional ids, numbered from 1
// in file order, ready for a store transfer. A record naming an unknown
// action or subject is an error.
func (s *Snapshot) ToState() (*types.Content, *types.History, error) {
	content := types.NewContent()
	actions := make(map[string]types.Action)
	subjects := make(map[string]types.Subject)

	for _, name := range s.Actions {
		if _, dup := actions[name]; dup {
			continue
		}
		a := types.Action{ID: int64(len(actions) + 1), Name: name}
		actions[name] = a
		content.InsertAction(a)
	}
	for _, name := range s.Subjects {
		if _, dup := subjects[name]; dup {
			continue
		}
		sub := types.Subject{ID: int64(len(subjects) + 1), Name: name}
		subjects[name] = sub
		content.InsertSubject(sub)
	}

	resolve := func(kind, action, subject string) (types.Topic, error) {
		a, ok := actions[action]
		if !ok {
			return types.Topic{}, fmt.Errorf("%s references unknown action %q", kind, action)
		}
		sub, ok := subjects[subject]
		if !ok {
			return types.Topic{}, fmt.Errorf("%s references unknown subject %q", kind, subject)
		}
		return types.Topic{Action: a, Subject: sub}, nil
	}

	for _, row := range s.TimeTable {
		topic, err := resolve("time table entry", row.Action, row.Subject)
		if err != nil {
			return nil, nil, err
		}
		if row.Seconds < 0 {
			return nil, nil, fmt.Errorf("time table entry %s has negative time", topic)
		}
		spent := content.TimeTable.GetMut(topic)
		*spent = spent.Add(types.Seconds(row.Seconds))
	}

	history := types.NewHistory()
	for i, rec := range s.History {
		topic, err := resolve(fmt.Sprintf("session %d", i), rec.Action, rec.Subject)
		if err != nil {
			return nil, nil, err
		}
		history.Append(types.Session{Topic: topic, Started: rec.Started, Ended: rec.Ended})
	}
	return content, history, nil
}
