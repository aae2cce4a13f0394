package services

import (
	"iter"
	"slices"
	"time"

	"zeitig/internal/types"
)

// Insights groups history into Monday to Sunday weeks
type Insights struct {
	// Location decides the calendar day of a session. Nil keeps the
	// location each session was recorded in.
	Location *time.Location
}

// NewInsights creates an aggregator using loc for calendar days
func NewInsights(loc *time.Location) *Insights {
	return &Insights{Location: loc}
}

// Generate yields one Week per calendar week that has sessions, oldest
// first, with entries ordered by topic. Sessions are sorted by start time
// first. The sequence can be ranged over again to recompute it.
func (in *Insights) Generate(history *types.History) iter.Seq[types.Week] {
	return func(yield func(types.Week) bool) {
		sessions := history.Sessions()
		slices.SortStableFunc(sessions, func(a, b types.Session) int {
			return a.Started.Compare(b.Started)
		})

		var (
			open   bool
			week   types.Week
			totals = make(map[types.TopicKey]*types.Summary)
		)

		flush := func() bool {
			week.Entries = make([]types.Summary, 0, len(totals))
			for _, s := range totals {
				week.Entries = append(week.Entries, *s)
			}
			slices.SortFunc(week.Entries, func(a, b types.Summary) int {
				return a.Topic.Compare(b.Topic)
			})
			clear(totals)
			return yield(week)
		}

		for _, s := range sessions {
			day := in.dayOf(s.Started)
			if !open || day.After(week.End) {
				if open && !flush() {
					return
				}
				monday := day.Monday()
				week = types.Week{Begin: monday, End: monday.AddDays(6)}
				open = true
			}

			key := s.Topic.Key()
			summary, ok := totals[key]
			if !ok {
				summary = &types.Summary{Topic: s.Topic}
				totals[key] = summary
			}
			summary.Spent = summary.Spent.Add(s.Duration())
		}

		if open {
			flush()
		}
	}
}

func (in *Insights) dayOf(t time.Time) types.Date {
	if in != nil && in.Location != nil {
		t = t.In(in.Location)
	}
	return types.DateOf(t)
}
