package types

// Summary is the time spent on one topic during a week
type Summary struct {
	Topic Topic
	Spent SpentTime
}

// Week aggregates sessions from Monday (Begin) to Sunday (End)
type Week struct {
	Begin   Date
	End     Date
	Entries []Summary
}

// Total sums all entries of the week
func (w Week) Total() SpentTime {
	var total SpentTime
	for _, e := range w.Entries {
		total = total.Add(e.Spent)
	}
	return total
}
