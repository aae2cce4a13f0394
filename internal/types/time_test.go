package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpentTime_EqualTruncatesToSeconds(t *testing.T) {
	t.Parallel()

	a := SpentTime(5*time.Second + 100*time.Millisecond)
	b := SpentTime(5*time.Second + 900*time.Millisecond)

	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.Compare(b))
	assert.False(t, a.Equal(Seconds(6)))
	assert.Equal(t, -1, a.Compare(Seconds(6)))
	assert.Equal(t, 1, Seconds(7).Compare(a))
}

func TestSpentTime_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		spent SpentTime
		want  string
	}{
		{0, "0h 0m 0s"},
		{Seconds(59), "0h 0m 59s"},
		{Seconds(3723), "1h 2m 3s"},
		{Seconds(26 * 3600), "26h 0m 0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.spent.String())
	}
}

func TestSpentTime_Add(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Seconds(45), Seconds(30).Add(Seconds(15)))
	assert.True(t, SpentTime(900*time.Millisecond).IsZero())
}

func TestDate_Monday(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		date Date
		want Date
	}{
		{"monday stays", NewDate(2024, time.January, 1), NewDate(2024, time.January, 1)},
		{"wednesday", NewDate(2024, time.January, 3), NewDate(2024, time.January, 1)},
		{"sunday belongs to previous monday", NewDate(2024, time.January, 7), NewDate(2024, time.January, 1)},
		{"across months", NewDate(2024, time.March, 2), NewDate(2024, time.February, 26)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.date.Monday())
		})
	}
}

func TestDate_Ordering(t *testing.T) {
	t.Parallel()

	d := NewDate(2024, time.December, 31)
	next := d.AddDays(1)

	assert.Equal(t, NewDate(2025, time.January, 1), next)
	assert.True(t, d.Before(next))
	assert.True(t, next.After(d))
	assert.False(t, d.After(d))
	assert.Equal(t, "2025-01-01", next.String())
}

func TestDateOf_UsesLocation(t *testing.T) {
	t.Parallel()

	zone := time.FixedZone("UTC+2", 2*60*60)
	instant := time.Date(2024, time.January, 7, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, NewDate(2024, time.January, 8), DateOf(instant.In(zone)))
	assert.Equal(t, NewDate(2024, time.January, 7), DateOf(instant))
}
