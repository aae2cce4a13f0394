package types

import (
	"fmt"
	"time"
)

// SpentTime is an accumulated duration. Comparisons work on whole seconds.
type SpentTime time.Duration

// Seconds builds a SpentTime from a number of seconds
func Seconds(n int64) SpentTime {
	return SpentTime(time.Duration(n) * time.Second)
}

// Duration returns the underlying time.Duration
func (s SpentTime) Duration() time.Duration {
	return time.Duration(s)
}

// Seconds returns the whole seconds, truncating any fraction
func (s SpentTime) Seconds() int64 {
	return int64(time.Duration(s) / time.Second)
}

// Add returns the sum of both durations
func (s SpentTime) Add(other SpentTime) SpentTime {
	return s + other
}

// Equal reports whether both values are equal at second granularity
func (s SpentTime) Equal(other SpentTime) bool {
	return s.Seconds() == other.Seconds()
}

// Compare returns -1, 0 or 1 comparing whole seconds
func (s SpentTime) Compare(other SpentTime) int {
	a, b := s.Seconds(), other.Seconds()
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// IsZero reports whether less than one second has been spent
func (s SpentTime) IsZero() bool {
	return s.Seconds() == 0
}

func (s SpentTime) String() string {
	total := s.Seconds()
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

// Date is a calendar day without a time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar day of t in t's location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate builds a normalized date
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// In returns midnight of the date in loc
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) utc() time.Time {
	return d.In(time.UTC)
}

// AddDays returns the date n days later (or earlier for negative n)
func (d Date) AddDays(n int) Date {
	return DateOf(d.utc().AddDate(0, 0, n))
}

// Weekday returns the day of the week
func (d Date) Weekday() time.Weekday {
	return d.utc().Weekday()
}

// Monday returns the Monday starting the week that contains d
func (d Date) Monday() Date {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// Before reports whether d is strictly earlier than other
func (d Date) Before(other Date) bool {
	return d.utc().Before(other.utc())
}

// After reports whether d is strictly later than other
func (d Date) After(other Date) bool {
	return d.utc().After(other.utc())
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}
