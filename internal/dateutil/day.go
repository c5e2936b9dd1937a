package dateutil

import (
	"fmt"
	"time"
)

// dayLayout is the wire format for Day values.
const dayLayout = "2006-01-02"

// Day is a calendar date with no time-of-day component. Streak and review
// computations compare Days, never wall-clock timestamps, so a rating at
// 23:59 and one at 00:01 land on different days regardless of timezone
// offset tricks.
type Day struct {
	year  int
	month time.Month
	day   int
}

// New creates a Day from its components.
func New(year int, month time.Month, day int) Day {
	return Day{year: year, month: month, day: day}
}

// FromTime extracts the calendar date of t in t's own location.
func FromTime(t time.Time) Day {
	y, m, d := t.Date()
	return Day{year: y, month: m, day: d}
}

// Today returns the current date in loc. A nil loc means time.Local.
func Today(loc *time.Location) Day {
	if loc == nil {
		loc = time.Local
	}
	return FromTime(time.Now().In(loc))
}

// Time returns the Day as midnight UTC. Using UTC keeps day arithmetic
// immune to DST transitions.
func (d Day) Time() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the Day n calendar days after d (n may be negative).
func (d Day) AddDays(n int) Day {
	return FromTime(d.Time().AddDate(0, 0, n))
}

// DiffDays returns the number of whole days from other to d.
// Positive when d is later than other.
func (d Day) DiffDays(other Day) int {
	return int(d.Time().Sub(other.Time()).Hours() / 24)
}

// Before reports whether d is earlier than other.
func (d Day) Before(other Day) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is later than other.
func (d Day) After(other Day) bool {
	return d.Time().After(other.Time())
}

// Equal reports whether d and other are the same calendar date.
func (d Day) Equal(other Day) bool {
	return d == other
}

// IsZero reports whether d is the zero Day (no date recorded).
func (d Day) IsZero() bool {
	return d == Day{}
}

// String formats the Day as YYYY-MM-DD.
func (d Day) String() string {
	return d.Time().Format(dayLayout)
}

// MarshalJSON encodes the Day as "YYYY-MM-DD". The zero Day encodes as null
// so absent dates stay absent in the stored document.
func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes "YYYY-MM-DD" or null.
func (d *Day) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Day{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid day value %s", s)
	}
	t, err := time.Parse(dayLayout, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("parse day: %w", err)
	}
	*d = FromTime(t)
	return nil
}
