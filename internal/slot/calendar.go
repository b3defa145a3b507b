package slot

import (
	"fmt"
	"sort"
	"time"
)

// Calendar is the set of eligible hours of the day plus the tolerance
// applied symmetrically around each hour:00:00 instant.
type Calendar struct {
	hours     []int
	tolerance time.Duration
	loc       *time.Location
}

// NewCalendar validates hours (0..23, no duplicates) and returns a calendar
// with hours sorted ascending. A nil loc means time.Local.
func NewCalendar(hours []int, tolerance time.Duration, loc *time.Location) (*Calendar, error) {
	if len(hours) == 0 {
		return nil, fmt.Errorf("calendar: at least one hour is required")
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("calendar: tolerance must be >= 0")
	}
	seen := make(map[int]struct{}, len(hours))
	out := make([]int, 0, len(hours))
	for _, h := range hours {
		if h < 0 || h > 23 {
			return nil, fmt.Errorf("calendar: hour %d out of range 0..23", h)
		}
		if _, dup := seen[h]; dup {
			return nil, fmt.Errorf("calendar: duplicate hour %d", h)
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Ints(out)
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{hours: out, tolerance: tolerance, loc: loc}, nil
}

func (c *Calendar) Hours() []int {
	return append([]int(nil), c.hours...)
}

func (c *Calendar) Tolerance() time.Duration { return c.tolerance }

func (c *Calendar) Location() *time.Location { return c.loc }

// Local converts t to the calendar's time zone.
func (c *Calendar) Local(t time.Time) time.Time { return t.In(c.loc) }

// Instant returns hour:00:00 on the local date of now.
func (c *Calendar) Instant(hour int, now time.Time) time.Time {
	return DayOf(c.Local(now)).At(hour, c.loc)
}
