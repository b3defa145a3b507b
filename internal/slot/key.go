package slot

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Day is a calendar date without a time zone.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the local calendar date of t.
func DayOf(t time.Time) Day {
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// Before reports whether d is an earlier date than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

// At returns hour:00:00 of d in loc.
func (d Day) At(hour int, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, hour, 0, 0, 0, loc)
}

// Key identifies one slot on one day.
type Key struct {
	Day  Day
	Hour int
}

// String renders the key as YYYY-MM-DD-HH.
func (k Key) String() string {
	return fmt.Sprintf("%s-%02d", k.Day, k.Hour)
}

// Less orders keys by day, then hour.
func (k Key) Less(o Key) bool {
	if k.Day != o.Day {
		return k.Day.Before(o.Day)
	}
	return k.Hour < o.Hour
}

// ParseKey parses the YYYY-MM-DD-HH form produced by Key.String.
func ParseKey(raw string) (Key, error) {
	s := strings.TrimSpace(raw)
	i := strings.LastIndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return Key{}, fmt.Errorf("invalid slot key %q", raw)
	}
	t, err := time.Parse("2006-01-02", s[:i])
	if err != nil {
		return Key{}, fmt.Errorf("invalid slot key %q: %w", raw, err)
	}
	h, err := strconv.Atoi(s[i+1:])
	if err != nil || h < 0 || h > 23 {
		return Key{}, fmt.Errorf("invalid slot key %q: bad hour", raw)
	}
	return Key{Day: DayOf(t), Hour: h}, nil
}
