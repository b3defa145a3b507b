package slot

import (
	"time"
)

// Candidate describes how one calendar hour relates to "now".
type Candidate struct {
	Hour int
	// Delta is now minus the slot instant: positive once the slot has passed.
	Delta    time.Duration
	InWindow bool
	Fired    bool
}

// Eligible reports whether the slot may be claimed.
func (c Candidate) Eligible() bool { return c.InWindow && !c.Fired }

// Explain evaluates every calendar hour against now and the ledger.
func Explain(now time.Time, cal *Calendar, led *Ledger) []Candidate {
	local := cal.Local(now)
	today := DayOf(local)
	out := make([]Candidate, 0, len(cal.hours))
	for _, h := range cal.hours {
		delta := local.Sub(today.At(h, cal.loc))
		out = append(out, Candidate{
			Hour:     h,
			Delta:    delta,
			InWindow: abs(delta) <= cal.tolerance,
			Fired:    led != nil && led.Fired(today, h),
		})
	}
	return out
}

// Select picks the eligible slot closest to now.
//
// On equal distance a slot that already passed (delta >= 0) wins over one
// still in the future. It returns false when no slot is eligible.
func Select(now time.Time, cal *Calendar, led *Ledger) (int, bool) {
	var (
		best  Candidate
		found bool
	)
	for _, c := range Explain(now, cal, led) {
		if !c.Eligible() {
			continue
		}
		if !found || better(c, best) {
			best = c
			found = true
		}
	}
	return best.Hour, found
}

func better(a, b Candidate) bool {
	da, db := abs(a.Delta), abs(b.Delta)
	if da != db {
		return da < db
	}
	return a.Delta >= 0 && b.Delta < 0
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
