package slot

// DefaultRetention matches the historical state.json cap.
const DefaultRetention = 300

// Ledger records which (day, hour) pairs already fired.
//
// Entries are kept in insertion order; once more than the retention cap are
// held, the oldest are dropped. Trimming is by count, not calendar age: stale
// keys only matter for "already fired today" checks on recent days.
//
// Ledger is not safe for concurrent use.
type Ledger struct {
	keys  []Key
	index map[Key]struct{}
	cap   int
}

// NewLedger returns an empty ledger. A cap <= 0 means DefaultRetention.
func NewLedger(retention int) *Ledger {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Ledger{index: map[Key]struct{}{}, cap: retention}
}

// LedgerFrom rebuilds a ledger from persisted keys (oldest first).
// Duplicates are collapsed to their first occurrence and the cap is applied.
func LedgerFrom(keys []Key, retention int) *Ledger {
	l := NewLedger(retention)
	for _, k := range keys {
		l.add(k)
	}
	l.trim()
	return l
}

func (l *Ledger) Fired(day Day, hour int) bool {
	_, ok := l.index[Key{Day: day, Hour: hour}]
	return ok
}

// MarkFired records (day, hour). Marking an already recorded pair is a no-op.
func (l *Ledger) MarkFired(day Day, hour int) {
	if l.add(Key{Day: day, Hour: hour}) {
		l.trim()
	}
}

// Keys returns the retained keys, oldest first.
func (l *Ledger) Keys() []Key {
	return append([]Key(nil), l.keys...)
}

// FiredOn returns the hours recorded for day in insertion order.
func (l *Ledger) FiredOn(day Day) []int {
	var out []int
	for _, k := range l.keys {
		if k.Day == day {
			out = append(out, k.Hour)
		}
	}
	return out
}

func (l *Ledger) Len() int { return len(l.keys) }

func (l *Ledger) Retention() int { return l.cap }

func (l *Ledger) add(k Key) bool {
	if _, ok := l.index[k]; ok {
		return false
	}
	l.index[k] = struct{}{}
	l.keys = append(l.keys, k)
	return true
}

func (l *Ledger) trim() {
	if len(l.keys) <= l.cap {
		return
	}
	drop := len(l.keys) - l.cap
	for _, k := range l.keys[:drop] {
		delete(l.index, k)
	}
	l.keys = append([]Key(nil), l.keys[drop:]...)
}
