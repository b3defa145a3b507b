package content

// Tracker is the ordered set of ids delivered since the last reset.
//
// Ids keep delivery order so the oldest can be evicted by the wrap policy.
type Tracker struct {
	ids   []string
	index map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{index: map[string]struct{}{}}
}

// TrackerFrom rebuilds a tracker from persisted ids (oldest first).
// Blank ids and duplicates are ignored.
func TrackerFrom(ids []string) *Tracker {
	t := NewTracker()
	for _, id := range ids {
		t.Add(id)
	}
	return t
}

func (t *Tracker) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

// Add records id as delivered. Re-adding a known id is a no-op.
func (t *Tracker) Add(id string) {
	if id == "" || t.Has(id) {
		return
	}
	t.index[id] = struct{}{}
	t.ids = append(t.ids, id)
}

// Reset forgets every id.
func (t *Tracker) Reset() {
	t.ids = nil
	t.index = map[string]struct{}{}
}

// EvictOldest drops the least-recently delivered id and returns it.
func (t *Tracker) EvictOldest() (string, bool) {
	if len(t.ids) == 0 {
		return "", false
	}
	id := t.ids[0]
	t.ids = append([]string(nil), t.ids[1:]...)
	delete(t.index, id)
	return id, true
}

// IDs returns the delivered ids, oldest first.
func (t *Tracker) IDs() []string { return append([]string(nil), t.ids...) }

func (t *Tracker) Len() int { return len(t.ids) }

// Clone returns an independent copy.
func (t *Tracker) Clone() *Tracker { return TrackerFrom(t.ids) }
