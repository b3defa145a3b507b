package content

import (
	"fmt"
	"strings"
)

// Policy decides how an exhausted pool restarts.
type Policy string

const (
	// PolicyReset clears the tracker so rotation restarts at the first item.
	PolicyReset Policy = "reset"
	// PolicyWrap evicts only the least-recently delivered id.
	PolicyWrap Policy = "wrap"
)

// ParsePolicy accepts "reset" (also the empty default) or "wrap".
func ParsePolicy(raw string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyReset:
		return PolicyReset, nil
	case PolicyWrap:
		return PolicyWrap, nil
	default:
		return "", fmt.Errorf("unknown rotation policy %q (use reset or wrap)", raw)
	}
}

// PickNext returns the first pool item whose id the tracker has not seen.
// It returns false when every item was delivered.
func PickNext(p *Pool, t *Tracker) (Item, bool) {
	for _, it := range p.items {
		if !t.Has(it.ID) {
			return it, true
		}
	}
	return Item{}, false
}

// Pick is PickNext with the exhaustion policy applied once.
//
// restarted reports whether the tracker was reset or wrapped; the tracker is
// mutated in that case and the caller decides whether to persist it.
func Pick(p *Pool, t *Tracker, policy Policy) (it Item, restarted bool, ok bool) {
	if it, ok := PickNext(p, t); ok {
		return it, false, true
	}
	switch policy {
	case PolicyWrap:
		// Ids no longer in the pool would never be picked; skip past them.
		for {
			id, evicted := t.EvictOldest()
			if !evicted {
				break
			}
			if _, inPool := p.Lookup(id); inPool {
				break
			}
		}
	default:
		t.Reset()
	}
	it, ok = PickNext(p, t)
	return it, true, ok
}
