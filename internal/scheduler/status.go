package scheduler

import (
	"context"
	"fmt"
	"time"

	"pollcaster/internal/content"
	"pollcaster/internal/slot"
	"pollcaster/internal/storage"
)

// Status is a read-only view of the scheduler at a given instant.
type Status struct {
	Now        time.Time
	Slots      []slot.Candidate
	FiredToday []int
	LedgerLen  int
	Retention  int

	PoolSize int
	Consumed int
	// Next is the poll the next run would publish (after any restart).
	Next        content.Item
	WouldReset  bool
	WouldSelect int
	HasSlot     bool
}

// Status loads state without taking the run lock and without writing.
func (r *Runner) Status(ctx context.Context, now time.Time) (Status, error) {
	st, err := r.repo.Load(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("load state: %w", err)
	}
	ledger := slot.LedgerFrom(st.Posted, r.retention)
	tracker := content.TrackerFrom(st.Asked)
	local := r.cal.Local(now)
	pool := r.Pool()

	out := Status{
		Now:        local,
		Slots:      slot.Explain(now, r.cal, ledger),
		FiredToday: ledger.FiredOn(slot.DayOf(local)),
		LedgerLen:  ledger.Len(),
		Retention:  ledger.Retention(),
		PoolSize:   pool.Len(),
		Consumed:   countInPool(pool, tracker),
	}
	out.WouldSelect, out.HasSlot = slot.Select(now, r.cal, ledger)
	// Pick mutates on restart; work on a copy.
	out.Next, out.WouldReset, _ = content.Pick(pool, tracker.Clone(), r.policy)
	return out, nil
}

// ResetRotation clears the delivered set so the next poll is the pool's
// first item. The ledger is kept.
func (r *Runner) ResetRotation(ctx context.Context) (cleared int, err error) {
	release, err := r.repo.Lock(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = release() }()

	st, err := r.repo.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load state: %w", err)
	}
	cleared = len(st.Asked)
	if err := r.repo.Save(ctx, storage.State{Posted: st.Posted, Asked: nil}); err != nil {
		return 0, err
	}
	r.metrics.Progress(0, r.Pool().Len())
	return cleared, nil
}

func countInPool(p *content.Pool, t *content.Tracker) int {
	n := 0
	for _, id := range t.IDs() {
		if _, ok := p.Lookup(id); ok {
			n++
		}
	}
	return n
}
