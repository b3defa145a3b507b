package scheduler

import (
	"context"
	"testing"

	"pollcaster/internal/content"
	"pollcaster/internal/slot"
	"pollcaster/internal/storage"
)

func TestStatusIsReadOnly(t *testing.T) {
	f := newFixture(t, mustPool(t, "Q1", "Q2"), content.PolicyReset)
	ctx := context.Background()
	if _, err := f.runner.Run(ctx, at(10, 0, 0)); err != nil {
		t.Fatal(err)
	}
	saves := f.repo.Saves()

	st, err := f.runner.Status(ctx, at(16, 1, 0))
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !st.HasSlot || st.WouldSelect != 16 {
		t.Fatalf("would select %d (%v)", st.WouldSelect, st.HasSlot)
	}
	if st.Next.ID != "Q2" || st.WouldReset {
		t.Fatalf("next=%q reset=%v", st.Next.ID, st.WouldReset)
	}
	if st.Consumed != 1 || st.PoolSize != 2 || st.LedgerLen != 1 {
		t.Fatalf("status=%+v", st)
	}
	if len(st.FiredToday) != 1 || st.FiredToday[0] != 10 {
		t.Fatalf("fired today=%v", st.FiredToday)
	}
	if len(st.Slots) != 3 {
		t.Fatalf("slots=%v", st.Slots)
	}
	if f.repo.Saves() != saves {
		t.Fatal("status wrote state")
	}
}

func TestStatusPredictsRestart(t *testing.T) {
	f := newFixture(t, mustPool(t, "Q1"), content.PolicyReset)
	ctx := context.Background()
	f.repo.Save(ctx, storage.State{Asked: []string{"Q1", "stale"}})

	st, err := f.runner.Status(ctx, at(12, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if !st.WouldReset || st.Next.ID != "Q1" || st.HasSlot {
		t.Fatalf("status=%+v", st)
	}
	if st.Consumed != 1 {
		t.Fatalf("consumed=%d, want only ids present in pool", st.Consumed)
	}
	got, _ := f.repo.Load(ctx)
	if len(got.Asked) != 2 {
		t.Fatalf("tracker mutated: %v", got.Asked)
	}
}

func TestResetRotationKeepsLedger(t *testing.T) {
	f := newFixture(t, mustPool(t, "Q1", "Q2"), content.PolicyReset)
	ctx := context.Background()
	for _, h := range []int{10, 16} {
		if _, err := f.runner.Run(ctx, at(h, 0, 0)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := f.runner.ResetRotation(ctx)
	if err != nil {
		t.Fatalf("ResetRotation: %v", err)
	}
	if n != 2 {
		t.Fatalf("cleared=%d", n)
	}
	st, _ := f.repo.Load(ctx)
	if len(st.Asked) != 0 || len(st.Posted) != 2 {
		t.Fatalf("state=%+v", st)
	}

	res, err := f.runner.Run(ctx, at(22, 0, 0))
	if err != nil {
		t.Fatal(err)
	}
	if res.ItemID != "Q1" || res.Restarted {
		t.Fatalf("res=%+v", res)
	}
	if !slot.LedgerFrom(st.Posted, 0).Fired(slot.Day{Year: 2024, Month: 5, Day: 1}, 10) {
		t.Fatal("ledger lost 10:00")
	}
}
