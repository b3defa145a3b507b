package content

import (
	"errors"
	"testing"
)

func testPool(t *testing.T, n int) *Pool {
	t.Helper()
	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, NewItem("", "Question "+string(rune('A'+i)), []string{"yes", "no"}))
	}
	p, err := NewPool(items)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return p
}

func TestPickNextIsDeterministic(t *testing.T) {
	t.Parallel()
	p := testPool(t, 3)
	tr := NewTracker()
	a, ok := PickNext(p, tr)
	if !ok {
		t.Fatal("expected an item")
	}
	b, _ := PickNext(p, tr)
	if a.ID != b.ID {
		t.Fatalf("PickNext not deterministic: %s vs %s", a.ID, b.ID)
	}
	if a.ID != p.Items()[0].ID {
		t.Fatal("expected first pool item")
	}
}

func TestRotationVisitsPoolInOrder(t *testing.T) {
	t.Parallel()
	p := testPool(t, 4)
	tr := NewTracker()
	seen := map[string]bool{}
	for i, want := range p.Items() {
		it, restarted, ok := Pick(p, tr, PolicyReset)
		if !ok || restarted {
			t.Fatalf("pick %d: ok=%v restarted=%v", i, ok, restarted)
		}
		if it.ID != want.ID {
			t.Fatalf("pick %d: got %s, want %s", i, it.ID, want.ID)
		}
		if seen[it.ID] {
			t.Fatalf("pick %d: repeated %s", i, it.ID)
		}
		seen[it.ID] = true
		tr.Add(it.ID)
	}
	if _, ok := PickNext(p, tr); ok {
		t.Fatal("expected pool to be exhausted")
	}
}

func TestPickResetRestartsAtFirstItem(t *testing.T) {
	t.Parallel()
	p := testPool(t, 3)
	tr := TrackerFrom([]string{p.Items()[0].ID, p.Items()[1].ID, p.Items()[2].ID})

	it, restarted, ok := Pick(p, tr, PolicyReset)
	if !ok || !restarted {
		t.Fatalf("ok=%v restarted=%v", ok, restarted)
	}
	if it.ID != p.Items()[0].ID {
		t.Fatalf("got %s, want first item", it.ID)
	}
	if tr.Len() != 0 {
		t.Fatalf("tracker should be empty after reset, has %v", tr.IDs())
	}
	tr.Add(it.ID)
	if got := tr.IDs(); len(got) != 1 || got[0] != it.ID {
		t.Fatalf("tracker = %v, want [%s]", got, it.ID)
	}
}

func TestPickWrapEvictsLeastRecent(t *testing.T) {
	t.Parallel()
	p := testPool(t, 3)
	ids := []string{p.Items()[1].ID, p.Items()[0].ID, p.Items()[2].ID}
	tr := TrackerFrom(append([]string{"gone"}, ids...))

	it, restarted, ok := Pick(p, tr, PolicyWrap)
	if !ok || !restarted {
		t.Fatalf("ok=%v restarted=%v", ok, restarted)
	}
	// "gone" is not in the pool and is skipped; item 1 was delivered first.
	if it.ID != ids[0] {
		t.Fatalf("got %s, want %s", it.ID, ids[0])
	}
	if tr.Len() != 2 || tr.Has("gone") {
		t.Fatalf("tracker = %v", tr.IDs())
	}
}

func TestSingleItemPoolResets(t *testing.T) {
	t.Parallel()
	p := testPool(t, 1)
	q1 := p.Items()[0].ID
	tr := TrackerFrom([]string{q1})
	it, restarted, ok := Pick(p, tr, PolicyReset)
	if !ok || !restarted || it.ID != q1 {
		t.Fatalf("Pick = (%s, %v, %v)", it.ID, restarted, ok)
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()
	for raw, want := range map[string]Policy{"": PolicyReset, "RESET": PolicyReset, " wrap ": PolicyWrap} {
		got, err := ParsePolicy(raw)
		if err != nil || got != want {
			t.Fatalf("ParsePolicy(%q) = (%q, %v), want %q", raw, got, err, want)
		}
	}
	if _, err := ParsePolicy("shuffle"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewPoolRejectsEmpty(t *testing.T) {
	t.Parallel()
	if _, err := NewPool(nil); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("err = %v, want ErrEmptyPool", err)
	}
}
