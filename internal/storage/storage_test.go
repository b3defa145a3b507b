package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"pollcaster/internal/slot"
	logx "pollcaster/pkg/logx"
)

func sampleState() State {
	d := slot.Day{Year: 2026, Month: time.October, Day: 14}
	return State{
		Posted: []slot.Key{{Day: d, Hour: 8}, {Day: d, Hour: 10}},
		Asked:  []string{"b1", "a2"},
	}
}

func assertState(t *testing.T, got, want State) {
	t.Helper()
	if len(got.Posted) != len(want.Posted) || len(got.Asked) != len(want.Asked) {
		t.Fatalf("state = %+v, want %+v", got, want)
	}
	for i := range want.Posted {
		if got.Posted[i] != want.Posted[i] {
			t.Fatalf("Posted[%d] = %v, want %v", i, got.Posted[i], want.Posted[i])
		}
	}
	for i := range want.Asked {
		if got.Asked[i] != want.Asked[i] {
			t.Fatalf("Asked[%d] = %q, want %q", i, got.Asked[i], want.Asked[i])
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	repo, err := Open(Config{Driver: "file", Path: "/state", Fs: fs}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	st, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load empty: %v", err)
	}
	if len(st.Posted) != 0 || len(st.Asked) != 0 {
		t.Fatalf("expected empty state, got %+v", st)
	}

	want := sampleState()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertState(t, got, want)

	b, err := afero.ReadFile(fs, "/state/state.json")
	if err != nil {
		t.Fatalf("read state.json: %v", err)
	}
	if string(b) != `{"posted":["2026-10-14-08","2026-10-14-10"]}` {
		t.Fatalf("state.json = %s", b)
	}
	if ok, _ := afero.Exists(fs, "/state/state.json.tmp"); ok {
		t.Fatal("temp file left behind")
	}
}

func TestFileStoreCorruptFilesLoadEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/s/state.json", []byte("{not json"), 0o644)
	_ = afero.WriteFile(fs, "/s/asked.json", []byte(`{"asked":["q1"]}`), 0o644)

	repo, err := Open(Config{Path: "/s", Fs: fs}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	st, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(st.Posted) != 0 {
		t.Fatalf("corrupt ledger should load empty, got %v", st.Posted)
	}
	if len(st.Asked) != 1 || st.Asked[0] != "q1" {
		t.Fatalf("tracker = %v", st.Asked)
	}
}

func TestFileStoreSkipsMalformedKeys(t *testing.T) {
	fs := afero.NewMemMapFs()
	_ = afero.WriteFile(fs, "/s/state.json", []byte(`{"posted":["2026-10-14-08","garbage"]}`), 0o644)
	repo, _ := Open(Config{Path: "/s", Fs: fs}, logx.Nop())
	st, _ := repo.Load(context.Background())
	if len(st.Posted) != 1 || st.Posted[0].Hour != 8 {
		t.Fatalf("Posted = %v", st.Posted)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	repo, err := Open(Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	want := sampleState()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertState(t, got, want)

	// A second save replaces, not appends.
	want.Asked = []string{"c3"}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = repo.Load(ctx)
	assertState(t, got, want)
}

func TestSQLiteCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pollcaster.db")
	garbage := []byte(strings.Repeat("this is not an sqlite database\n", 64))
	if err := os.WriteFile(path, garbage, 0o644); err != nil {
		t.Fatal(err)
	}

	repo, err := Open(Config{Driver: "sqlite", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open on corrupt file: %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	assertState(t, got, State{})

	want := sampleState()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ = repo.Load(ctx)
	assertState(t, got, want)

	moved, err := filepath.Glob(path + ".corrupt-*")
	if err != nil || len(moved) != 1 {
		t.Fatalf("corrupt copy = %v (%v)", moved, err)
	}
	b, err := os.ReadFile(moved[0])
	if err != nil || string(b) != string(garbage) {
		t.Fatalf("corrupt copy not preserved: %v", err)
	}
}

func TestFileLockExcludesSecondHolder(t *testing.T) {
	dir := t.TempDir()
	a, err := Open(Config{Path: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := Open(Config{Path: dir}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()

	release, err := a.Lock(ctx)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	if _, err := b.Lock(ctx); !errors.Is(err, ErrLocked) {
		t.Fatalf("second Lock err = %v, want ErrLocked", err)
	}
	if err := release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	release, err = b.Lock(ctx)
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	_ = release()
}

func TestMemoryLock(t *testing.T) {
	t.Parallel()
	m := NewMemory()
	ctx := context.Background()
	release, err := m.Lock(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Lock(ctx); !errors.Is(err, ErrLocked) {
		t.Fatalf("err = %v, want ErrLocked", err)
	}
	_ = release()
	_ = release()
	if _, err := m.Lock(ctx); err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "mongo"}, logx.Nop()); err == nil {
		t.Fatal("expected error")
	}
}
