package content

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestItemIDStableDigest(t *testing.T) {
	t.Parallel()
	a := ItemID("", "Tea or coffee?", []string{"Tea", "Coffee"})
	b := ItemID("", "  Tea or coffee?  ", []string{" Tea", "Coffee "})
	if a != b {
		t.Fatalf("digest should ignore surrounding whitespace: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("digest length = %d, want 16", len(a))
	}
	if c := ItemID("", "Tea or coffee?", []string{"Coffee", "Tea"}); c == a {
		t.Fatal("choice order must change the digest")
	}
	if got := ItemID("  q-7 ", "x", nil); got != "q-7" {
		t.Fatalf("explicit id = %q", got)
	}
	if got := ItemID("   ", "Tea or coffee?", []string{"Tea", "Coffee"}); got != a {
		t.Fatal("blank explicit id should fall back to digest")
	}
}

func TestItemText(t *testing.T) {
	t.Parallel()
	it := NewItem("", "Best season?", []string{"Summer", "Winter"})
	if got := it.Text(); got != "Best season?\nSummer\nWinter" {
		t.Fatalf("Text = %q", got)
	}
}

func TestParseJSONPool(t *testing.T) {
	t.Parallel()
	data := `[
		{"id": 7, "question": "Cats or dogs?", "options": ["Cats", "Dogs"]},
		{"question": "Sea or mountain?", "options": ["Sea", "Mountain", "Both"]}
	]`
	p, err := Parse("questions.json", []byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	items := p.Items()
	if len(items) != 2 {
		t.Fatalf("len = %d", len(items))
	}
	if items[0].ID != "7" {
		t.Fatalf("numeric id = %q, want 7", items[0].ID)
	}
	if items[1].ID != ItemID("", "Sea or mountain?", []string{"Sea", "Mountain", "Both"}) {
		t.Fatal("derived id mismatch")
	}
	if _, ok := p.Lookup("7"); !ok {
		t.Fatal("Lookup(7) failed")
	}
}

func TestLoadYAMLPool(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "questions.yaml")
	data := "- question: Morning or night?\n  options: [Morning, Night]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if p.Len() != 1 || p.Items()[0].Choices[1] != "Night" {
		t.Fatalf("unexpected pool %+v", p.Items())
	}
}

func TestParseRejectsBadPools(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "empty list", data: `[]`, want: "empty"},
		{name: "empty file", data: ``, want: "empty"},
		{name: "one option", data: `[{"question":"q","options":["a"]}]`, want: "options"},
		{name: "five options", data: `[{"question":"q","options":["a","b","c","d","e"]}]`, want: "options"},
		{name: "blank question", data: `[{"question":" ","options":["a","b"]}]`, want: "question"},
		{name: "duplicate id", data: `[{"id":"a","question":"q","options":["a","b"]},{"id":"a","question":"r","options":["a","b"]}]`, want: "duplicate"},
		{name: "unknown field", data: `[{"question":"q","options":["a","b"],"answer":1}]`, want: "unknown field"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("q.json", []byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
	if _, err := Parse("q.yaml", []byte("- question: q\n  options: [a, b]\n  answer: a\n")); err == nil || !strings.Contains(err.Error(), "answer") {
		t.Fatalf("yaml unknown field: err = %v", err)
	}
	if _, err := Parse("q.yaml", nil); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("empty yaml: err = %v, want ErrEmptyPool", err)
	}
	if _, err := Parse("q.json", []byte(`[]`)); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestPoolFitChecksEndpointLimit(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("ş", 40)
	p, err := NewPool([]Item{NewItem("q1", "Which one?", []string{"short", long})})
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}

	tests := []struct {
		name    string
		limit   int
		wantErr bool
	}{
		{name: "x limit", limit: 25, wantErr: true},
		{name: "telegram limit", limit: 100},
		{name: "exact rune count", limit: 40},
		{name: "no limit", limit: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := p.Fit(tt.limit)
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "option 2 longer than 25") {
					t.Fatalf("err = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
