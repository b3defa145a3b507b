package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, b []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(string(b)), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("bad log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestWriterFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info").With(String("comp", "scheduler"))

	log.Debug("hidden")
	log.Info("poll published", Int("slot", 10), Err(errors.New("boom")))

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 1 {
		t.Fatalf("lines=%d, want 1", len(lines))
	}
	l := lines[0]
	if l["message"] != "poll published" || l["comp"] != "scheduler" || l["slot"] != float64(10) {
		t.Fatalf("line=%v", l)
	}
	if l["err"] != "boom" {
		t.Fatalf("err field=%v", l["err"])
	}
	if c, _ := l["caller"].(string); !strings.HasPrefix(c, "logger_test.go:") {
		t.Fatalf("caller=%v", l["caller"])
	}
}

func TestZeroAndNop(t *testing.T) {
	var zero Logger
	if !zero.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	zero.Info("ignored")

	if Nop().IsZero() {
		t.Fatal("Nop should not be zero")
	}
	var buf bytes.Buffer
	warn := NewWriter(&buf, "WARNING")
	warn.Info("dropped")
	warn.Warn("kept")
	if lines := decodeLines(t, buf.Bytes()); len(lines) != 1 || lines[0]["message"] != "kept" {
		t.Fatalf("lines=%v", lines)
	}
}

func TestServiceFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pollcaster.log")
	svc, log, err := New(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.With(String("run_id", "r1")).Debug("loaded state")
	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := decodeLines(t, b)
	if len(lines) != 1 || lines[0]["run_id"] != "r1" || lines[0]["level"] != "debug" {
		t.Fatalf("lines=%v", lines)
	}
}

func TestServiceFileSinkOpenFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "pollcaster.log")
	if _, _, err := New(Config{File: FileConfig{Enabled: true, Path: path}}); err == nil {
		t.Fatal("expected error for unwritable log path")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{
		"":        "info",
		"debug":   "debug",
		" ERROR ": "error",
		"warning": "warn",
		"loud":    "info",
	} {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
