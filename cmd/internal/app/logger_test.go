package app

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "warn", want: slog.LevelWarn},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "unknown", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
	}

	for _, tc := range cases {
		got := parseLogLevel(tc.in)
		if got != tc.want {
			t.Fatalf("parseLogLevel(%q)=%v want=%v", tc.in, got, tc.want)
		}
	}
}

func TestNewLogger_Formats(t *testing.T) {
	t.Parallel()

	var jsonBuf, prettyBuf bytes.Buffer
	newLogger(&jsonBuf, "info", "json", false).Info("sweep.run", "deleted", 3)
	newLogger(&prettyBuf, "info", "pretty", false).Info("sweep.run", "deleted", 3)

	var rec map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &rec); err != nil {
		t.Fatalf("json handler output is not JSON: %q", jsonBuf.String())
	}
	if rec["msg"] != "sweep.run" {
		t.Fatalf("unexpected msg: %v", rec["msg"])
	}

	out := prettyBuf.String()
	if !strings.Contains(out, "msg=sweep.run") || !strings.Contains(out, "deleted=3") {
		t.Fatalf("unexpected pretty output: %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("color disabled but ANSI found: %q", out)
	}
}

func TestNewLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := newLogger(&buf, "warn", "json", false)
	log.Info("dropped")
	log.Warn("kept")

	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("level filter not applied: %q", buf.String())
	}
}
