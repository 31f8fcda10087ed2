package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"verbose", InfoLevel}, // unknown falls back to info
	}
	for _, tc := range cases {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New(WarnLevel, "json", &buf))
	defer SetDefault(nil)

	Debug("hidden debug")
	Info("hidden info")
	Warn("visible warn")
	Error("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-threshold lines must be suppressed, got %q", out)
	}
	if !strings.Contains(out, "[WARN] visible warn") {
		t.Errorf("warn line missing, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] visible error") {
		t.Errorf("error line missing, got %q", out)
	}
}

func TestLogger_Formatting(t *testing.T) {
	var buf bytes.Buffer
	SetDefault(New(DebugLevel, "json", &buf))
	defer SetDefault(nil)

	Info("serving %d clusters at zoom %.1f", 12, 4.5)
	if !strings.Contains(buf.String(), "serving 12 clusters at zoom 4.5") {
		t.Errorf("formatted output missing, got %q", buf.String())
	}
}

func TestLogger_NilDefaultIsSafe(t *testing.T) {
	SetDefault(nil)
	// Must not panic when no logger is installed.
	Debug("dropped")
	Info("dropped")
	Warn("dropped")
	Error("dropped")
}
