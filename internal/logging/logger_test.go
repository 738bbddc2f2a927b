package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestHelpersNoopBeforeSetup(t *testing.T) {
	Logger = nil
	Info("ignored")
	Warn("ignored", "k", "v")
	Error("ignored")
	Debug("ignored")
	if l := WithPrefix("x"); l == nil {
		t.Fatal("WithPrefix should never return nil")
	}
}

func TestSetupRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "warn"); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Info("hidden")
	Warn("favorites refresh failed", "err", "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "favorites refresh failed") || !strings.Contains(out, "err=boom") {
		t.Errorf("warn line missing: %s", out)
	}
}

func TestSetupRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestWithPrefix(t *testing.T) {
	var buf bytes.Buffer
	if err := Setup(&buf, "debug"); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	WithPrefix("poll").Debug("tick")
	if !strings.Contains(buf.String(), "poll") {
		t.Errorf("prefix missing: %s", buf.String())
	}
}
