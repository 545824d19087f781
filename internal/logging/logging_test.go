package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	out := bytes.NewBufferString("")
	log := New(Options{Level: WarnLevel, Output: out})

	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")
	log.Error("error message", "key", "value")

	got := out.String()
	if strings.Contains(got, "debug message") || strings.Contains(got, "info message") {
		t.Errorf("expected messages below warn to be suppressed, got:\n%s", got)
	}
	if !strings.Contains(got, "warn message") || !strings.Contains(got, "error message") {
		t.Errorf("expected warn and error messages, got:\n%s", got)
	}
}

func TestNewJSONFormat(t *testing.T) {
	out := bytes.NewBufferString("")
	log := New(Options{Level: InfoLevel, Output: out, JSON: true})

	log.Info("workflow submitted", "name", "wf-1")

	got := out.String()
	if !strings.Contains(got, `"msg":"workflow submitted"`) {
		t.Errorf("expected JSON output, got:\n%s", got)
	}
	if !strings.Contains(got, `"name":"wf-1"`) {
		t.Errorf("expected key-value pair in JSON output, got:\n%s", got)
	}
}

func TestUnknownLevelDefaultsToInfo(t *testing.T) {
	out := bytes.NewBufferString("")
	log := New(Options{Level: Level("verbose"), Output: out})

	log.Debug("debug message")
	log.Info("info message")

	got := out.String()
	if strings.Contains(got, "debug message") {
		t.Errorf("expected debug to be suppressed at the default level, got:\n%s", got)
	}
	if !strings.Contains(got, "info message") {
		t.Errorf("expected info message, got:\n%s", got)
	}
}

func TestDiscard(t *testing.T) {
	// Must be safe to call on all levels without a destination.
	log := Discard()
	log.Debug("dropped")
	log.Info("dropped")
	log.Warn("dropped")
	log.Error("dropped")
}
