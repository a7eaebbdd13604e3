package logger

import (
	"bytes"
	"os"
	"strings"
	"testing"
	"time"
)

func reset() {
	SetVerbose(false)
	SetOutput(os.Stderr)
	now = time.Now
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false initially")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("chunked %d documents", 3)

	if got := buf.String(); got != "[DEBUG] chunked 3 documents\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestQuietWhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("debug")
	Info("info")
	Section("section")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Retrieve")

	if got := buf.String(); got != "\n=== Retrieve ===\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestWarn_AlwaysPrints(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("document %s no longer available", "d1")

	if got := buf.String(); got != "[WARN] document d1 no longer available\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestTimed(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(1500 * time.Millisecond)
	}

	stop := Timed("rebuild")
	stop()

	if got := buf.String(); !strings.Contains(got, "[DEBUG] rebuild took 1.5s") {
		t.Errorf("unexpected output %q", got)
	}
}
