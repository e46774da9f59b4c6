package logger

import (
	"bytes"
	stdlog "log"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)

	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)
	log.Error("failed: %s", "boom")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at normal level: %q", out)
	}
	if !strings.Contains(out, "shown 2") || !strings.Contains(out, "failed: boom") {
		t.Errorf("missing info/error lines: %q", out)
	}
	if !strings.Contains(out, "INFO") || !strings.Contains(out, "ERROR") {
		t.Errorf("missing level tags: %q", out)
	}
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelOff, &buf)

	log.Error("nothing")
	if buf.Len() != 0 {
		t.Fatalf("expected no output when off, got %q", buf.String())
	}

	log.SetLevel(LevelVerbose)
	if log.GetLevel() != LevelVerbose {
		t.Fatalf("GetLevel = %d", log.GetLevel())
	}
	log.Debug("now visible")
	if !strings.Contains(buf.String(), "now visible") {
		t.Fatalf("debug not written in verbose mode: %q", buf.String())
	}
}

func TestZapCarriesStdLog(t *testing.T) {
	var buf bytes.Buffer
	log := New(LevelNormal, &buf)

	restore := zap.RedirectStdLog(log.Zap())
	stdlog.Print("from a library")
	restore()

	if !strings.Contains(buf.String(), "from a library") {
		t.Fatalf("std log line not routed through the logger: %q", buf.String())
	}
}
