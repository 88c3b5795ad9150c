package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupWriterLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	l := SetupWriter(&buf)
	l.Info("hidden")
	l.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Level failed: info record written: %s", out)
	}
	if !strings.Contains(out, "key=value") {
		t.Errorf("Text format failed: got %s", out)
	}
	if L() != l {
		t.Error("L failed: expected the configured logger")
	}
}

func TestSetupWriterJSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	var buf bytes.Buffer
	SetupWriter(&buf).Debug("layer opened", "layer", "rectangles")

	if !strings.Contains(buf.String(), `"layer":"rectangles"`) {
		t.Errorf("JSON format failed: got %s", buf.String())
	}
}
