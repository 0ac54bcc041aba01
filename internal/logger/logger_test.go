package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "bingo.log")
	log, cleanup, err := New(Config{Path: path, Level: "info"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	log.Infow("draw.advanced", "number", 42)
	log.Debugw("hidden", "number", 1)
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"draw.advanced"`) || !strings.Contains(out, `"number":42`) {
		t.Fatalf("expected structured entry, got %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug entry to be filtered: %s", out)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(Config{Level: "loud"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
