package logx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestApplyFileSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log", "bot.log")
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	defer svc.Close()

	log.Info("hello", String("k", "v"))

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(b), `"message":"hello"`) || !strings.Contains(string(b), `"k":"v"`) {
		t.Fatalf("log file missing entry: %s", b)
	}
}

func TestApplyBadFilePathKeepsLogging(t *testing.T) {
	svc, log := New(Config{Level: "info", Console: true})
	defer svc.Close()

	// A path under a regular file cannot be created; the open fails and
	// Apply reports it through the previous sinks without panicking.
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatalf("write blocker: %v", err)
	}
	svc.Apply(Config{Level: "debug", File: FileConfig{Enabled: true, Path: filepath.Join(blocker, "bot.log")}})

	log.Info("still alive")
	if !log.Enabled(LevelDebug) {
		t.Fatal("level change was not applied")
	}
}
