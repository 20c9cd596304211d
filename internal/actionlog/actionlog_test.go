package actionlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesSortedDetails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	lg, err := NewLogger(Config{Enabled: true, Level: LevelDebug, FilePath: path, MaxSizeMB: 1, MaxFiles: 2, TitleLength: 50})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer lg.Close()

	lg.Log(ActionMove, 42, map[string]interface{}{
		"to":   "0:right",
		"from": "0:left",
	})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "[MOVE] window=42") {
		t.Fatalf("missing action header: %q", line)
	}
	// Detail keys come out alphabetically.
	if !strings.Contains(line, `from="0:left" to="0:right"`) {
		t.Fatalf("details not sorted: %q", line)
	}
}

func TestLogFiltersBelowLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	lg, err := NewLogger(Config{Enabled: true, Level: LevelInfo, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer lg.Close()

	// Focus logs at debug and is filtered out at info.
	lg.Log(ActionFocus, 42, nil)
	lg.Log(ActionRebalance, 0, nil)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if strings.Contains(string(data), "FOCUS") {
		t.Fatalf("debug action logged at info level: %q", string(data))
	}
	if !strings.Contains(string(data), "[REBALANCE]") {
		t.Fatalf("info action missing: %q", string(data))
	}
}

func TestDisabledLoggerIsNoOp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actions.log")
	lg, err := NewLogger(Config{Enabled: false, FilePath: path})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	lg.Log(ActionMove, 1, nil)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("disabled logger created a file")
	}
	var nilLogger *Logger
	nilLogger.Log(ActionMove, 1, nil) // must not panic
}

func TestRotateKeepsMaxFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "actions.log")
	lg, err := NewLogger(Config{Enabled: true, Level: LevelDebug, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer lg.Close()

	// Force rotation twice by faking an oversized file.
	lg.Log(ActionMove, 1, nil)
	lg.currentSize = 2 * 1024 * 1024
	lg.Log(ActionMove, 2, nil)
	lg.currentSize = 2 * 1024 * 1024
	lg.Log(ActionMove, 3, nil)

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("live log missing: %v", err)
	}
	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("first rotation missing: %v", err)
	}
	if _, err := os.Stat(path + ".2"); err != nil {
		t.Fatalf("second rotation missing: %v", err)
	}
	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Fatalf("rotation kept more files than configured")
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("got %q, want %q", got, "short")
	}
	if got := Truncate("a long window title", 6); got != "a long..." {
		t.Fatalf("got %q, want %q", got, "a long...")
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Fatalf("zero max should not truncate, got %q", got)
	}
}
