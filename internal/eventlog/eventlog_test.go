package eventlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNopLoggerIsSilentAndSafe(t *testing.T) {
	l := Nop()
	l.Listen("127.0.0.1:6379", "")
	l.ConnectionAccepted(1, "127.0.0.1:5000")
	l.AuthResult(1, true, 1)
	l.ConnectionClosed(1)
	if err := l.Close(); err != nil {
		t.Fatalf("Close on nop logger: %v", err)
	}
}

func TestLoggerWritesJSONLEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l := New(true, path)
	defer l.Close()

	l.SessionCreated("my-session")
	l.PaneCreated("my-session", "my-pane")
	l.BridgeTickError("my-session", "my-pane", "write timed out")

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening log file: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 log lines, got %d: %v", len(lines), lines)
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("unmarshal first line: %v", err)
	}
	if first["event"] != "session_created" || first["session_id"] != "my-session" {
		t.Fatalf("first entry = %+v", first)
	}

	var third map[string]any
	if err := json.Unmarshal([]byte(lines[2]), &third); err != nil {
		t.Fatalf("unmarshal third line: %v", err)
	}
	if third["level"] != "warn" || third["event"] != "bridge_tick_error" {
		t.Fatalf("third entry = %+v", third)
	}
}

func TestParserDroppedSequenceIsDebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	l := New(true, path)
	defer l.Close()

	l.ParserDroppedSequence('Z', []int{1, 2})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data[:len(data)-1], &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["level"] != "debug" {
		t.Fatalf("level = %v, want debug", got["level"])
	}
}
