package localfs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

func TestAppendWritesOneJSONLinePerRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	log, err := NewFeedbackLog(path)
	if err != nil {
		t.Fatalf("NewFeedbackLog() error = %v", err)
	}

	if err := log.Append(domain.Feedback{Query: "q", Answer: "a", Rating: 4}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := log.Append(domain.Feedback{Query: "q2", Answer: "a2", Rating: 1}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), raw)
	}
	want := `{"query":"q","answer":"a","feedback":4}`
	if lines[0] != want {
		t.Fatalf("line = %q, want %q", lines[0], want)
	}
}

func TestAppendCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "feedback.jsonl")
	log, err := NewFeedbackLog(path)
	if err != nil {
		t.Fatalf("NewFeedbackLog() error = %v", err)
	}
	if err := log.Append(domain.Feedback{Query: "q", Answer: "a", Rating: 5}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("log file missing: %v", err)
	}
}
