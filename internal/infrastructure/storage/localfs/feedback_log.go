package localfs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// FeedbackLog appends feedback as one JSON object per line. The mutex keeps
// concurrent appends from interleaving partial lines.
type FeedbackLog struct {
	mu   sync.Mutex
	path string
}

func NewFeedbackLog(path string) (*FeedbackLog, error) {
	if path == "" {
		path = "./data/feedback_log.jsonl"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create feedback log dir: %w", err)
	}
	return &FeedbackLog{path: path}, nil
}

func (l *FeedbackLog) Append(fb domain.Feedback) error {
	line, err := json.Marshal(fb)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open feedback log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write feedback log: %w", err)
	}
	return nil
}
