package usecase

import (
	"fmt"
	"math"
	"strings"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

const (
	historyMaxMessages = 2
	historyDecay       = 0.9
)

// weightHistory renders the most recent turns as a decay-weighted text
// fragment: the newest turn gets weight 1.0, each older one decay^i, each
// formatted "w * content", re-joined in chronological order. The fragment is
// concatenated onto the raw query as a text-level nudge; it never filters
// documents.
func weightHistory(turns []domain.Turn, maxMessages int, decay float64) string {
	if maxMessages <= 0 || len(turns) == 0 {
		return ""
	}

	recent := turns
	if len(recent) > maxMessages {
		recent = recent[len(recent)-maxMessages:]
	}

	weighted := make([]string, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		age := len(recent) - 1 - i
		weight := math.Pow(decay, float64(age))
		weighted[i] = fmt.Sprintf("%.2f * %s", weight, recent[i].Content)
	}
	return strings.Join(weighted, " ")
}
