package usecase

import (
	"container/heap"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// Fusion heuristics. Dense hits are trusted uniformly inside their top-k
// window; sparse hits scale with their BM25L score; the term-weight boost
// only re-scores texts already surfaced by a primary signal. The constants
// are fixed, not tuned per call.
const (
	denseContribution = 0.6
	sparseWeight      = 0.3
	termBoostWeight   = 0.1

	fusionWindow   = 10
	contextResults = 5
)

// fusionEntry keys the heap by negated weighted score so the heap top is the
// most negative entry, i.e. the strongest candidate. seq breaks ties by
// insertion order to keep identical inputs producing identical output.
type fusionEntry struct {
	negScore float64
	text     string
	source   string
	seq      int
}

type fusionHeap []fusionEntry

func (h fusionHeap) Len() int { return len(h) }

func (h fusionHeap) Less(i, j int) bool {
	if h[i].negScore != h[j].negScore {
		return h[i].negScore < h[j].negScore
	}
	return h[i].seq < h[j].seq
}

func (h fusionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *fusionHeap) Push(x any) { *h = append(*h, x.(fusionEntry)) }

func (h *fusionHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	*h = old[:n-1]
	return entry
}

// fuseCandidates merges dense and sparse hits into the bounded candidate set
// handed to reranking, ordered by descending fused score. Membership for the
// term-weight boost is by chunk text equality, so two distinct chunks with
// identical text count as one already-surfaced candidate.
func fuseCandidates(ci *CorpusIndex, combinedQuery string, dense []domain.Chunk, sparse []domain.DocScore) []domain.Candidate {
	h := make(fusionHeap, 0, len(dense)+len(sparse)+len(ci.Chunks))
	seq := 0
	seen := make(map[string]struct{}, len(dense)+len(sparse))

	push := func(negScore float64, text, source string) {
		heap.Push(&h, fusionEntry{negScore: negScore, text: text, source: source, seq: seq})
		seq++
		seen[text] = struct{}{}
	}

	for _, chunk := range dense {
		push(-denseContribution, chunk.Text, domain.SourceDense)
	}
	for _, hit := range sparse {
		if hit.Index < 0 || hit.Index >= len(ci.Chunks) {
			continue
		}
		push(-sparseWeight*hit.Score, ci.Chunks[hit.Index].Text, domain.SourceSparse)
	}

	// Re-score texts already collected with their query term weight read off
	// at the document's corpus position. Documents never surfaced by a
	// primary signal are not added here.
	weights := ci.Terms.QueryWeights(combinedQuery)
	for idx, chunk := range ci.Chunks {
		if _, ok := seen[chunk.Text]; !ok {
			continue
		}
		var w float64
		if idx < len(weights) {
			w = weights[idx]
		}
		heap.Push(&h, fusionEntry{negScore: -termBoostWeight * w, text: chunk.Text, source: domain.SourceTFIDF, seq: seq})
		seq++
	}

	limit := fusionWindow
	if h.Len() < limit {
		limit = h.Len()
	}
	out := make([]domain.Candidate, 0, limit)
	for i := 0; i < limit; i++ {
		entry := heap.Pop(&h).(fusionEntry)
		out = append(out, domain.Candidate{
			Text:   entry.text,
			Score:  -entry.negScore,
			Source: entry.source,
		})
	}
	return out
}
