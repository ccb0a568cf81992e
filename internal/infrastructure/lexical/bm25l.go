package lexical

import (
	"math"
	"sort"
	"strings"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

// Default BM25L parameters. The retrieval pipeline overrides them from
// config; these apply when a caller passes zero values.
const (
	DefaultK1    = 1.5
	DefaultB     = 0.75
	DefaultDelta = 0.5
)

// BM25L scores documents with the length-normalised BM25 variant that adds a
// fixed delta for every query term present in a document, reducing the bias
// against long documents. Terms absent from a document contribute nothing,
// delta included. Immutable after construction.
type BM25L struct {
	k1    float64
	b     float64
	delta float64

	docFreqs  []map[string]int
	docLen    []int
	avgDocLen float64
	idf       map[string]float64
	size      int
}

// NewBM25L builds the index over corpus texts. Tokenization is plain
// whitespace splitting, no stemming or stopwording; document order defines
// document identity.
func NewBM25L(corpus []string, k1, b, delta float64) *BM25L {
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b <= 0 {
		b = DefaultB
	}
	if delta < 0 {
		delta = DefaultDelta
	}

	idx := &BM25L{
		k1:       k1,
		b:        b,
		delta:    delta,
		docFreqs: make([]map[string]int, 0, len(corpus)),
		docLen:   make([]int, 0, len(corpus)),
		idf:      make(map[string]float64),
		size:     len(corpus),
	}

	totalLen := 0
	docCount := make(map[string]int)
	for _, doc := range corpus {
		words := strings.Fields(doc)
		idx.docLen = append(idx.docLen, len(words))
		totalLen += len(words)

		freqs := make(map[string]int, len(words))
		for _, w := range words {
			freqs[w]++
		}
		idx.docFreqs = append(idx.docFreqs, freqs)
		for w := range freqs {
			docCount[w]++
		}
	}
	if idx.size > 0 {
		idx.avgDocLen = float64(totalLen) / float64(idx.size)
	}

	n := float64(idx.size)
	for w, df := range docCount {
		idx.idf[w] = math.Log((n - float64(df) + 0.5) / (float64(df) + 0.5))
	}
	return idx
}

// Scores returns one score per corpus document, in corpus order. Query terms
// are counted per occurrence, matching the build-side tokenization.
func (idx *BM25L) Scores(query string) []float64 {
	scores := make([]float64, idx.size)
	if idx.size == 0 {
		return scores
	}

	queryWords := strings.Fields(query)
	for i := 0; i < idx.size; i++ {
		norm := idx.k1 * (1 - idx.b + idx.b*float64(idx.docLen[i])/idx.avgDocLen)
		for _, w := range queryWords {
			freq, ok := idx.docFreqs[i][w]
			if !ok {
				continue
			}
			f := float64(freq)
			scores[i] += idx.idf[w]*f*(idx.k1+1)/(f+norm) + idx.delta
		}
	}
	return scores
}

// Retrieve returns the topK documents by descending score. Ties keep the
// lower document index first so identical inputs always rank identically.
func (idx *BM25L) Retrieve(query string, topK int) []domain.DocScore {
	if topK <= 0 || idx.size == 0 {
		return nil
	}

	scores := idx.Scores(query)
	out := make([]domain.DocScore, idx.size)
	for i, s := range scores {
		out[i] = domain.DocScore{Index: i, Score: s}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out
}

// Size reports the number of indexed documents.
func (idx *BM25L) Size() int {
	return idx.size
}
