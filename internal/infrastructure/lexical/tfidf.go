package lexical

import (
	"math"
	"sort"
	"unicode"
)

// TFIDF is a term-frequency / inverse-document-frequency model fitted over a
// corpus. It mirrors the common vectorizer defaults: lowercased tokens of at
// least two word characters, smoothed idf ln((1+N)/(1+df))+1, and an
// L2-normalised output vector.
//
// The pipeline consuming this model evaluates the fitted weighting on the
// query and reads the resulting vector off at each corpus document position.
// That is an approximation carried over from the system this replaces, not a
// per-document similarity, and it is kept intact for behavior parity.
type TFIDF struct {
	vocab []string
	index map[string]int
	idf   []float64
}

// NewTFIDF fits the model over corpus texts. The fitted vocabulary is the
// sorted set of corpus tokens; it must be built from the same chunk ordering
// as the BM25L index so document positions correspond.
func NewTFIDF(corpus []string) *TFIDF {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenizeWords(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	idf := make([]float64, len(vocab))
	n := float64(len(corpus))
	for i, tok := range vocab {
		index[tok] = i
		idf[i] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	return &TFIDF{vocab: vocab, index: index, idf: idf}
}

// QueryWeights evaluates the fitted model on the query and returns the
// L2-normalised tf-idf vector over the vocabulary. Callers indexing it by
// document position must treat positions beyond the vocabulary as zero.
func (t *TFIDF) QueryWeights(query string) []float64 {
	weights := make([]float64, len(t.vocab))
	if len(t.vocab) == 0 {
		return weights
	}

	for _, tok := range tokenizeWords(query) {
		if i, ok := t.index[tok]; ok {
			weights[i]++
		}
	}

	var norm float64
	for i := range weights {
		weights[i] *= t.idf[i]
		norm += weights[i] * weights[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range weights {
			weights[i] /= norm
		}
	}
	return weights
}

// VocabSize reports the number of fitted terms.
func (t *TFIDF) VocabSize() int {
	return len(t.vocab)
}

// tokenizeWords lowercases and extracts runs of word characters, dropping
// single-character tokens.
func tokenizeWords(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 16)
	runes := make([]rune, 0, 16)
	flush := func() {
		if len(runes) >= 2 {
			out = append(out, string(runes))
		}
		runes = runes[:0]
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			runes = append(runes, unicode.ToLower(r))
			continue
		}
		flush()
	}
	flush()
	return out
}
