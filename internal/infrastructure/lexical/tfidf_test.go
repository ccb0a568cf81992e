package lexical

import (
	"math"
	"testing"
)

func TestTFIDFVocabularyIsSortedCorpusTerms(t *testing.T) {
	m := NewTFIDF([]string{"banana apple", "apple cherry"})

	want := []string{"apple", "banana", "cherry"}
	if m.VocabSize() != len(want) {
		t.Fatalf("expected %d terms, got %d", len(want), m.VocabSize())
	}
	for i, tok := range want {
		if m.vocab[i] != tok {
			t.Fatalf("vocab[%d] = %q, want %q", i, m.vocab[i], tok)
		}
	}
}

func TestTFIDFQueryWeightsAreL2Normalised(t *testing.T) {
	m := NewTFIDF([]string{"alpha beta gamma", "beta gamma delta"})

	w := m.QueryWeights("alpha beta")
	var norm float64
	for _, v := range w {
		norm += v * v
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Fatalf("expected unit norm, got %.6f", norm)
	}
}

func TestTFIDFRarerTermWeighsMore(t *testing.T) {
	// "alpha" appears in one document, "beta" in both.
	m := NewTFIDF([]string{"alpha beta", "beta gamma"})

	w := m.QueryWeights("alpha beta")
	alpha := w[m.index["alpha"]]
	beta := w[m.index["beta"]]
	if alpha <= beta {
		t.Fatalf("expected rarer term to weigh more, alpha=%.4f beta=%.4f", alpha, beta)
	}
}

func TestTFIDFUnknownQueryTermsIgnored(t *testing.T) {
	m := NewTFIDF([]string{"alpha beta"})

	w := m.QueryWeights("omega zeta")
	for i, v := range w {
		if v != 0 {
			t.Fatalf("weights[%d] = %.4f for out-of-vocabulary query, want 0", i, v)
		}
	}
}

func TestTFIDFTokenizerDropsShortTokens(t *testing.T) {
	m := NewTFIDF([]string{"a I ok go xy"})

	// Single-character tokens are not part of the vocabulary.
	if m.VocabSize() != 3 {
		t.Fatalf("expected 3 terms (go, ok, xy), got %d", m.VocabSize())
	}
}

func TestTFIDFEmptyCorpus(t *testing.T) {
	m := NewTFIDF(nil)
	if w := m.QueryWeights("anything"); len(w) != 0 {
		t.Fatalf("expected empty weights, got %d", len(w))
	}
}
