package usecase

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

func TestFuseCandidatesOrdersByWeightedScore(t *testing.T) {
	sparse := &stubSparse{hits: []domain.DocScore{{Index: 0, Score: 3.0}, {Index: 1, Score: 1.0}}}
	terms := &stubTerms{weights: []float64{0.5, 0.2}}
	ci := corpusFor("analyst", nil, sparse, terms,
		"The sky is blue.",
		"Oceans are deep and blue.",
	)
	dense := []domain.Chunk{
		{Index: -1, Text: "The sky is blue."},
		{Index: -1, Text: "Oceans are deep and blue."},
	}

	got := fuseCandidates(ci, "why is the sky blue", dense, sparse.hits)
	if len(got) != 6 {
		t.Fatalf("expected 6 candidates, got %d", len(got))
	}

	wantTexts := []string{
		"The sky is blue.",          // sparse 0.3*3.0
		"The sky is blue.",          // dense 0.6, earlier insertion
		"Oceans are deep and blue.", // dense 0.6
		"Oceans are deep and blue.", // sparse 0.3*1.0
		"The sky is blue.",          // term boost 0.1*0.5
		"Oceans are deep and blue.", // term boost 0.1*0.2
	}
	wantScores := []float64{0.9, 0.6, 0.6, 0.3, 0.05, 0.02}
	for i, c := range got {
		if c.Text != wantTexts[i] {
			t.Fatalf("candidate %d text = %q, want %q", i, c.Text, wantTexts[i])
		}
		if math.Abs(c.Score-wantScores[i]) > 1e-9 {
			t.Fatalf("candidate %d score = %v, want %v", i, c.Score, wantScores[i])
		}
	}
	if got[0].Source != domain.SourceSparse || got[1].Source != domain.SourceDense {
		t.Fatalf("unexpected sources: %v %v", got[0].Source, got[1].Source)
	}
}

func TestFuseCandidatesBoostsOnlySurfacedTexts(t *testing.T) {
	sparse := &stubSparse{hits: []domain.DocScore{{Index: 0, Score: 2.0}}}
	terms := &stubTerms{weights: []float64{0.9, 0.9, 0.9}}
	ci := corpusFor("analyst", nil, sparse, terms, "first", "second", "third")

	got := fuseCandidates(ci, "first", nil, sparse.hits)
	if len(got) != 2 {
		t.Fatalf("expected sparse hit plus its term boost, got %d candidates", len(got))
	}
	for _, c := range got {
		if c.Text != "first" {
			t.Fatalf("unsurfaced text leaked into candidates: %q", c.Text)
		}
	}
}

func TestFuseCandidatesTextEqualityCountsDuplicateChunks(t *testing.T) {
	sparse := &stubSparse{hits: []domain.DocScore{{Index: 0, Score: 1.0}}}
	terms := &stubTerms{weights: []float64{0.4, 0.4, 0.4}}
	ci := corpusFor("analyst", nil, sparse, terms, "dup", "other", "dup")

	got := fuseCandidates(ci, "dup", nil, sparse.hits)
	// One sparse entry plus a term boost for each corpus position holding the
	// surfaced text.
	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	boosts := 0
	for _, c := range got {
		if c.Source == domain.SourceTFIDF {
			boosts++
		}
	}
	if boosts != 2 {
		t.Fatalf("expected 2 term boost entries, got %d", boosts)
	}
}

func TestFuseCandidatesCapsWindow(t *testing.T) {
	texts := make([]string, 8)
	hits := make([]domain.DocScore, 8)
	for i := range texts {
		texts[i] = fmt.Sprintf("chunk %d", i)
		hits[i] = domain.DocScore{Index: i, Score: float64(8 - i)}
	}
	sparse := &stubSparse{hits: hits}
	terms := &stubTerms{weights: make([]float64, 8)}
	ci := corpusFor("analyst", nil, sparse, terms, texts...)
	dense := chunksOf(texts[:4]...)

	got := fuseCandidates(ci, "chunk", dense, hits)
	if len(got) != fusionWindow {
		t.Fatalf("expected window of %d, got %d", fusionWindow, len(got))
	}
}

func TestFuseCandidatesSkipsOutOfRangeSparseIndex(t *testing.T) {
	sparse := &stubSparse{hits: []domain.DocScore{{Index: 5, Score: 9.0}, {Index: 0, Score: 1.0}}}
	ci := corpusFor("analyst", nil, sparse, nil, "only")

	got := fuseCandidates(ci, "only", nil, sparse.hits)
	if len(got) != 2 {
		t.Fatalf("expected in-range hit plus boost, got %d", len(got))
	}
	if got[0].Text != "only" {
		t.Fatalf("candidate text = %q", got[0].Text)
	}
}

func TestFuseCandidatesDeterministic(t *testing.T) {
	sparse := &stubSparse{hits: []domain.DocScore{{Index: 0, Score: 2.0}, {Index: 1, Score: 2.0}}}
	terms := &stubTerms{weights: []float64{0.3, 0.3}}
	ci := corpusFor("analyst", nil, sparse, terms, "first text", "second text")
	dense := chunksOf("first text", "second text")

	a := fuseCandidates(ci, "text", dense, sparse.hits)
	b := fuseCandidates(ci, "text", dense, sparse.hits)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("fusion output differs across identical runs:\n%v\n%v", a, b)
	}
}
