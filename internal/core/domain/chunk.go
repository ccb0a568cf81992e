package domain

// Chunk is one retrievable unit of a role corpus. Index is the chunk's
// position in the owning corpus; it is the chunk's identity for the lexical
// and term-weight indices, so all three views must share one ordering.
// Dense hits coming back from a vector store carry Index -1 when the
// backend does not return the corpus position; fusion keys dense hits on
// Text, so a missing position is harmless.
type Chunk struct {
	Index    int               `json:"index"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// DocScore is a lexical retrieval hit: a corpus position plus its BM25L score.
type DocScore struct {
	Index int
	Score float64
}

// Candidate is a transient fusion entry, discarded once the query completes.
// Source records which retrieval signal contributed the entry.
type Candidate struct {
	Text   string
	Score  float64
	Source string
}

const (
	SourceDense  = "dense"
	SourceSparse = "sparse"
	SourceTFIDF  = "tfidf"
)
