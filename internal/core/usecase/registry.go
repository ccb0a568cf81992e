package usecase

import (
	"github.com/athenus-project/rag-engine/internal/core/domain"
	"github.com/athenus-project/rag-engine/internal/core/ports"
)

// CorpusIndex bundles one role's ordered chunks with the indices derived
// from them. All three views share the same chunk ordering: position i in
// Chunks is document i for both Sparse and Terms. Built once at startup,
// read-only afterwards.
type CorpusIndex struct {
	Role   string
	Chunks []domain.Chunk
	Sparse ports.SparseIndex
	Terms  ports.TermWeightIndex
	Dense  ports.DenseRetriever
}

// RoleCorpusRegistry maps role names to their corpora. Populated during
// bootstrap and never mutated after, so concurrent readers need no locking.
type RoleCorpusRegistry struct {
	defaultRole string
	corpora     map[string]*CorpusIndex
	configured  map[string]struct{}
}

func NewRoleCorpusRegistry(defaultRole string) *RoleCorpusRegistry {
	return &RoleCorpusRegistry{
		defaultRole: defaultRole,
		corpora:     make(map[string]*CorpusIndex),
		configured:  make(map[string]struct{}),
	}
}

// MarkConfigured records that a role exists in configuration even if its
// corpus could not be built. Such roles resolve to "unavailable" instead of
// silently borrowing the default corpus.
func (r *RoleCorpusRegistry) MarkConfigured(role string) {
	r.configured[role] = struct{}{}
}

// Register adds a successfully built corpus.
func (r *RoleCorpusRegistry) Register(ci *CorpusIndex) {
	r.configured[ci.Role] = struct{}{}
	r.corpora[ci.Role] = ci
}

// Resolve returns the corpus serving the requested role. Unknown roles fall
// back to the default role; substituted reports when that happened. A role
// that is configured but has no loaded corpus resolves to ErrRoleUnavailable,
// as does a missing default.
func (r *RoleCorpusRegistry) Resolve(role string) (ci *CorpusIndex, substituted bool, err error) {
	if ci, ok := r.corpora[role]; ok {
		return ci, false, nil
	}
	if _, ok := r.configured[role]; ok {
		return nil, false, domain.ErrRoleUnavailable
	}

	ci, ok := r.corpora[r.defaultRole]
	if !ok {
		return nil, false, domain.ErrRoleUnavailable
	}
	return ci, true, nil
}

// DefaultRole reports the configured fallback role.
func (r *RoleCorpusRegistry) DefaultRole() string {
	return r.defaultRole
}

// Roles lists the roles with a usable corpus.
func (r *RoleCorpusRegistry) Roles() []string {
	out := make([]string, 0, len(r.corpora))
	for role := range r.corpora {
		out = append(out, role)
	}
	return out
}
