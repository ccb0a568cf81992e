package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/athenus-project/rag-engine/internal/core/domain"
)

func TestStoreGetCreatesOnFirstUse(t *testing.T) {
	store := NewStore()

	first := store.Get("user-1")
	second := store.Get("user-1")
	if first != second {
		t.Fatalf("expected the same session instance for one user")
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 session, got %d", store.Len())
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	store := NewStore()

	store.Get("alice").AppendUser("alice question")
	store.Get("bob").AppendUser("bob question")

	aliceTurns := store.Get("alice").Turns()
	if len(aliceTurns) != 1 || aliceTurns[0].Content != "alice question" {
		t.Fatalf("alice history contaminated: %+v", aliceTurns)
	}
	bobTurns := store.Get("bob").Turns()
	if len(bobTurns) != 1 || bobTurns[0].Content != "bob question" {
		t.Fatalf("bob history contaminated: %+v", bobTurns)
	}
}

func TestAppendUserReturnsConsistentSnapshot(t *testing.T) {
	sess := NewStore().Get("u")

	snapshot := sess.AppendUser("first")
	sess.AppendAssistant("reply")

	if len(snapshot) != 1 {
		t.Fatalf("snapshot grew after later appends: %+v", snapshot)
	}
	if snapshot[0].Role != domain.TurnRoleUser {
		t.Fatalf("expected user turn, got %q", snapshot[0].Role)
	}
}

func TestConcurrentAppendsDoNotCorruptHistory(t *testing.T) {
	store := NewStore()
	const writers = 16

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			store.Get("shared").AppendUser(fmt.Sprintf("turn-%d", n))
		}(i)
	}
	wg.Wait()

	turns := store.Get("shared").Turns()
	if len(turns) != writers {
		t.Fatalf("expected %d turns, got %d", writers, len(turns))
	}
	seen := make(map[string]struct{}, writers)
	for _, turn := range turns {
		if turn.Content == "" {
			t.Fatalf("found empty turn after concurrent appends")
		}
		if _, dup := seen[turn.Content]; dup {
			t.Fatalf("duplicate turn %q", turn.Content)
		}
		seen[turn.Content] = struct{}{}
	}
}
