package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/vkotliar/gavel/internal/model"
)

func testStore(window int) *Store {
	return NewStore(model.MemoryConfig{Window: window, SessionTTL: 30})
}

func TestAppendAndTurns(t *testing.T) {
	s := testStore(5)
	id := NewSessionID()

	s.Append(id, "what was the verdict", "The accused was convicted.")
	s.Append(id, "and the sentence", "Twelve years imprisonment.")

	turns := s.Turns(id)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Query != "what was the verdict" {
		t.Errorf("turns out of order: first is %q", turns[0].Query)
	}
	if turns[1].Response != "Twelve years imprisonment." {
		t.Errorf("unexpected second response: %q", turns[1].Response)
	}
}

func TestWindowEvictsOldestFirst(t *testing.T) {
	s := testStore(5)
	id := NewSessionID()

	for i := 1; i <= 7; i++ {
		s.Append(id, fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
	}

	turns := s.Turns(id)
	if len(turns) != 5 {
		t.Fatalf("expected window of 5, got %d", len(turns))
	}
	if turns[0].Query != "question 3" {
		t.Errorf("expected oldest surviving turn to be question 3, got %q", turns[0].Query)
	}
	if turns[4].Query != "question 7" {
		t.Errorf("expected newest turn to be question 7, got %q", turns[4].Query)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	s := testStore(5)
	a, b := NewSessionID(), NewSessionID()

	s.Append(a, "q-a", "r-a")
	s.Append(b, "q-b", "r-b")

	if turns := s.Turns(a); len(turns) != 1 || turns[0].Query != "q-a" {
		t.Errorf("session a polluted: %+v", turns)
	}
	if turns := s.Turns(b); len(turns) != 1 || turns[0].Query != "q-b" {
		t.Errorf("session b polluted: %+v", turns)
	}
}

func TestUnknownSessionReturnsNil(t *testing.T) {
	s := testStore(5)
	if turns := s.Turns("no-such-session"); turns != nil {
		t.Errorf("expected nil for unknown session, got %+v", turns)
	}
}

func TestClear(t *testing.T) {
	s := testStore(5)
	id := NewSessionID()

	s.Append(id, "q", "r")
	s.Clear(id)

	if turns := s.Turns(id); len(turns) != 0 {
		t.Errorf("expected empty history after Clear, got %d turns", len(turns))
	}
}

func TestConcurrentAppendsNeverExceedWindow(t *testing.T) {
	s := testStore(5)
	id := NewSessionID()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.Append(id, fmt.Sprintf("q%d", n), fmt.Sprintf("r%d", n))
		}(i)
	}
	wg.Wait()

	if turns := s.Turns(id); len(turns) != 5 {
		t.Errorf("expected exactly 5 turns after concurrent appends, got %d", len(turns))
	}
}

func TestTurnsReturnsCopy(t *testing.T) {
	s := testStore(5)
	id := NewSessionID()

	s.Append(id, "q", "r")
	turns := s.Turns(id)
	turns[0].Response = "mutated"

	if fresh := s.Turns(id); fresh[0].Response != "r" {
		t.Error("caller mutation leaked into stored history")
	}
}
