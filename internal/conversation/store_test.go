package conversation

import (
	"fmt"
	"sync"
	"testing"
)

func TestAppendExchange_PairStored(t *testing.T) {
	s := NewStore(20)
	s.AppendExchange("conv-1", "hello", "hi there")

	entries := s.Recent("conv-1", 8)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Role != RoleUser || entries[0].Content != "hello" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Role != RoleAssistant || entries[1].Content != "hi there" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestAppendExchange_SlidingWindow(t *testing.T) {
	s := NewStore(20)
	for i := 0; i < 15; i++ {
		s.AppendExchange("conv-1", fmt.Sprintf("user-%d", i), fmt.Sprintf("assistant-%d", i))
	}

	if got := s.Len("conv-1"); got != 20 {
		t.Fatalf("expected history trimmed to 20 entries, got %d", got)
	}

	entries := s.Recent("conv-1", 0)
	// Oldest exchanges evicted first; newest always retained.
	if entries[0].Content != "user-5" {
		t.Errorf("expected oldest surviving entry user-5, got %s", entries[0].Content)
	}
	if entries[len(entries)-1].Content != "assistant-14" {
		t.Errorf("expected newest entry assistant-14, got %s", entries[len(entries)-1].Content)
	}
}

func TestAppendExchange_GrowthBelowLimit(t *testing.T) {
	s := NewStore(20)
	for i := 0; i < 7; i++ {
		before := s.Len("conv-1") / 2
		s.AppendExchange("conv-1", "u", "a")
		after := s.Len("conv-1") / 2
		if after != before+1 {
			t.Fatalf("expected %d exchanges, got %d", before+1, after)
		}
	}
}

func TestRecent_Limit(t *testing.T) {
	s := NewStore(20)
	for i := 0; i < 6; i++ {
		s.AppendExchange("conv-1", fmt.Sprintf("u%d", i), fmt.Sprintf("a%d", i))
	}

	entries := s.Recent("conv-1", 8)
	if len(entries) != 8 {
		t.Fatalf("expected 8 entries, got %d", len(entries))
	}
	// Chronological order, oldest first within the returned slice.
	if entries[0].Content != "u2" {
		t.Errorf("expected first returned entry u2, got %s", entries[0].Content)
	}
	if entries[7].Content != "a5" {
		t.Errorf("expected last returned entry a5, got %s", entries[7].Content)
	}
}

func TestRecent_UnknownConversation(t *testing.T) {
	s := NewStore(20)
	if entries := s.Recent("never-seen", 8); len(entries) != 0 {
		t.Errorf("expected empty history, got %d entries", len(entries))
	}
}

func TestClear_Idempotent(t *testing.T) {
	s := NewStore(20)
	s.AppendExchange("conv-1", "hello", "hi")

	s.Clear("conv-1")
	if s.Len("conv-1") != 0 {
		t.Error("expected conversation removed")
	}

	// Clearing again, or clearing an unknown id, is a no-op.
	s.Clear("conv-1")
	s.Clear("never-created")
	if s.Len("conv-1") != 0 {
		t.Error("expected conversation to stay empty")
	}
}

func TestStore_IndependentConversations(t *testing.T) {
	s := NewStore(20)
	s.AppendExchange("a", "question-a", "answer-a")
	s.AppendExchange("b", "question-b", "answer-b")

	if s.Len("a") != 2 || s.Len("b") != 2 {
		t.Fatal("expected independent histories")
	}
	s.Clear("a")
	if s.Len("b") != 2 {
		t.Error("clearing one conversation must not touch another")
	}
}

func TestStore_ConcurrentAppends(t *testing.T) {
	s := NewStore(200)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			s.AppendExchange("shared", fmt.Sprintf("u%d", n), fmt.Sprintf("a%d", n))
		}(i)
	}
	wg.Wait()

	entries := s.Recent("shared", 0)
	if len(entries) != 100 {
		t.Fatalf("expected 100 entries, got %d", len(entries))
	}
	// Pairs never interleave: entries alternate user/assistant with matching suffixes.
	for i := 0; i < len(entries); i += 2 {
		if entries[i].Role != RoleUser || entries[i+1].Role != RoleAssistant {
			t.Fatalf("exchange at %d interleaved: %+v %+v", i, entries[i], entries[i+1])
		}
		if entries[i].Content[1:] != entries[i+1].Content[1:] {
			t.Fatalf("mismatched pair at %d: %s / %s", i, entries[i].Content, entries[i+1].Content)
		}
	}
}

func TestNewStore_DefaultLimit(t *testing.T) {
	s := NewStore(0)
	for i := 0; i < 30; i++ {
		s.AppendExchange("conv", "u", "a")
	}
	if got := s.Len("conv"); got != 20 {
		t.Errorf("expected default limit of 20 entries, got %d", got)
	}
}
