package redteam

import (
	"fmt"
	"testing"

	"github.com/verisight-labs/verisight/internal/domain"
)

func entry(i int) domain.CritiqueEntry {
	return domain.CritiqueEntry{FileHash: fmt.Sprintf("hash-%d", i), ChallengeCount: i}
}

func TestHistory_BoundedByCapacity(t *testing.T) {
	h := NewHistory(3)

	for i := 1; i <= 5; i++ {
		h.Append(entry(i))
	}

	if h.Len() != 3 {
		t.Fatalf("expected length 3 after overflow, got %d", h.Len())
	}

	recent := h.Recent(3)
	if len(recent) != 3 {
		t.Fatalf("expected 3 recent entries, got %d", len(recent))
	}
	for i, want := range []string{"hash-3", "hash-4", "hash-5"} {
		if recent[i].FileHash != want {
			t.Fatalf("recent[%d] = %s, want %s", i, recent[i].FileHash, want)
		}
	}
}

func TestHistory_RecentBeforeFull(t *testing.T) {
	h := NewHistory(10)
	h.Append(entry(1))
	h.Append(entry(2))

	if h.Len() != 2 {
		t.Fatalf("expected length 2, got %d", h.Len())
	}

	recent := h.Recent(5)
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries when asking for more than stored, got %d", len(recent))
	}
	if recent[0].FileHash != "hash-1" || recent[1].FileHash != "hash-2" {
		t.Fatalf("expected chronological order, got %+v", recent)
	}
}

func TestHistory_RecentWindow(t *testing.T) {
	h := NewHistory(4)
	for i := 1; i <= 6; i++ {
		h.Append(entry(i))
	}

	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].FileHash != "hash-5" || recent[1].FileHash != "hash-6" {
		t.Fatalf("expected the two newest entries in order, got %+v", recent)
	}
}

func TestHistory_NonPositiveCapacityUsesDefault(t *testing.T) {
	h := NewHistory(0)
	if len(h.entries) != DefaultHistorySize {
		t.Fatalf("expected default capacity %d, got %d", DefaultHistorySize, len(h.entries))
	}

	h = NewHistory(-5)
	if len(h.entries) != DefaultHistorySize {
		t.Fatalf("expected default capacity %d, got %d", DefaultHistorySize, len(h.entries))
	}
}
