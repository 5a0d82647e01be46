package redteam

import (
	"sync"

	"github.com/verisight-labs/verisight/internal/domain"
)

// DefaultHistorySize bounds the critique history ring buffer.
const DefaultHistorySize = 200

// History is a bounded, append-only log of past critique summaries. Entries
// are never mutated after append; once the buffer is full the oldest entry
// is overwritten. Safe for concurrent use: appends and reads of the recent
// window serialize on one mutex.
type History struct {
	mu      sync.Mutex
	entries []domain.CritiqueEntry
	next    int
	full    bool
}

// NewHistory creates a ring buffer holding at most capacity entries.
// A non-positive capacity falls back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{entries: make([]domain.CritiqueEntry, capacity)}
}

func (h *History) Append(e domain.CritiqueEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.next] = e
	h.next++
	if h.next == len(h.entries) {
		h.next = 0
		h.full = true
	}
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.full {
		return len(h.entries)
	}
	return h.next
}

// Recent returns up to n of the most recent entries in chronological order.
func (h *History) Recent(n int) []domain.CritiqueEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	size := h.next
	if h.full {
		size = len(h.entries)
	}
	if n > size {
		n = size
	}
	out := make([]domain.CritiqueEntry, 0, n)
	for i := size - n; i < size; i++ {
		idx := i
		if h.full {
			idx = (h.next + i) % len(h.entries)
		}
		out = append(out, h.entries[idx])
	}
	return out
}
