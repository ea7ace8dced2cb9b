package services

import (
	"sync"
	"time"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

// History ledger limits
const (
	DefaultHistoryCapacity = 100
	historyAnswerLength    = 200
)

// HistoryLedger is a bounded, in-memory log of answered queries.
// Oldest entries are evicted once the capacity is reached.
type HistoryLedger struct {
	mu       sync.Mutex
	entries  []domain.HistoryEntry
	capacity int
	now      func() time.Time
}

// NewHistoryLedger creates an empty ledger. A non-positive capacity uses
// DefaultHistoryCapacity.
func NewHistoryLedger(capacity int) *HistoryLedger {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryLedger{
		entries:  make([]domain.HistoryEntry, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Record appends an entry, truncating the stored answer.
func (h *HistoryLedger) Record(query string, mode domain.QueryMode, answer string) {
	entry := domain.HistoryEntry{
		Timestamp: h.now().UTC(),
		Query:     query,
		Mode:      mode,
		Answer:    domain.Snippet(answer, historyAnswerLength),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.entries) >= h.capacity {
		// Shift in place so the backing array never grows past capacity
		copy(h.entries, h.entries[len(h.entries)-h.capacity+1:])
		h.entries = h.entries[:h.capacity-1]
	}
	h.entries = append(h.entries, entry)
}

// Recent returns the last limit entries, oldest first.
// A non-positive limit uses domain.HistoryWindow.
func (h *HistoryLedger) Recent(limit int) []domain.HistoryEntry {
	if limit <= 0 {
		limit = domain.HistoryWindow
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	start := 0
	if len(h.entries) > limit {
		start = len(h.entries) - limit
	}
	out := make([]domain.HistoryEntry, len(h.entries)-start)
	copy(out, h.entries[start:])
	return out
}

// Len returns the number of stored entries.
func (h *HistoryLedger) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
