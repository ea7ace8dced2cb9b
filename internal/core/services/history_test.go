package services

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/custodia-labs/sercha-research/internal/core/domain"
)

func TestHistoryLedger_RecordAndRecent(t *testing.T) {
	h := NewHistoryLedger(0)

	h.Record("q1", domain.QueryModeAnswer, "a1")
	h.Record("q2", domain.QueryModeSummarize, "a2")
	h.Record("q3", domain.QueryModeCompare, "a3")

	recent := h.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Query != "q2" || recent[1].Query != "q3" {
		t.Errorf("expected oldest-first [q2 q3], got [%s %s]", recent[0].Query, recent[1].Query)
	}
	if recent[1].Mode != domain.QueryModeCompare {
		t.Errorf("expected compare mode, got %s", recent[1].Mode)
	}
	if recent[0].Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestHistoryLedger_DefaultLimit(t *testing.T) {
	h := NewHistoryLedger(0)
	for i := 0; i < 15; i++ {
		h.Record(fmt.Sprintf("q%d", i), domain.QueryModeAnswer, "a")
	}

	recent := h.Recent(0)
	if len(recent) != domain.HistoryWindow {
		t.Fatalf("expected %d entries, got %d", domain.HistoryWindow, len(recent))
	}
	if recent[0].Query != "q5" {
		t.Errorf("expected q5 first, got %s", recent[0].Query)
	}
}

func TestHistoryLedger_TruncatesAnswer(t *testing.T) {
	h := NewHistoryLedger(0)
	h.Record("q", domain.QueryModeAnswer, strings.Repeat("x", 250))

	got := h.Recent(1)[0].Answer
	if got != strings.Repeat("x", 200)+"..." {
		t.Errorf("expected 200 chars plus ellipsis, got %d chars", len(got))
	}

	h.Record("q", domain.QueryModeAnswer, "short")
	if got := h.Recent(1)[0].Answer; got != "short" {
		t.Errorf("expected short answer unchanged, got %q", got)
	}
}

func TestHistoryLedger_Bounded(t *testing.T) {
	h := NewHistoryLedger(0)
	for i := 0; i < 250; i++ {
		h.Record(fmt.Sprintf("q%d", i), domain.QueryModeAnswer, "a")
		if h.Len() > DefaultHistoryCapacity {
			t.Fatalf("ledger exceeded capacity after %d records", i+1)
		}
	}

	all := h.Recent(1000)
	if len(all) != DefaultHistoryCapacity {
		t.Fatalf("expected %d entries, got %d", DefaultHistoryCapacity, len(all))
	}
	if all[0].Query != "q150" || all[99].Query != "q249" {
		t.Errorf("expected q150..q249, got %s..%s", all[0].Query, all[99].Query)
	}
}

func TestHistoryLedger_RecentReturnsCopy(t *testing.T) {
	h := NewHistoryLedger(0)
	h.Record("q", domain.QueryModeAnswer, "a")

	recent := h.Recent(1)
	recent[0].Query = "mutated"

	if h.Recent(1)[0].Query != "q" {
		t.Error("Recent must not expose internal storage")
	}
}

func TestHistoryLedger_Concurrent(t *testing.T) {
	h := NewHistoryLedger(50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				h.Record(fmt.Sprintf("q%d-%d", n, j), domain.QueryModeAnswer, "a")
				_ = h.Recent(5)
			}
		}(i)
	}
	wg.Wait()

	if h.Len() != 50 {
		t.Errorf("expected 50 entries, got %d", h.Len())
	}
}
