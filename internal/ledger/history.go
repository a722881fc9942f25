package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// HistoryEntry records a single balance mutation.
type HistoryEntry struct {
	Timestamp     time.Time
	TransactionID string
	Operation     Operation
	Amount        decimal.Decimal
}

// History is an append-only audit trail. Past entries can be read but never
// replaced or reordered. A history may skip loading its persisted prefix, in
// which case only the entries held in memory are readable.
type History struct {
	entries []HistoryEntry
	stored  int
	skipped int
}

// NewHistory returns a history holding entries that are already persisted.
func NewHistory(entries ...HistoryEntry) History {
	h := History{entries: make([]HistoryEntry, len(entries))}
	copy(h.entries, entries)
	h.stored = len(entries)
	return h
}

// ResumeHistory returns a history whose first n persisted entries were not
// loaded. New entries are numbered after them.
func ResumeHistory(n int) History {
	return History{skipped: n}
}

// Append adds an entry at the end of the history.
func (h *History) Append(e HistoryEntry) {
	h.entries = append(h.entries, e)
}

// Len returns the number of entries, including any that were not loaded.
func (h History) Len() int { return h.skipped + len(h.entries) }

// Entries returns a copy of the entries held in memory, oldest first.
func (h History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Pending returns the entries appended since the history was loaded, with
// the sequence number the first of them should be stored at.
func (h History) Pending() (start int, entries []HistoryEntry) {
	out := make([]HistoryEntry, len(h.entries)-h.stored)
	copy(out, h.entries[h.stored:])
	return h.skipped + h.stored, out
}

// Last returns the most recent entry held in memory.
func (h History) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h History) clone() History {
	return History{entries: h.Entries(), stored: h.stored, skipped: h.skipped}
}
