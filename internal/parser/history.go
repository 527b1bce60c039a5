package parser

import (
	"strings"
	"sync"
)

const DefaultHistorySize = 50

// History is a bounded command-history buffer with a navigation cursor. It
// is safe for concurrent use.
type History struct {
	mu      sync.Mutex
	entries []string
	limit   int
	cursor  int
}

func NewHistory(limit int) *History {
	if limit < 1 {
		limit = DefaultHistorySize
	}
	return &History{limit: limit}
}

// Add records a non-blank entry, skipping an immediate repeat, and resets the
// cursor past the newest entry.
func (h *History) Add(entry string) {
	if h == nil {
		return
	}
	entry = strings.TrimSpace(entry)
	h.mu.Lock()
	defer h.mu.Unlock()
	if entry != "" && (len(h.entries) == 0 || h.entries[len(h.entries)-1] != entry) {
		h.entries = append(h.entries, entry)
		if over := len(h.entries) - h.limit; over > 0 {
			h.entries = append(h.entries[:0:0], h.entries[over:]...)
		}
	}
	h.cursor = len(h.entries)
}

// Prev steps back one entry. At the oldest entry it stays put.
func (h *History) Prev() (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.entries) == 0 {
		return "", false
	}
	if h.cursor > 0 {
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next steps forward one entry. Stepping past the newest entry returns an
// empty buffer and false.
func (h *History) Next() (string, bool) {
	if h == nil {
		return "", false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cursor < len(h.entries) {
		h.cursor++
	}
	if h.cursor >= len(h.entries) {
		return "", false
	}
	return h.entries[h.cursor], true
}

func (h *History) Entries() []string {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.entries...)
}

func (h *History) Len() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}
