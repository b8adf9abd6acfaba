package state

import (
	"sort"
	"sync"
)

// History is the relay's op log. It keeps every accepted message once,
// keyed by ID, and hands them back in a deterministic order so late joiners
// rebuild the same raster as everyone else.
type History struct {
	limit   int
	arrival uint64
	seen    map[string]struct{}
	entries fifo[entry]
	// evicted holds IDs dropped from entries that are still in seen. At
	// most limit of them are remembered.
	evicted fifo[string]
	mu      sync.RWMutex
}

type entry struct {
	msg     Message
	arrival uint64
}

// NewHistory creates a log holding at most limit messages; the oldest
// message is evicted first. limit <= 0 means unbounded.
func NewHistory(limit int) *History {
	return &History{
		limit: limit,
		seen:  make(map[string]struct{}),
	}
}

// Add records a message and reports whether it was new. Messages without an
// ID are always new.
func (h *History) Add(m Message) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m.ID != "" {
		if _, dup := h.seen[m.ID]; dup {
			return false
		}
		h.seen[m.ID] = struct{}{}
	}

	h.arrival++
	h.entries.push(entry{msg: m, arrival: h.arrival})

	if h.limit > 0 && h.entries.len() > h.limit {
		h.evict()
	}
	return true
}

// evict drops the oldest message. Its ID is still rejected until limit
// further messages have been evicted after it.
func (h *History) evict() {
	oldest := h.entries.pop()
	if oldest.msg.ID == "" {
		return
	}
	h.evicted.push(oldest.msg.ID)
	if h.evicted.len() > h.limit {
		delete(h.seen, h.evicted.pop())
	}
}

// Ordered returns the log sorted by sequence number, then site, then
// arrival order.
func (h *History) Ordered() []Message {
	h.mu.RLock()
	live := h.entries.all()
	sorted := make([]entry, len(live))
	copy(sorted, live)
	h.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].msg, sorted[j].msg
		if a.Seq != b.Seq {
			return a.Seq < b.Seq
		}
		if a.Site != b.Site {
			return a.Site < b.Site
		}
		return sorted[i].arrival < sorted[j].arrival
	})

	out := make([]Message, len(sorted))
	for i, e := range sorted {
		out[i] = e.msg
	}
	return out
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.entries.len()
}

// fifo is a slice-backed queue. Popped slots are cleared, and the array is
// reallocated once the popped prefix is as long as the live part.
type fifo[T any] struct {
	items []T
	head  int
}

func (q *fifo[T]) push(v T) { q.items = append(q.items, v) }

func (q *fifo[T]) len() int { return len(q.items) - q.head }

func (q *fifo[T]) all() []T { return q.items[q.head:] }

func (q *fifo[T]) pop() T {
	var zero T
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	if q.head >= q.len() {
		q.items = append([]T(nil), q.items[q.head:]...)
		q.head = 0
	}
	return v
}
