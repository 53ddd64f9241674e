package courier

import (
	"errors"
	"fmt"
)

// OverflowPolicy decides what History does with a push at capacity.
type OverflowPolicy int

// Overflow policies
const (
	// OverflowDrop rejects the new record and keeps existing ones intact.
	OverflowDrop OverflowPolicy = iota
	// OverflowEvictOldest discards the oldest record to make room.
	OverflowEvictOldest
)

func (p OverflowPolicy) String() string {
	if p == OverflowEvictOldest {
		return "evict-oldest"
	}
	return "drop"
}

// ParseOverflowPolicy parses the policy name.
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "drop":
		return OverflowDrop, nil
	case "evict-oldest":
		return OverflowEvictOldest, nil
	}
	return OverflowDrop, fmt.Errorf("unknown overflow policy %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p OverflowPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *OverflowPolicy) UnmarshalText(text []byte) (err error) {
	*p, err = ParseOverflowPolicy(string(text))
	return
}

var (
	// ErrHistoryFull indicates the record was dropped at capacity.
	ErrHistoryFull = errors.New("move history full")
	// ErrHistorySealed indicates the history is being replayed and
	// accepts no more records.
	ErrHistorySealed = errors.New("move history sealed")
	// ErrHistoryNotSealed indicates Pop is called before Seal.
	ErrHistoryNotSealed = errors.New("move history not sealed")
)

// History is the bounded LIFO of recorded moves. Records are pushed while
// driving; Seal hands the history over to playback which pops.
type History struct {
	Policy OverflowPolicy

	// ring buffer, head is the index of the oldest record.
	records []MoveRecord
	head    int
	size    int
	dropped int
	sealed  bool
}

// NewHistory creates a History with the given capacity.
func NewHistory(capacity int, policy OverflowPolicy) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCapacity
	}
	return &History{Policy: policy, records: make([]MoveRecord, capacity)}
}

// Cap returns the capacity.
func (h *History) Cap() int {
	return len(h.records)
}

// Len returns the number of records.
func (h *History) Len() int {
	return h.size
}

// Dropped returns the number of records lost to overflow.
func (h *History) Dropped() int {
	return h.dropped
}

// Sealed indicates the history is handed over to playback.
func (h *History) Sealed() bool {
	return h.sealed
}

// Push appends a record on top.
func (h *History) Push(r MoveRecord) error {
	if h.sealed {
		return ErrHistorySealed
	}
	if h.size == len(h.records) {
		h.dropped++
		if h.Policy != OverflowEvictOldest {
			return ErrHistoryFull
		}
		h.head = (h.head + 1) % len(h.records)
		h.size--
	}
	h.records[(h.head+h.size)%len(h.records)] = r
	h.size++
	return nil
}

// Seal stops accepting pushes. It's irreversible.
func (h *History) Seal() {
	h.sealed = true
}

// Pop removes the top record. ok is false when the history is empty.
func (h *History) Pop() (r MoveRecord, ok bool, err error) {
	if !h.sealed {
		return r, false, ErrHistoryNotSealed
	}
	if h.size == 0 {
		return r, false, nil
	}
	h.size--
	return h.records[(h.head+h.size)%len(h.records)], true, nil
}

// Records returns a copy from the oldest to the newest.
func (h *History) Records() []MoveRecord {
	out := make([]MoveRecord, h.size)
	for i := range out {
		out[i] = h.records[(h.head+i)%len(h.records)]
	}
	return out
}
