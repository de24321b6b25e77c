package log

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultRingSize is the number of events kept by NewRing(0).
const DefaultRingSize = 500

// Entry is one recorded log event.
type Entry struct {
	Time    time.Time     `json:"time"`
	Level   zerolog.Level `json:"level"`
	Message string        `json:"message"`
}

// Ring keeps the most recent log messages in memory. It is a zerolog.Hook,
// so attaching it to a logger records every event that logger emits.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
	now     func() time.Time
}

var _ zerolog.Hook = (*Ring)(nil)

// NewRing returns a ring holding up to size entries.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Ring{entries: make([]Entry, size), now: time.Now}
}

// Run implements zerolog.Hook.
func (r *Ring) Run(_ *zerolog.Event, level zerolog.Level, msg string) {
	if level == zerolog.NoLevel || msg == "" {
		return
	}
	r.Add(level, msg)
}

// Add records a message, evicting the oldest when full.
func (r *Ring) Add(level zerolog.Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[r.next] = Entry{Time: r.now(), Level: level, Message: msg}
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Len returns the number of stored entries.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lenLocked()
}

func (r *Ring) lenLocked() int {
	if r.full {
		return len(r.entries)
	}
	return r.next
}

// Entries returns up to limit entries starting offset entries after the
// oldest one. A non-positive limit returns everything from offset on.
func (r *Ring) Entries(offset, limit int) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.lenLocked()
	if offset < 0 {
		offset = 0
	}
	if offset >= n {
		return nil
	}
	count := n - offset
	if limit > 0 && limit < count {
		count = limit
	}

	start := 0
	if r.full {
		start = r.next
	}
	out := make([]Entry, count)
	for i := range count {
		out[i] = r.entries[(start+offset+i)%len(r.entries)]
	}
	return out
}
