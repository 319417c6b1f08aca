package snapshot

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrOutOfRange is returned when a timeline position does not exist.
var ErrOutOfRange = errors.New("timeline index out of range")

// Timeline is the append-only, oldest-first history of snapshots.
// Appends are serialized against readers.
type Timeline struct {
	mu        sync.RWMutex
	snapshots []*Snapshot
}

// Entry is one row of a timeline listing.
type Entry struct {
	Index     int
	ID        int64
	CreatedAt time.Time
	FileCount int
	TotalSize int64
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// Append adds s as the newest snapshot.
func (t *Timeline) Append(s *Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snapshots = append(t.snapshots, s)
}

// Get returns the snapshot at the 0-based position i.
func (t *Timeline) Get(i int) (*Snapshot, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.snapshots) {
		return nil, fmt.Errorf("%w: %d (timeline has %d snapshots)", ErrOutOfRange, i, len(t.snapshots))
	}
	return t.snapshots[i], nil
}

// Last returns the newest snapshot, or nil if the timeline is empty.
func (t *Timeline) Last() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.snapshots) == 0 {
		return nil
	}
	return t.snapshots[len(t.snapshots)-1]
}

// SecondLast returns the snapshot before the newest one, or nil if there are
// fewer than two.
func (t *Timeline) SecondLast() *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.snapshots) < 2 {
		return nil
	}
	return t.snapshots[len(t.snapshots)-2]
}

// Latest returns the two newest snapshots as a consistent pair.
func (t *Timeline) Latest() (previous, last *Snapshot) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := len(t.snapshots)
	if n > 0 {
		last = t.snapshots[n-1]
	}
	if n > 1 {
		previous = t.snapshots[n-2]
	}
	return previous, last
}

// FindByID returns the snapshot with the given identifier.
func (t *Timeline) FindByID(id int64) (*Snapshot, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, s := range t.snapshots {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

func (t *Timeline) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.snapshots)
}

func (t *Timeline) IsEmpty() bool {
	return t.Len() == 0
}

// All returns a copy of the timeline, oldest first.
func (t *Timeline) All() []*Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Snapshot, len(t.snapshots))
	copy(out, t.snapshots)
	return out
}

// Entries lists the timeline for display.
func (t *Timeline) Entries() []Entry {
	all := t.All()
	entries := make([]Entry, len(all))
	for i, s := range all {
		entries[i] = Entry{
			Index:     i,
			ID:        s.ID,
			CreatedAt: s.CreatedAt,
			FileCount: s.FileCount(),
			TotalSize: s.TotalSize(),
		}
	}
	return entries
}
