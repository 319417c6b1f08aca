package snapshot

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
)

// Manager owns a Timeline and hands out snapshot identifiers. Identifiers
// start at 1, increase by one per snapshot and are never reused.
type Manager struct {
	mu       sync.Mutex
	nextID   int64
	timeline *Timeline
	logger   *slog.Logger
	now      func() time.Time
	hashAlgo string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used by the manager.
func WithLogger(l *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides the time source used to stamp new snapshots.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// WithNextID sets the identifier the next snapshot will receive. It is used
// when the persisted counter is ahead of the loaded history.
func WithNextID(id int64) ManagerOption {
	return func(m *Manager) { m.nextID = id }
}

// WithHashAlgorithm names the hasher whose output new snapshots carry.
func WithHashAlgorithm(name string) ManagerOption {
	return func(m *Manager) { m.hashAlgo = name }
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		nextID:   1,
		timeline: NewTimeline(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Load appends previously captured snapshots. They must be in increasing
// identifier order and newer than anything already in the timeline.
func (m *Manager) Load(snaps ...*Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range snaps {
		if last := m.timeline.Last(); last != nil && s.ID <= last.ID {
			return fmt.Errorf("snapshot %d loaded after snapshot %d", s.ID, last.ID)
		}
		m.timeline.Append(s)
		if s.ID >= m.nextID {
			m.nextID = s.ID + 1
		}
	}
	return nil
}

// TakeSnapshot records files as a new snapshot with a fresh identifier and
// appends it to the timeline.
func (m *Manager) TakeSnapshot(files []types.FileMetadata) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := New(m.nextID, m.now().UTC(), files...)
	s.HashAlgorithm = m.hashAlgo
	m.nextID++
	m.timeline.Append(s)

	m.logger.Debug("snapshot taken", "id", s.ID, "files", s.FileCount())
	return s
}

// NextID returns the identifier the next snapshot will receive.
func (m *Manager) NextID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nextID
}

// Timeline returns the managed timeline.
func (m *Manager) Timeline() *Timeline {
	return m.timeline
}

// Get returns the snapshot at the 0-based timeline position i.
func (m *Manager) Get(i int) (*Snapshot, error) {
	return m.timeline.Get(i)
}

// Entries lists the timeline for display.
func (m *Manager) Entries() []Entry {
	return m.timeline.Entries()
}
