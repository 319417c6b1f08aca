package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func meta(path, hash string, size int64) types.FileMetadata {
	return types.FileMetadata{Path: path, AbsolutePath: "/src/" + path, Size: size, Hash: hash}
}

func TestNewSnapshotOrdersAndUpserts(t *testing.T) {
	s := New(7, time.Unix(0, 0),
		meta("z.txt", "h1", 1),
		meta("a.txt", "h2", 2),
		meta("z.txt", "h3", 3),
	)

	assert.Equal(t, 2, s.FileCount())
	files := s.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "a.txt", files[0].Path)
	assert.Equal(t, "z.txt", files[1].Path)
	assert.Equal(t, "h3", files[1].Hash, "later record for a path should win")
	assert.Equal(t, int64(5), s.TotalSize())
	assert.Equal(t, map[string]string{"a.txt": "h2", "z.txt": "h3"}, s.Hashes())
}

func TestSnapshotRecordRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s := New(3, created, meta("b/c.txt", "hc", 10), meta("a.txt", "ha", 5))
	s.HashAlgorithm = "xxh3"

	rec := s.Record()
	assert.Equal(t, types.KindSnapshot, rec.Kind)
	assert.Equal(t, types.RecordVersion, rec.Version)
	assert.Equal(t, "xxh3", rec.HashAlgorithm)

	back := FromRecord(rec)
	assert.Equal(t, s.ID, back.ID)
	assert.Equal(t, "xxh3", back.HashAlgorithm)
	assert.True(t, created.Equal(back.CreatedAt))
	assert.Equal(t, s.Files(), back.Files())
}

func TestNilSnapshotIsEmpty(t *testing.T) {
	var s *Snapshot
	assert.Equal(t, 0, s.FileCount())
	assert.Nil(t, s.Files())
	_, ok := s.Lookup("a.txt")
	assert.False(t, ok)
}

func TestTimeline(t *testing.T) {
	tl := NewTimeline()
	assert.True(t, tl.IsEmpty())
	assert.Nil(t, tl.Last())
	assert.Nil(t, tl.SecondLast())

	_, err := tl.Get(0)
	require.ErrorIs(t, err, ErrOutOfRange)

	s1 := New(1, time.Now())
	tl.Append(s1)
	assert.Same(t, s1, tl.Last())
	assert.Nil(t, tl.SecondLast())

	s2 := New(2, time.Now(), meta("a.txt", "h", 1))
	tl.Append(s2)
	assert.Same(t, s2, tl.Last())
	assert.Same(t, s1, tl.SecondLast())

	prev, last := tl.Latest()
	assert.Same(t, s1, prev)
	assert.Same(t, s2, last)

	got, err := tl.Get(1)
	require.NoError(t, err)
	assert.Same(t, s2, got)

	_, err = tl.Get(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = tl.Get(2)
	assert.ErrorIs(t, err, ErrOutOfRange)

	found, ok := tl.FindByID(2)
	assert.True(t, ok)
	assert.Same(t, s2, found)
	_, ok = tl.FindByID(9)
	assert.False(t, ok)

	entries := tl.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Index: 1, ID: 2, CreatedAt: s2.CreatedAt, FileCount: 1, TotalSize: 1}, entries[1])
}

func TestTimelineConcurrentAppendAndRead(t *testing.T) {
	tl := NewTimeline()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			tl.Append(New(id, time.Now()))
		}(int64(i + 1))
		go func() {
			defer wg.Done()
			prev, last := tl.Latest()
			if prev != nil {
				assert.NotNil(t, last)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tl.Len())
}

func TestManagerAssignsSequentialIDs(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	m := NewManager(WithClock(func() time.Time { return fixed }))

	s1 := m.TakeSnapshot(nil)
	s2 := m.TakeSnapshot([]types.FileMetadata{meta("a.txt", "h", 1)})

	assert.Equal(t, int64(1), s1.ID)
	assert.Equal(t, int64(2), s2.ID)
	assert.Equal(t, fixed, s2.CreatedAt)
	assert.Equal(t, int64(3), m.NextID())
	assert.Equal(t, 2, m.Timeline().Len())

	got, err := m.Get(0)
	require.NoError(t, err)
	assert.Same(t, s1, got)
}

func TestManagerLoadContinuesNumbering(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Load(New(1, time.Now()), New(4, time.Now())))

	next := m.TakeSnapshot(nil)
	assert.Equal(t, int64(5), next.ID)

	err := m.Load(New(3, time.Now()))
	assert.Error(t, err, "loading an older snapshot must fail")
}

func TestManagerWithNextIDNeverReuses(t *testing.T) {
	m := NewManager(WithNextID(10))
	require.NoError(t, m.Load(New(2, time.Now())))

	assert.Equal(t, int64(10), m.TakeSnapshot(nil).ID)
}

func TestManagerConcurrentSnapshotsGetUniqueIDs(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	ids := make(chan int64, 100)

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- m.TakeSnapshot(nil).ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)

	// Timeline order must match identifier order.
	all := m.Timeline().All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
}

func TestManagerStampsHashAlgorithm(t *testing.T) {
	m := NewManager(WithHashAlgorithm("xxh3"))

	s := m.TakeSnapshot([]types.FileMetadata{meta("a.txt", "h", 1)})

	assert.Equal(t, "xxh3", s.HashAlgorithm)
	assert.Equal(t, "xxh3", s.Record().HashAlgorithm)
}
