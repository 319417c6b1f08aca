package delta

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/diff"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioTimeline is: empty, add a.txt, modify a.txt, add b.txt and delete a.txt.
func scenarioTimeline(t *testing.T) *snapshot.Timeline {
	t.Helper()
	tl := snapshot.NewTimeline()
	tl.Append(snap(1))
	tl.Append(snap(2, file("a.txt", "H1")))
	tl.Append(snap(3, file("a.txt", "H2")))
	tl.Append(snap(4, file("b.txt", "B")))
	return tl
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "storage"))
	require.NoError(t, err)
	return s
}

func TestCompressWritesBaseAndDeltas(t *testing.T) {
	s := newStore(t)

	res, err := s.Compress(scenarioTimeline(t))

	require.NoError(t, err)
	assert.Equal(t, CompressResult{Records: 4, Added: 2, Deleted: 1, Updated: 1}, res)
	for _, name := range []string{BaseRecordName, "delta_2.json", "delta_3.json", "delta_4.json"} {
		assert.FileExists(t, filepath.Join(s.Dir(), name))
	}
	assert.Equal(t, []int64{1, 2, 3, 4}, s.StoredIDs())
}

func TestDecompressEveryID(t *testing.T) {
	s := newStore(t)
	tl := scenarioTimeline(t)
	_, err := s.Compress(tl)
	require.NoError(t, err)

	for i, want := range tl.All() {
		got, err := s.Decompress(int64(i + 1))
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
		assert.Equal(t, want.Hashes(), got.Hashes())
	}
}

func TestDecompressIsRepeatable(t *testing.T) {
	s := newStore(t)
	_, err := s.Compress(scenarioTimeline(t))
	require.NoError(t, err)

	first, err := s.Decompress(3)
	require.NoError(t, err)
	second, err := s.Decompress(3)
	require.NoError(t, err)

	assert.Equal(t, first.Files(), second.Files())
}

func TestDecompressMissingRecords(t *testing.T) {
	s := newStore(t)

	_, err := s.Decompress(1)
	assert.ErrorIs(t, err, lib.ErrRecordNotFound)

	_, err = s.Compress(scenarioTimeline(t))
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(s.Dir(), "delta_3.json")))

	_, err = s.Decompress(4)
	assert.ErrorIs(t, err, lib.ErrRecordNotFound)
	assert.Equal(t, []int64{1, 2}, s.StoredIDs())

	_, err = s.Decompress(0)
	assert.Error(t, err)
}

func TestDecompressDetectsMisplacedDelta(t *testing.T) {
	s := newStore(t)
	_, err := s.Compress(scenarioTimeline(t))
	require.NoError(t, err)

	// Put delta 4 where delta 3 belongs.
	data, err := os.ReadFile(filepath.Join(s.Dir(), "delta_4.json"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "delta_3.json"), data, 0644))

	_, err = s.Decompress(3)
	assert.ErrorIs(t, err, ErrChainMismatch)
}

func TestDecompressRejectsCorruptRecord(t *testing.T) {
	s := newStore(t)
	_, err := s.Compress(scenarioTimeline(t))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "delta_2.json"), []byte(`{"format":"ftrack","version":9,"kind":"delta"}`), 0644))

	_, err = s.Decompress(2)
	assert.ErrorIs(t, err, lib.ErrRecordVersion)
}

func TestCompressRequiresSequentialIDs(t *testing.T) {
	s := newStore(t)
	tl := snapshot.NewTimeline()
	tl.Append(snap(1))
	tl.Append(snap(3))

	_, err := s.Compress(tl)
	assert.ErrorIs(t, err, ErrNonSequential)

	_, err = s.CompressSnapshot(tl, 5)
	assert.ErrorIs(t, err, snapshot.ErrOutOfRange)
}

func TestNewStoreUnusablePath(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := NewStore(filepath.Join(blocker, "storage"))
	assert.Error(t, err)
}

func TestConcurrentDecompressSharesReplay(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var replays atomic.Int64
	hook := func(int64) {
		if replays.Add(1) == 1 {
			close(started)
			<-release
		}
	}
	s, err := NewStore(t.TempDir(), withReplayHook(hook))
	require.NoError(t, err)
	_, err = s.Compress(scenarioTimeline(t))
	require.NoError(t, err)

	const callers = 8
	results := make([]*snapshot.Snapshot, callers)
	var finished atomic.Int64
	var wg sync.WaitGroup
	decompress := func(i int) {
		defer wg.Done()
		results[i], _ = s.Decompress(4)
		finished.Add(1)
	}
	wg.Add(1)
	go decompress(0)
	<-started
	for i := 1; i < callers; i++ {
		wg.Add(1)
		go decompress(i)
	}

	// While the first replay is blocked, other callers for the same id wait
	// on it instead of starting their own.
	assert.Never(t, func() bool {
		return replays.Load() > 1 || finished.Load() > 0
	}, 20*time.Millisecond, time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, replays.Load(), int64(callers))
	for _, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, map[string]string{"b.txt": "B"}, r.Hashes())
	}
}

func TestReplayHookRunsPerReplay(t *testing.T) {
	var ids []int64
	s, err := NewStore(t.TempDir(), withReplayHook(func(id int64) { ids = append(ids, id) }))
	require.NoError(t, err)
	_, err = s.Compress(scenarioTimeline(t))
	require.NoError(t, err)

	for _, id := range []int64{2, 4, 4} {
		_, err := s.Decompress(id)
		require.NoError(t, err)
	}

	assert.Equal(t, []int64{2, 4, 4}, ids, "sequential calls do not share a replay")
}

func TestCompressRefusesMixedHashAlgorithms(t *testing.T) {
	s := newStore(t)
	first := snap(1, file("a.txt", "sha"))
	first.HashAlgorithm = "sha256"
	second := snap(2, file("a.txt", "xx"))
	second.HashAlgorithm = "xxh3"
	tl := snapshot.NewTimeline()
	tl.Append(first)
	tl.Append(second)

	_, err := s.Compress(tl)

	assert.ErrorIs(t, err, diff.ErrHashAlgorithmMismatch)
	_, statErr := os.Stat(filepath.Join(s.Dir(), DeltaRecordName(2)))
	assert.True(t, os.IsNotExist(statErr))
}
