// Package snapshot holds captured directory states and the append-only
// timeline that orders them.
package snapshot

import (
	"time"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/index"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
)

// Snapshot is the full file set of a directory at one point in time. It is
// read-only once shared and safe to use from multiple goroutines.
type Snapshot struct {
	ID        int64
	CreatedAt time.Time
	// HashAlgorithm names the hasher behind the file hashes. Empty means
	// unknown.
	HashAlgorithm string
	files         *index.Index[types.FileMetadata]
}

// New builds a snapshot from files. A path that appears more than once keeps
// the last record given for it.
func New(id int64, createdAt time.Time, files ...types.FileMetadata) *Snapshot {
	ix := index.New[types.FileMetadata]()
	for _, f := range files {
		ix.Insert(f.Path, f)
	}
	return &Snapshot{ID: id, CreatedAt: createdAt, files: ix}
}

// FromRecord rebuilds a snapshot from its persisted form.
func FromRecord(rec types.SnapshotRecord) *Snapshot {
	s := New(rec.ID, rec.CreatedAt, rec.Files...)
	s.HashAlgorithm = rec.HashAlgorithm
	return s
}

// Record returns the persisted form of s.
func (s *Snapshot) Record() types.SnapshotRecord {
	return types.SnapshotRecord{
		RecordHeader:  types.NewHeader(types.KindSnapshot),
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		HashAlgorithm: s.HashAlgorithm,
		Files:         s.Files(),
	}
}

// Lookup returns the metadata recorded for path.
func (s *Snapshot) Lookup(path string) (types.FileMetadata, bool) {
	if s == nil {
		return types.FileMetadata{}, false
	}
	return s.files.Search(path)
}

// Walk visits every file in ascending path order. A nil snapshot is empty.
func (s *Snapshot) Walk(visit func(path string, meta types.FileMetadata)) {
	if s == nil {
		return
	}
	s.files.Walk(visit)
}

// Files returns the file records in ascending path order.
func (s *Snapshot) Files() []types.FileMetadata {
	if s == nil {
		return nil
	}
	return s.files.Values()
}

// FileCount returns the number of files in the snapshot.
func (s *Snapshot) FileCount() int {
	if s == nil {
		return 0
	}
	return s.files.Len()
}

// TotalSize sums the recorded size of every file.
func (s *Snapshot) TotalSize() int64 {
	var total int64
	s.Walk(func(_ string, meta types.FileMetadata) {
		total += meta.Size
	})
	return total
}

// Hashes returns the path to content hash mapping of the snapshot.
func (s *Snapshot) Hashes() map[string]string {
	out := make(map[string]string, s.FileCount())
	s.Walk(func(path string, meta types.FileMetadata) {
		out[path] = meta.Hash
	})
	return out
}
