package types

import "time"

// `json:"..."` tags define the on-disk record layout. Field names are part of
// the record format, so renaming one requires a RecordVersion bump.

// RecordFormat identifies files written by ftrack.
const RecordFormat = "ftrack"

// RecordVersion is the current version of the persisted record layout.
const RecordVersion = 1

// Record kinds.
const (
	KindSnapshot = "snapshot"
	KindDelta    = "delta"
)

// FileMetadata describes one regular file at capture time. Path is relative
// to the captured root and always slash-separated.
type FileMetadata struct {
	Path         string    `json:"path"`
	AbsolutePath string    `json:"absolutePath"`
	Size         int64     `json:"size"`
	ModTime      time.Time `json:"modTime"`
	Hash         string    `json:"hash"`
}

// RecordHeader prefixes every persisted record.
type RecordHeader struct {
	Format  string `json:"format"`
	Version int    `json:"version"`
	Kind    string `json:"kind"`
}

// NewHeader returns a header for the current record version.
func NewHeader(kind string) RecordHeader {
	return RecordHeader{Format: RecordFormat, Version: RecordVersion, Kind: kind}
}

// SnapshotRecord is the full, self-contained form of a snapshot.
type SnapshotRecord struct {
	RecordHeader
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	// HashAlgorithm names the hasher that produced the file hashes. Records
	// written before it existed leave it empty.
	HashAlgorithm string         `json:"hashAlgorithm,omitempty"`
	Files         []FileMetadata `json:"files"`
}

// DeltaRecord holds the changes that turn snapshot ID-1 into snapshot ID.
type DeltaRecord struct {
	RecordHeader
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	Added     []FileMetadata `json:"added"`
	Deleted   []string       `json:"deleted"`
	Updated   []FileMetadata `json:"updated"`
}

type PackIndexEntry struct {
	PackHash string `json:"packHash"`
	Offset   int64  `json:"offset"`
	Length   int64  `json:"length"`
}

// PackIndex maps a content hash to its location in a packfile.
type PackIndex map[string]PackIndexEntry
