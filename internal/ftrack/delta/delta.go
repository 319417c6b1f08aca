// Package delta encodes the difference between adjacent snapshots and
// rebuilds snapshots from a full base plus a chain of deltas.
package delta

import (
	"time"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/diff"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
)

// Delta holds what changed between a snapshot and its predecessor. Updated
// carries only the new metadata. Unchanged files are not represented.
type Delta struct {
	// TargetID and CreatedAt describe the snapshot the delta produces. They
	// are zero for deltas between arbitrary snapshots.
	TargetID  int64
	CreatedAt time.Time

	Added   []types.FileMetadata
	Deleted []string
	Updated []types.FileMetadata
}

// IsEmpty reports whether the delta changes nothing.
func (d *Delta) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Deleted) == 0 && len(d.Updated) == 0
}

// Create returns the delta that turns previous into current. previous may be
// nil, in which case every file of current is added.
func Create(previous, current *snapshot.Snapshot) *Delta {
	d := &Delta{}
	if current != nil {
		d.TargetID = current.ID
		d.CreatedAt = current.CreatedAt
	}
	for _, r := range diff.Compare(previous, current) {
		switch r.Kind {
		case diff.Added:
			d.Added = append(d.Added, *r.New)
		case diff.Deleted:
			d.Deleted = append(d.Deleted, r.Path)
		case diff.Updated:
			d.Updated = append(d.Updated, *r.New)
		}
	}
	return d
}

// Apply rebuilds the snapshot that follows base. The result's identifier is
// base.ID+1. Its timestamp comes from the delta when it has one.
func Apply(base *snapshot.Snapshot, d *Delta) *snapshot.Snapshot {
	removed := make(map[string]struct{}, len(d.Deleted)+len(d.Updated))
	for _, p := range d.Deleted {
		removed[p] = struct{}{}
	}
	for _, f := range d.Updated {
		removed[f.Path] = struct{}{}
	}

	files := make([]types.FileMetadata, 0, base.FileCount()+len(d.Added))
	base.Walk(func(path string, meta types.FileMetadata) {
		if _, ok := removed[path]; !ok {
			files = append(files, meta)
		}
	})
	files = append(files, d.Added...)
	files = append(files, d.Updated...)

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var baseID int64
	var algo string
	if base != nil {
		baseID = base.ID
		algo = base.HashAlgorithm
	}
	s := snapshot.New(baseID+1, createdAt, files...)
	s.HashAlgorithm = algo
	return s
}

// Record returns the persisted form of d.
func (d *Delta) Record() types.DeltaRecord {
	return types.DeltaRecord{
		RecordHeader: types.NewHeader(types.KindDelta),
		ID:           d.TargetID,
		CreatedAt:    d.CreatedAt,
		Added:        nonNil(d.Added),
		Deleted:      nonNilStrings(d.Deleted),
		Updated:      nonNil(d.Updated),
	}
}

// FromRecord rebuilds a delta from its persisted form.
func FromRecord(rec types.DeltaRecord) *Delta {
	return &Delta{
		TargetID:  rec.ID,
		CreatedAt: rec.CreatedAt,
		Added:     rec.Added,
		Deleted:   rec.Deleted,
		Updated:   rec.Updated,
	}
}

// Empty lists are written as [] rather than null.
func nonNil(files []types.FileMetadata) []types.FileMetadata {
	if files == nil {
		return []types.FileMetadata{}
	}
	return files
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
