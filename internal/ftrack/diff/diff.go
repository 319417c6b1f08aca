// Package diff compares two snapshots path by path.
//
// Compare walks both snapshots' files in ascending path order at the same
// time, so the result comes out already sorted and takes time linear in the
// combined file count. Only the content hash decides whether a file changed.
// Size and modification time are carried along for display.
package diff

import (
	"errors"
	"fmt"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
)

// ErrHashAlgorithmMismatch is returned by CheckComparable when two snapshots
// were hashed with different algorithms.
var ErrHashAlgorithmMismatch = errors.New("snapshots use different hash algorithms")

// CheckComparable reports whether from and to hash their files the same way.
// Hashes from different algorithms never match, so comparing such snapshots
// would report every file as updated. A nil snapshot or an unknown algorithm
// is accepted.
func CheckComparable(from, to *snapshot.Snapshot) error {
	if from == nil || to == nil {
		return nil
	}
	a, b := from.HashAlgorithm, to.HashAlgorithm
	if a == "" || b == "" || a == b {
		return nil
	}
	return fmt.Errorf("%w: snapshot #%d uses %s, snapshot #%d uses %s",
		ErrHashAlgorithmMismatch, from.ID, a, to.ID, b)
}

// Kind classifies a path in a comparison.
type Kind int

const (
	Unchanged Kind = iota
	Added
	Deleted
	Updated
)

func (k Kind) String() string {
	switch k {
	case Added:
		return "ADDED"
	case Deleted:
		return "DELETED"
	case Updated:
		return "UPDATED"
	default:
		return "UNCHANGED"
	}
}

// Result is the outcome for one path. Old is nil for Added, New is nil for
// Deleted. For Unchanged both are set.
type Result struct {
	Kind Kind
	Path string
	Old  *types.FileMetadata
	New  *types.FileMetadata
}

// Compare returns one Result per path present in either snapshot, in
// ascending path order. Either snapshot may be nil, meaning no files.
func Compare(from, to *snapshot.Snapshot) []Result {
	left := from.Files()
	right := to.Files()
	results := make([]Result, 0, max(len(left), len(right)))

	i, j := 0, 0
	for i < len(left) && j < len(right) {
		a, b := &left[i], &right[j]
		switch {
		case a.Path < b.Path:
			results = append(results, Result{Kind: Deleted, Path: a.Path, Old: a})
			i++
		case a.Path > b.Path:
			results = append(results, Result{Kind: Added, Path: b.Path, New: b})
			j++
		default:
			kind := Unchanged
			if a.Hash != b.Hash {
				kind = Updated
			}
			results = append(results, Result{Kind: kind, Path: a.Path, Old: a, New: b})
			i++
			j++
		}
	}
	for ; i < len(left); i++ {
		results = append(results, Result{Kind: Deleted, Path: left[i].Path, Old: &left[i]})
	}
	for ; j < len(right); j++ {
		results = append(results, Result{Kind: Added, Path: right[j].Path, New: &right[j]})
	}
	return results
}

// Counts tallies results by kind.
type Counts struct {
	Added     int
	Deleted   int
	Updated   int
	Unchanged int
}

// HasChanges reports whether anything was added, deleted or updated.
func (c Counts) HasChanges() bool {
	return c.Added+c.Deleted+c.Updated > 0
}

// Count tallies results by kind.
func Count(results []Result) Counts {
	var c Counts
	for _, r := range results {
		switch r.Kind {
		case Added:
			c.Added++
		case Deleted:
			c.Deleted++
		case Updated:
			c.Updated++
		default:
			c.Unchanged++
		}
	}
	return c
}

// Changes filters out Unchanged results.
func Changes(results []Result) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Kind != Unchanged {
			out = append(out, r)
		}
	}
	return out
}
