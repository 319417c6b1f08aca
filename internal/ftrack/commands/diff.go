package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/diff"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
)

// ErrNotEnoughSnapshots is returned when diffing the latest two snapshots of
// a timeline that has fewer than two.
var ErrNotEnoughSnapshots = errors.New("need at least 2 snapshots to compare")

// Diff prints the changes between two snapshots of targetDirectory, given as
// timeline indexes. With both selectors empty it compares the latest two.
func Diff(targetDirectory, fromSelector, toSelector string) error {
	r, err := openRepo(targetDirectory)
	if err != nil {
		return err
	}
	m, err := r.manager()
	if err != nil {
		return err
	}

	var from, to *snapshot.Snapshot
	switch {
	case fromSelector == "" && toSelector == "":
		from, to = m.Timeline().Latest()
		if from == nil {
			return fmt.Errorf("%w (found %d)", ErrNotEnoughSnapshots, m.Timeline().Len())
		}
	case fromSelector == "" || toSelector == "":
		return fmt.Errorf("diff needs both snapshot indexes or neither")
	default:
		if from, err = resolveIndex(m, fromSelector); err != nil {
			return err
		}
		if to, err = resolveIndex(m, toSelector); err != nil {
			return err
		}
	}

	if err := diff.CheckComparable(from, to); err != nil {
		return err
	}
	return diff.NewReport(from, to).Render(os.Stdout)
}
