package diff

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
)

// NoChanges is printed in place of entries when two snapshots match.
const NoChanges = "No changes detected."

// Report is a rendered-ready comparison of two snapshots.
type Report struct {
	From    *snapshot.Snapshot
	To      *snapshot.Snapshot
	Results []Result
}

// NewReport compares from and to.
func NewReport(from, to *snapshot.Snapshot) *Report {
	return &Report{From: from, To: to, Results: Compare(from, to)}
}

func label(s *snapshot.Snapshot) string {
	if s == nil {
		return "empty"
	}
	return "#" + strconv.FormatInt(s.ID, 10)
}

// Header names both sides of the comparison.
func (r *Report) Header() string {
	return fmt.Sprintf("DIFF REPORT: Snapshot %s → Snapshot %s", label(r.From), label(r.To))
}

// Counts tallies the report's results.
func (r *Report) Counts() Counts {
	return Count(r.Results)
}

// Render writes the header followed by one line per changed path, or the
// NoChanges line when nothing changed.
func (r *Report) Render(w io.Writer) error {
	var b strings.Builder
	b.WriteString(r.Header())
	b.WriteString("\n")

	changes := Changes(r.Results)
	if len(changes) == 0 {
		b.WriteString(NoChanges)
		b.WriteString("\n")
	}
	for _, c := range changes {
		b.WriteString(FormatLine(c))
		b.WriteString("\n")
	}

	if len(changes) > 0 {
		counts := r.Counts()
		fmt.Fprintf(&b, "\n%d added, %d deleted, %d updated, %d unchanged\n",
			counts.Added, counts.Deleted, counts.Updated, counts.Unchanged)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// String renders the report.
func (r *Report) String() string {
	var b strings.Builder
	_ = r.Render(&b)
	return b.String()
}

// FormatLine renders a single result.
func FormatLine(res Result) string {
	switch res.Kind {
	case Added:
		return fmt.Sprintf("ADDED:   %s (Size: %d bytes)", res.Path, res.New.Size)
	case Deleted:
		return fmt.Sprintf("DELETED: %s", res.Path)
	case Updated:
		return fmt.Sprintf("UPDATED: %s (Size: %d -> %d bytes, Hash changed)", res.Path, res.Old.Size, res.New.Size)
	default:
		return fmt.Sprintf("UNCHANGED: %s", res.Path)
	}
}
