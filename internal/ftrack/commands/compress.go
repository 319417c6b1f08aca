package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/delta"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/diff"
)

func (r *repo) storageDir(override string) (string, error) {
	if override == "" {
		return r.settings.ResolveStorageDir(r.dir), nil
	}
	return filepath.Abs(override)
}

// Compress writes the timeline of targetDirectory to storageDir as a full
// first snapshot followed by one delta per snapshot. An empty storageDir
// selects the configured one.
func Compress(targetDirectory, storageDir string) error {
	r, err := openRepo(targetDirectory)
	if err != nil {
		return err
	}
	dir, err := r.storageDir(storageDir)
	if err != nil {
		return err
	}
	m, err := r.manager()
	if err != nil {
		return err
	}
	if m.Timeline().IsEmpty() {
		fmt.Printf("No snapshots found for \"%s\".\n", r.dir)
		return nil
	}

	store, err := delta.NewStore(dir, delta.WithLogger(r.logger))
	if err != nil {
		return err
	}
	res, err := store.Compress(m.Timeline())
	if err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}

	fmt.Printf("🗜️  Compressed %d snapshots into \"%s\"\n", res.Records, dir)
	fmt.Printf("   - Delta entries: %d added, %d deleted, %d updated\n", res.Added, res.Deleted, res.Updated)
	return nil
}

// Decompress rebuilds snapshot id from the compressed records in storageDir
// and prints its files. When the timeline still holds that snapshot the two
// are compared.
func Decompress(targetDirectory string, id int64, storageDir string) error {
	r, err := openRepo(targetDirectory)
	if err != nil {
		return err
	}
	dir, err := r.storageDir(storageDir)
	if err != nil {
		return err
	}
	store, err := delta.NewStore(dir, delta.WithLogger(r.logger))
	if err != nil {
		return err
	}

	s, err := store.Decompress(id)
	if err != nil {
		return fmt.Errorf("failed to decompress snapshot %d: %w", id, err)
	}

	fmt.Printf("Snapshot #%d (%s), %d files:\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05 MST"), s.FileCount())
	for _, f := range s.Files() {
		fmt.Printf("   %s (%d bytes, %s)\n", f.Path, f.Size, shortHash(f.Hash))
	}

	m, err := r.manager()
	if err != nil {
		return err
	}
	if original, ok := m.Timeline().FindByID(id); ok {
		if diff.Count(diff.Compare(original, s)).HasChanges() {
			fmt.Fprintf(os.Stderr, "Warning: decompressed snapshot %d differs from the timeline\n", id)
		} else {
			fmt.Println("✅ Matches the timeline.")
		}
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
