package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
)

// Snap captures the current state of targetDirectory as a new snapshot.
func Snap(targetDirectory string) error {
	r, err := openRepo(targetDirectory)
	if err != nil {
		return err
	}

	fmt.Printf("📷 Starting snap for \"%s\"...\n", r.dir)

	if _, err := lib.EnsureRepoDirs(r.dir); err != nil {
		return fmt.Errorf("failed to ensure %s directories: %w", lib.RepoDirName, err)
	}

	m, err := r.manager()
	if err != nil {
		return err
	}

	if last := m.Timeline().Last(); last != nil && last.HashAlgorithm != "" && last.HashAlgorithm != r.hasher.Name() {
		fmt.Fprintf(os.Stderr, "Warning: hash_algorithm changed from %s to %s; snapshots taken before this one cannot be diffed against it\n",
			last.HashAlgorithm, r.hasher.Name())
	}

	// 1. Scan and hash every tracked file.
	scan, err := lib.ScanDirectory(context.Background(), r.dir, lib.ScanOptions{
		Hasher: r.hasher,
		Ignore: lib.IgnoreFunc(r.dir),
		Logger: r.logger,
	})
	if err != nil {
		return fmt.Errorf("error scanning files: %w", err)
	}
	fmt.Printf("   - Found %d files (%s)\n", len(scan.Files), formatBytes(scan.TotalSize(), 2))
	for _, se := range scan.Errors {
		fmt.Fprintf(os.Stderr, "Warning: skipped %s: %v\n", se.Path, se.Err)
	}

	// 2. Keep file content so restore does not depend on the working tree.
	var stored int64
	if r.settings.KeepContent {
		store := lib.NewObjectStore(r.dir)
		for _, f := range scan.Files {
			if _, err := store.PutFile(f); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: could not store content of %s: %v\n", f.Path, err)
			}
		}
		if stored, err = store.Commit(); err != nil {
			return fmt.Errorf("failed to commit file content: %w", err)
		}
	}

	// 3. Record the snapshot and advance the counter.
	s := m.TakeSnapshot(scan.Files)
	if err := lib.SaveSnapshot(r.dir, s); err != nil {
		return err
	}
	if err := lib.SaveNextSnapID(r.dir, m.NextID()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to save snapshot counter: %v\n", err)
	}

	fmt.Println("✅ Snap complete!")
	fmt.Printf("   - Snapshot ID: %d\n", s.ID)
	fmt.Printf("   - Timeline index: %d\n", m.Timeline().Len()-1)
	if r.settings.KeepContent {
		fmt.Printf("   - New content stored: %s\n", formatBytes(stored, 2))
	}
	return nil
}
