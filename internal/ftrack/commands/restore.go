package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/restore"
)

// Restore makes outputDir match the snapshot at the given timeline index of
// sourceDir. outputDir must already exist. Files that cannot be deleted or
// written are reported individually and do not fail the command.
func Restore(sourceDir, selector, outputDir string) error {
	r, err := openRepo(sourceDir)
	if err != nil {
		return err
	}
	absOutputDir, err := filepath.Abs(outputDir)
	if err != nil {
		return fmt.Errorf("could not resolve output path: %w", err)
	}

	m, err := r.manager()
	if err != nil {
		return err
	}
	snap, err := resolveIndex(m, selector)
	if err != nil {
		return fmt.Errorf("failed to find snapshot %s to restore: %w", selector, err)
	}

	var source restore.Source = restore.FileSource{}
	if r.settings.KeepContent {
		source = restore.FirstOf(lib.NewObjectStore(r.dir), restore.FileSource{})
	}
	engine := restore.NewEngine(
		restore.WithLogger(r.logger),
		restore.WithSource(source),
		restore.WithSkip(func(rel string) bool {
			if rel == lib.RepoDirName || strings.HasPrefix(rel, lib.RepoDirName+"/") {
				return true
			}
			return lib.IsPathIgnored(absOutputDir, filepath.Join(absOutputDir, filepath.FromSlash(rel)))
		}),
	)

	fmt.Printf("💧 Restoring snapshot #%d to \"%s\"...\n", snap.ID, absOutputDir)

	report, err := engine.Restore(absOutputDir, snap)
	if err != nil {
		return err
	}

	for _, f := range report.Failures {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", f)
	}
	fmt.Printf("   - Deleted %d files, restored %d files\n", len(report.Deleted), len(report.Copied))
	if report.HasFailures() {
		fmt.Printf("⚠️  Restore finished with %d failed items.\n", len(report.Failures))
		return nil
	}
	fmt.Println("✅ Restore complete!")
	return nil
}
