package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/restore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRestoreTest creates a repository with one snapshot of two files.
func setupRestoreTest(t *testing.T) string {
	sourceDir := t.TempDir()
	writeFile(t, sourceDir, "fileA.txt", "restore me")
	writeFile(t, sourceDir, "subdir/fileB.txt", "me too")
	snapQuietly(t, sourceDir)
	return sourceDir
}

func TestRestoreToNewDirectory(t *testing.T) {
	sourceDir := setupRestoreTest(t)
	outputDir := t.TempDir()
	writeFile(t, outputDir, "stray.txt", "should go")

	var err error
	out := captureStdout(t, func() { err = commands.Restore(sourceDir, "0", outputDir) })

	require.NoError(t, err)
	assert.Contains(t, out, "Restore complete!")
	assert.Equal(t, "restore me", readFile(t, outputDir, "fileA.txt"))
	assert.Equal(t, "me too", readFile(t, outputDir, "subdir/fileB.txt"))
	assert.NoFileExists(t, filepath.Join(outputDir, "stray.txt"))
}

func TestRestoreUsesStoredContent(t *testing.T) {
	sourceDir := setupRestoreTest(t)
	// The working tree moves on after the snapshot.
	writeFile(t, sourceDir, "fileA.txt", "edited later")
	require.NoError(t, os.Remove(filepath.Join(sourceDir, "subdir", "fileB.txt")))
	outputDir := t.TempDir()

	captureStdout(t, func() { require.NoError(t, commands.Restore(sourceDir, "0", outputDir)) })

	assert.Equal(t, "restore me", readFile(t, outputDir, "fileA.txt"))
	assert.Equal(t, "me too", readFile(t, outputDir, "subdir/fileB.txt"))
}

func TestRestoreInPlaceKeepsRepository(t *testing.T) {
	sourceDir := setupRestoreTest(t)
	writeFile(t, sourceDir, "fileA.txt", "edited")
	writeFile(t, sourceDir, "new.txt", "added after snap")
	snapQuietly(t, sourceDir)

	captureStdout(t, func() { require.NoError(t, commands.Restore(sourceDir, "0", sourceDir)) })

	assert.Equal(t, "restore me", readFile(t, sourceDir, "fileA.txt"))
	assert.NoFileExists(t, filepath.Join(sourceDir, "new.txt"))
	snaps, err := lib.LoadSnapshots(sourceDir)
	require.NoError(t, err)
	assert.Len(t, snaps, 2, "the repository directory must survive an in-place restore")
}

func TestRestoreReportsMissingContent(t *testing.T) {
	sourceDir := t.TempDir()
	settings := lib.DefaultSettings()
	settings.KeepContent = false
	require.NoError(t, lib.SaveSettings(sourceDir, settings))
	writeFile(t, sourceDir, "a.txt", "a")
	writeFile(t, sourceDir, "b.txt", "b")
	snapQuietly(t, sourceDir)
	require.NoError(t, os.Remove(filepath.Join(sourceDir, "b.txt")))
	outputDir := t.TempDir()

	var err error
	out := captureStdout(t, func() { err = commands.Restore(sourceDir, "0", outputDir) })

	require.NoError(t, err, "per-file failures do not fail the command")
	assert.Contains(t, out, "1 failed items")
	assert.Equal(t, "a", readFile(t, outputDir, "a.txt"))
}

func TestRestoreErrors(t *testing.T) {
	sourceDir := setupRestoreTest(t)

	err := commands.Restore(sourceDir, "3", t.TempDir())
	assert.Error(t, err)

	err = commands.Restore(sourceDir, "0", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, restore.ErrNotDirectory)
}
