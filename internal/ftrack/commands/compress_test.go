package commands_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/commands"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressAndDecompress(t *testing.T) {
	dir := t.TempDir()
	snapQuietly(t, dir)
	writeFile(t, dir, "a.txt", "one")
	snapQuietly(t, dir)
	writeFile(t, dir, "a.txt", "two")
	writeFile(t, dir, "b.txt", "bee")
	snapQuietly(t, dir)

	var err error
	out := captureStdout(t, func() { err = commands.Compress(dir, "") })
	require.NoError(t, err)
	assert.Contains(t, out, "Compressed 3 snapshots")
	assert.Contains(t, out, "2 added, 0 deleted, 1 updated")

	storage := filepath.Join(dir, lib.RepoDirName, lib.CompressedDirName)
	assert.FileExists(t, filepath.Join(storage, "snapshot_1.json"))
	assert.FileExists(t, filepath.Join(storage, "delta_3.json"))

	out = captureStdout(t, func() { err = commands.Decompress(dir, 3, "") })
	require.NoError(t, err)
	assert.Contains(t, out, "Snapshot #3")
	assert.Contains(t, out, "a.txt (3 bytes")
	assert.Contains(t, out, "b.txt (3 bytes")
	assert.Contains(t, out, "Matches the timeline.")
}

func TestCompressCustomStorage(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "x")
	snapQuietly(t, dir)
	storage := filepath.Join(t.TempDir(), "elsewhere")

	captureStdout(t, func() { require.NoError(t, commands.Compress(dir, storage)) })

	assert.FileExists(t, filepath.Join(storage, "snapshot_1.json"))
}

func TestDecompressMissingStore(t *testing.T) {
	dir := t.TempDir()

	err := commands.Decompress(dir, 2, filepath.Join(t.TempDir(), "empty"))
	assert.ErrorIs(t, err, lib.ErrRecordNotFound)
}

func TestCompressUnusableStorage(t *testing.T) {
	dir := t.TempDir()
	snapQuietly(t, dir)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := commands.Compress(dir, filepath.Join(blocker, "sub"))
	assert.Error(t, err)
}
