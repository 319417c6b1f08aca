package lib

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
)

// WriteStreamAtomic writes the content of r to path through a temporary file
// in the same directory, then renames it into place. An existing file at path
// is overwritten; on failure it is left untouched.
func WriteStreamAtomic(path string, r io.Reader, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ftrack-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op after a successful rename

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// WriteFileAtomic is WriteStreamAtomic for in-memory data.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	return WriteStreamAtomic(path, bytes.NewReader(data), perm)
}

// CopyFile copies src to dst, overwriting dst if it exists. Copying a file
// onto itself leaves it intact.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	return WriteStreamAtomic(dst, in, info.Mode().Perm())
}
