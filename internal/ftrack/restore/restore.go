// Package restore reconciles a directory with a snapshot.
//
// Restore runs four phases in order: list the regular files of the target,
// mark those the snapshot does not contain, delete them, then write every
// snapshot file into place. A failure on one file is recorded and the run
// continues. Only a target that is not a directory stops it, and that check
// happens before anything is touched.
package restore

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
)

// ErrUnsafePath is recorded for snapshot paths that would land outside the target.
var ErrUnsafePath = errors.New("path escapes restore target")

// ErrNotDirectory is returned when the restore target is missing or is not a
// directory.
var ErrNotDirectory = errors.New("restore target is not a directory")

// Operations recorded in a Failure.
const (
	OpEnumerate = "enumerate"
	OpDelete    = "delete"
	OpCopy      = "copy"
)

// Failure is one file the engine could not handle.
type Failure struct {
	Path string
	Op   string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// Report describes what a restore did. Paths are relative and slash-separated.
type Report struct {
	SnapshotID int64
	Target     string
	Deleted    []string
	Copied     []string
	Failures   []Failure
}

// HasFailures reports whether any file could not be handled.
func (r *Report) HasFailures() bool {
	return len(r.Failures) > 0
}

// Source opens the content recorded for a file.
type Source interface {
	Open(meta types.FileMetadata) (io.ReadCloser, error)
}

// FileSource reads content from the file's original absolute path.
type FileSource struct{}

func (FileSource) Open(meta types.FileMetadata) (io.ReadCloser, error) {
	return os.Open(meta.AbsolutePath)
}

type firstOf []Source

func (s firstOf) Open(meta types.FileMetadata) (io.ReadCloser, error) {
	var errs []error
	for _, src := range s {
		rc, err := src.Open(meta)
		if err == nil {
			return rc, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// FirstOf returns a Source that tries each source in turn.
func FirstOf(sources ...Source) Source {
	return firstOf(sources)
}

// Engine restores snapshots into directories.
type Engine struct {
	logger *slog.Logger
	source Source
	skip   func(rel string) bool
	remove func(path string) error
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithSource sets where file content is read from. The default is
// FileSource.
func WithSource(src Source) Option {
	return func(e *Engine) { e.source = src }
}

// WithSkip excludes target paths from reconciliation. skip receives the
// slash-separated relative path of files and directories; a skipped directory
// is not descended into. Skipped files are never deleted.
func WithSkip(skip func(rel string) bool) Option {
	return func(e *Engine) { e.skip = skip }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{logger: slog.Default(), source: FileSource{}, remove: os.Remove}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore makes targetDir match snap.
func (e *Engine) Restore(targetDir string, snap *snapshot.Snapshot) (*Report, error) {
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", targetDir, err)
	}
	info, err := os.Stat(absTarget)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, absTarget, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absTarget)
	}

	report := &Report{Target: absTarget}
	if snap != nil {
		report.SnapshotID = snap.ID
	}

	current := e.enumerate(absTarget, report)
	doomed := classify(current, snap)
	e.deleteAll(absTarget, doomed, report)
	e.copyAll(absTarget, snap, report)

	e.logger.Info("restore finished", "target", absTarget, "snapshot", report.SnapshotID,
		"deleted", len(report.Deleted), "copied", len(report.Copied), "failures", len(report.Failures))
	return report, nil
}

// enumerate lists the regular files under root as relative slash paths.
func (e *Engine) enumerate(root string, report *Report) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.fail(report, Failure{Path: path, Op: OpEnumerate, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			e.fail(report, Failure{Path: path, Op: OpEnumerate, Err: err})
			return nil
		}
		rel = filepath.ToSlash(rel)
		if e.skip != nil && e.skip(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			files = append(files, rel)
		}
		return nil
	})
	return files
}

// classify returns the files absent from snap. Only the path matters here.
func classify(files []string, snap *snapshot.Snapshot) []string {
	var doomed []string
	for _, rel := range files {
		if _, ok := snap.Lookup(rel); !ok {
			doomed = append(doomed, rel)
		}
	}
	return doomed
}

func (e *Engine) deleteAll(root string, doomed []string, report *Report) {
	for _, rel := range doomed {
		if err := e.remove(filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			e.fail(report, Failure{Path: rel, Op: OpDelete, Err: err})
			continue
		}
		report.Deleted = append(report.Deleted, rel)
	}
}

func (e *Engine) copyAll(root string, snap *snapshot.Snapshot, report *Report) {
	snap.Walk(func(rel string, meta types.FileMetadata) {
		if err := e.copyOne(root, meta); err != nil {
			e.fail(report, Failure{Path: rel, Op: OpCopy, Err: err})
			return
		}
		report.Copied = append(report.Copied, rel)
	})
}

func (e *Engine) copyOne(root string, meta types.FileMetadata) error {
	local := filepath.FromSlash(meta.Path)
	if !filepath.IsLocal(local) {
		return ErrUnsafePath
	}
	dest := filepath.Join(root, local)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	if info, err := os.Lstat(dest); err == nil && info.IsDir() {
		// A directory emptied by the delete phase gives way to the file.
		if err := removeEmptyTree(dest); err != nil {
			return fmt.Errorf("directory in place of file: %w", err)
		}
	}
	rc, err := e.source.Open(meta)
	if err != nil {
		return err
	}
	defer rc.Close()
	return lib.WriteStreamAtomic(dest, rc, 0644)
}

// removeEmptyTree removes dir and any subdirectories that hold no files. It
// fails without touching files if anything other than directories remains.
func removeEmptyTree(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		if ent.IsDir() {
			if err := removeEmptyTree(filepath.Join(dir, ent.Name())); err != nil {
				return err
			}
		}
	}
	return os.Remove(dir)
}

func (e *Engine) fail(report *Report, f Failure) {
	e.logger.Warn("restore item failed", "op", f.Op, "path", f.Path, "error", f.Err)
	report.Failures = append(report.Failures, f)
}
