package lib

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when a path that must be a directory is missing
// or is something else.
var ErrNotDirectory = errors.New("not a directory")

// ScanError is a per-file failure during a scan. The scan itself continues.
type ScanError struct {
	Path string
	Err  error
}

func (e ScanError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ScanError) Unwrap() error { return e.Err }

// ScanResult holds the files found under a root, sorted by relative path, and
// every file that could not be read.
type ScanResult struct {
	Root   string
	Files  []types.FileMetadata
	Errors []ScanError
}

// TotalSize sums the size of all scanned files.
func (r *ScanResult) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}

// ScanOptions configures ScanDirectory. Zero values select SHA-256, no ignore
// rules, one worker per CPU and the default logger.
type ScanOptions struct {
	Hasher  Hasher
	Ignore  func(path string) bool
	Workers int
	Logger  *slog.Logger
}

type scanJob struct {
	rel  string
	abs  string
	info fs.FileInfo
}

// ScanDirectory walks root and returns metadata for every regular file under
// it. Symlinks and other non-regular entries are skipped. Files that cannot be
// stat'ed or hashed are reported in ScanResult.Errors. Only a missing root, a
// root that is not a directory, or a cancelled context fail the whole scan.
func ScanDirectory(ctx context.Context, root string, opts ScanOptions) (*ScanResult, error) {
	if opts.Hasher == nil {
		opts.Hasher = sha256Hasher{}
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, absRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, absRoot)
	}

	result := &ScanResult{Root: absRoot}
	var jobs []scanJob

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == absRoot {
				return err
			}
			result.Errors = append(result.Errors, ScanError{Path: path, Err: err})
			return nil
		}
		if path == absRoot {
			return nil
		}
		if opts.Ignore != nil && opts.Ignore(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			result.Errors = append(result.Errors, ScanError{Path: path, Err: err})
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			result.Errors = append(result.Errors, ScanError{Path: path, Err: err})
			return nil
		}
		jobs = append(jobs, scanJob{rel: filepath.ToSlash(rel), abs: path, info: fi})
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", absRoot, walkErr)
	}

	files := make([]types.FileMetadata, len(jobs))
	hashed := make([]bool, len(jobs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			hash, err := opts.Hasher.HashFile(job.abs)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, ScanError{Path: job.abs, Err: err})
				mu.Unlock()
				return nil
			}
			files[i] = types.FileMetadata{
				Path:         job.rel,
				AbsolutePath: job.abs,
				Size:         job.info.Size(),
				ModTime:      job.info.ModTime().UTC(),
				Hash:         hash,
			}
			hashed[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan of %s interrupted: %w", absRoot, err)
	}

	result.Files = make([]types.FileMetadata, 0, len(files))
	for i, f := range files {
		if hashed[i] {
			result.Files = append(result.Files, f)
		}
	}
	sort.Slice(result.Files, func(i, j int) bool {
		return result.Files[i].Path < result.Files[j].Path
	})
	sort.Slice(result.Errors, func(i, j int) bool {
		return result.Errors[i].Path < result.Errors[j].Path
	})

	for _, se := range result.Errors {
		opts.Logger.Warn("skipping unreadable file", "path", se.Path, "error", se.Err)
	}
	opts.Logger.Debug("scan complete", "root", absRoot, "files", len(result.Files), "errors", len(result.Errors))
	return result, nil
}
