// Package commands implements the ftrack command-line operations.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
)

var (
	levelMu       sync.Mutex
	levelOverride *slog.Level
)

// SetLogLevel forces the log level for every command, ignoring the
// repository settings. An empty name clears the override.
func SetLogLevel(name string) error {
	levelMu.Lock()
	defer levelMu.Unlock()
	if name == "" {
		levelOverride = nil
		return nil
	}
	lvl, err := lib.ParseLevel(name)
	if err != nil {
		return err
	}
	levelOverride = &lvl
	return nil
}

// repo is an opened tracked directory.
type repo struct {
	dir      string
	settings *lib.Settings
	hasher   lib.Hasher
	logger   *slog.Logger
}

func openRepo(dir string) (*repo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("could not resolve absolute path for %s: %w", dir, err)
	}
	info, err := os.Stat(absDir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("target directory does not exist: %s", absDir)
	}

	settings, err := lib.LoadSettings(absDir)
	if err != nil {
		return nil, err
	}
	hasher, err := settings.Hasher()
	if err != nil {
		return nil, err
	}
	level, err := lib.ParseLevel(settings.LogLevel)
	if err != nil {
		return nil, err
	}
	levelMu.Lock()
	if levelOverride != nil {
		level = *levelOverride
	}
	levelMu.Unlock()

	return &repo{
		dir:      absDir,
		settings: settings,
		hasher:   hasher,
		logger:   lib.NewLogger(level, os.Stderr),
	}, nil
}

func (r *repo) manager() (*snapshot.Manager, error) {
	return lib.LoadManager(r.dir, r.logger, snapshot.WithHashAlgorithm(r.hasher.Name()))
}

// resolveIndex parses a timeline position as shown by `ftrack list`.
func resolveIndex(m *snapshot.Manager, selector string) (*snapshot.Snapshot, error) {
	i, err := strconv.Atoi(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid snapshot index %q", selector)
	}
	s, err := m.Get(i)
	if err != nil {
		return nil, fmt.Errorf("no snapshot at index %d: %w", i, err)
	}
	return s, nil
}
