// Package lib contains the repository services shared by the ftrack commands:
// on-disk layout, settings, hashing, scanning, record encoding and storage.
package lib

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/denormal/go-gitignore"
)

// RepoDirName is the name of the directory holding all ftrack data.
const RepoDirName = ".ftrack"

// SnapsDirName holds one full snapshot record per identifier.
const SnapsDirName = "snaps"

// PacksDirName holds packfiles of stored file content.
const PacksDirName = "packs"

// MetaDirName holds the identifier counter.
const MetaDirName = "meta"

// CompressedDirName is the default storage directory for compressed timelines.
const CompressedDirName = "compressed"

// IgnoreFilename is the name of the file containing user-defined ignore patterns.
const IgnoreFilename = ".ftrackignore"

// defaultIgnorePatterns are always applied, before any user patterns.
var defaultIgnorePatterns = []string{
	".git/**",
	RepoDirName + "/**",
	IgnoreFilename,
}

var (
	// ignoreCache maps a canonical directory to its compiled matcher. The
	// gitignore library is not safe for concurrent use, so all matching goes
	// through cacheMutex.
	ignoreCache = make(map[string]gitignore.GitIgnore)
	cacheMutex  = &sync.Mutex{}
)

// GetRepoDir returns the path to the .ftrack directory for baseDir.
func GetRepoDir(baseDir string) string {
	return filepath.Join(baseDir, RepoDirName)
}

func GetSnapsDir(baseDir string) string {
	return filepath.Join(GetRepoDir(baseDir), SnapsDirName)
}

func GetPacksDir(baseDir string) string {
	return filepath.Join(GetRepoDir(baseDir), PacksDirName)
}

func GetMetaDir(baseDir string) string {
	return filepath.Join(GetRepoDir(baseDir), MetaDirName)
}

// GetIndexPath returns the path to the packfile index.
func GetIndexPath(baseDir string) string {
	return filepath.Join(GetRepoDir(baseDir), "index.json")
}

// GetSettingsPath returns the path to the repository settings file.
func GetSettingsPath(baseDir string) string {
	return filepath.Join(GetRepoDir(baseDir), "config.yaml")
}

// RepoPaths holds the resolved repository directories.
type RepoPaths struct {
	RepoDir  string
	SnapsDir string
	PacksDir string
	MetaDir  string
}

// EnsureRepoDirs creates the repository directories under baseDir if they do
// not exist yet.
func EnsureRepoDirs(baseDir string) (RepoPaths, error) {
	paths := RepoPaths{
		RepoDir:  GetRepoDir(baseDir),
		SnapsDir: GetSnapsDir(baseDir),
		PacksDir: GetPacksDir(baseDir),
		MetaDir:  GetMetaDir(baseDir),
	}
	for _, dir := range []string{paths.SnapsDir, paths.PacksDir, paths.MetaDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return RepoPaths{}, err
		}
	}
	return paths, nil
}

// IsPathIgnored reports whether path, which lives under baseDir, matches the
// default or .ftrackignore patterns of baseDir.
func IsPathIgnored(baseDir, path string) bool {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	// Both sides of filepath.Rel must be canonical (e.g. /var vs /private/var on macOS).
	canonicalBaseDir, err := filepath.EvalSymlinks(baseDir)
	if err != nil {
		canonicalBaseDir = baseDir
	}

	matcher, found := ignoreCache[canonicalBaseDir]
	if !found {
		matcher = loadIgnoreMatcher(canonicalBaseDir)
		ignoreCache[canonicalBaseDir] = matcher
	}

	canonicalPath, err := filepath.EvalSymlinks(path)
	if err != nil {
		canonicalPath = path
	}

	relativePath, err := filepath.Rel(canonicalBaseDir, canonicalPath)
	if err != nil {
		return false
	}

	match := matcher.Match(filepath.ToSlash(relativePath))
	if match == nil {
		match = matcher.Match(canonicalPath)
	}
	if match == nil {
		return false
	}
	return match.Ignore()
}

// IgnoreFunc adapts IsPathIgnored to a predicate for one root.
func IgnoreFunc(baseDir string) func(path string) bool {
	return func(path string) bool {
		return IsPathIgnored(baseDir, path)
	}
}

func loadIgnoreMatcher(baseDir string) gitignore.GitIgnore {
	rawPatterns := make([]string, len(defaultIgnorePatterns))
	copy(rawPatterns, defaultIgnorePatterns)

	if content, err := os.ReadFile(filepath.Join(baseDir, IgnoreFilename)); err == nil {
		rawPatterns = append(rawPatterns, strings.Split(string(content), "\n")...)
	}

	var patterns []string
	for _, p := range rawPatterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		trimmed = strings.ReplaceAll(trimmed, "\\", "/")
		// "dir/" only matches the directory itself; "dir/**" also matches its files.
		if strings.HasSuffix(trimmed, "/") && !strings.HasSuffix(trimmed, "**/") {
			trimmed += "**"
		}
		patterns = append(patterns, trimmed)
	}

	matcher := gitignore.New(
		strings.NewReader(strings.Join(patterns, "\n")),
		baseDir,
		func(err gitignore.Error) bool { return false },
	)
	if matcher == nil {
		return gitignore.New(strings.NewReader(""), "", nil)
	}
	return matcher
}

// ResetIgnoreState clears the ignore cache. Tests use it after rewriting an
// ignore file.
func ResetIgnoreState() {
	cacheMutex.Lock()
	defer cacheMutex.Unlock()
	ignoreCache = make(map[string]gitignore.GitIgnore)
}
