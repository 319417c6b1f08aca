package lib

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings are the per-repository options read from .ftrack/config.yaml.
type Settings struct {
	// HashAlgorithm names the content hash: "sha256" or "xxh3".
	HashAlgorithm string `yaml:"hash_algorithm"`
	// StorageDir is where compress writes its records. Relative paths are
	// resolved against the tracked directory.
	StorageDir string `yaml:"storage_dir"`
	// KeepContent stores file content in packfiles at snap time so that
	// restore does not depend on the original files.
	KeepContent bool `yaml:"keep_content"`
	// LogLevel is used when no --log-level flag is given.
	LogLevel string `yaml:"log_level"`
}

func DefaultSettings() *Settings {
	return &Settings{
		HashAlgorithm: HashSHA256,
		StorageDir:    filepath.Join(RepoDirName, CompressedDirName),
		KeepContent:   true,
		LogLevel:      "warn",
	}
}

// LoadSettings reads the settings of the repository rooted at baseDir.
// A missing file yields the defaults; fields absent from the file keep their
// default values.
func LoadSettings(baseDir string) (*Settings, error) {
	path := GetSettingsPath(baseDir)
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return settings, nil
		}
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings YAML %s: %w", path, err)
	}
	if _, err := NewHasher(settings.HashAlgorithm); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	if _, err := ParseLevel(settings.LogLevel); err != nil {
		return nil, fmt.Errorf("invalid settings %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings writes s to the settings file of baseDir.
func SaveSettings(baseDir string, s *Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.MkdirAll(GetRepoDir(baseDir), 0755); err != nil {
		return err
	}
	return WriteFileAtomic(GetSettingsPath(baseDir), data, 0644)
}

// ResolveStorageDir returns the absolute storage directory for baseDir.
func (s *Settings) ResolveStorageDir(baseDir string) string {
	if filepath.IsAbs(s.StorageDir) {
		return s.StorageDir
	}
	return filepath.Join(baseDir, s.StorageDir)
}

// Hasher returns the configured content hasher.
func (s *Settings) Hasher() (Hasher, error) {
	return NewHasher(s.HashAlgorithm)
}
