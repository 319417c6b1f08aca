package lib

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/xxh3"
)

// Supported content hash algorithms.
const (
	HashSHA256 = "sha256"
	HashXXH3   = "xxh3"
)

// ErrUnknownHashAlgorithm is returned when the configured algorithm is not
// available. It is a configuration error, never a per-file one.
var ErrUnknownHashAlgorithm = errors.New("unknown hash algorithm")

// Hasher computes fixed-length hex digests of file content.
type Hasher interface {
	Name() string
	HashBytes(data []byte) string
	HashFile(path string) (string, error)
}

// NewHasher returns the hasher for algorithm.
func NewHasher(algorithm string) (Hasher, error) {
	switch algorithm {
	case HashSHA256:
		return sha256Hasher{}, nil
	case HashXXH3:
		return xxh3Hasher{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHashAlgorithm, algorithm)
}

// GetHash returns the SHA-256 hex digest of content. Packfile names use it
// regardless of the configured content hasher.
func GetHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

type sha256Hasher struct{}

func (sha256Hasher) Name() string { return HashSHA256 }

func (sha256Hasher) HashBytes(data []byte) string { return GetHash(data) }

func (sha256Hasher) HashFile(path string) (string, error) {
	return streamHash(path, sha256.New())
}

type xxh3Hasher struct{}

func (xxh3Hasher) Name() string { return HashXXH3 }

func (xxh3Hasher) HashBytes(data []byte) string {
	sum := xxh3.Hash128(data).Bytes()
	return hex.EncodeToString(sum[:])
}

func (xxh3Hasher) HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxh3.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	sum := h.Sum128().Bytes()
	return hex.EncodeToString(sum[:]), nil
}

// streamHash hashes a file without loading it into memory.
func streamHash(path string, h hash.Hash) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
