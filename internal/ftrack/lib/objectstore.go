package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
)

// ObjectStore keeps whole-file content keyed by content hash. New objects are
// buffered in memory until Commit writes them into a single packfile and
// records their location in index.json.
type ObjectStore struct {
	baseDir string

	mu          sync.Mutex
	index       types.PackIndex
	indexLoaded bool
	pending     map[string][]byte
}

func NewObjectStore(baseDir string) *ObjectStore {
	return &ObjectStore{
		baseDir: baseDir,
		pending: make(map[string][]byte),
	}
}

// loadIndex must be called with s.mu held.
func (s *ObjectStore) loadIndex() error {
	if s.indexLoaded {
		return nil
	}
	content, err := os.ReadFile(GetIndexPath(s.baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			s.index = make(types.PackIndex)
			s.indexLoaded = true
			return nil
		}
		return err
	}
	var idx types.PackIndex
	if err := json.Unmarshal(content, &idx); err != nil {
		return fmt.Errorf("corrupt pack index: %w", err)
	}
	if idx == nil {
		idx = make(types.PackIndex)
	}
	s.index = idx
	s.indexLoaded = true
	return nil
}

// Put buffers data under hash unless the store already holds it. It reports
// whether the object was new.
func (s *ObjectStore) Put(hash string, data []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadIndex(); err != nil {
		return false, err
	}
	if _, ok := s.index[hash]; ok {
		return false, nil
	}
	if _, ok := s.pending[hash]; ok {
		return false, nil
	}
	s.pending[hash] = data
	return true, nil
}

// PutFile stores the content of the file described by meta under meta.Hash.
// The content is skipped when the store already has that hash.
func (s *ObjectStore) PutFile(meta types.FileMetadata) (bool, error) {
	if s.Has(meta.Hash) {
		return false, nil
	}
	data, err := os.ReadFile(meta.AbsolutePath)
	if err != nil {
		return false, err
	}
	return s.Put(meta.Hash, data)
}

// WriteObject stores data under its SHA-256 hash and returns the hash.
func (s *ObjectStore) WriteObject(data []byte) (string, error) {
	hash := GetHash(data)
	_, err := s.Put(hash, data)
	return hash, err
}

// Has reports whether hash is committed or pending.
func (s *ObjectStore) Has(hash string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[hash]; ok {
		return true
	}
	if err := s.loadIndex(); err != nil {
		return false
	}
	_, ok := s.index[hash]
	return ok
}

// PendingObjectCount returns the number of objects waiting for Commit.
func (s *ObjectStore) PendingObjectCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Commit writes all pending objects to one new packfile and updates the
// index. It returns the packfile size, which is 0 when nothing was pending.
func (s *ObjectStore) Commit() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return 0, nil
	}
	if err := s.loadIndex(); err != nil {
		return 0, err
	}

	// Sorted so that the same pending set always yields the same packfile.
	hashes := make([]string, 0, len(s.pending))
	for hash := range s.pending {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	var pack bytes.Buffer
	entries := make(map[string]types.PackIndexEntry, len(hashes))
	for _, hash := range hashes {
		data := s.pending[hash]
		entries[hash] = types.PackIndexEntry{Offset: int64(pack.Len()), Length: int64(len(data))}
		pack.Write(data)
	}

	packHash := GetHash(pack.Bytes())
	packsDir := GetPacksDir(s.baseDir)
	if err := os.MkdirAll(packsDir, 0755); err != nil {
		return 0, err
	}
	if err := WriteFileAtomic(filepath.Join(packsDir, packHash), pack.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("failed to write packfile: %w", err)
	}

	for hash, entry := range entries {
		entry.PackHash = packHash
		s.index[hash] = entry
	}
	if err := WriteJSON(GetIndexPath(s.baseDir), s.index); err != nil {
		return 0, fmt.Errorf("failed to write pack index: %w", err)
	}

	s.pending = make(map[string][]byte)
	return int64(pack.Len()), nil
}

// ReadObject returns the content stored under hash.
func (s *ObjectStore) ReadObject(hash string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.pending[hash]; ok {
		return data, nil
	}
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	entry, ok := s.index[hash]
	if !ok {
		return nil, fmt.Errorf("object %s not found in index", hash)
	}

	f, err := os.Open(filepath.Join(GetPacksDir(s.baseDir), entry.PackHash))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]byte, entry.Length)
	if _, err := f.ReadAt(buf, entry.Offset); err != nil {
		return nil, fmt.Errorf("failed to read object %s from pack %s: %w", hash, entry.PackHash, err)
	}
	return buf, nil
}

// Open returns the stored content of the file described by meta.
func (s *ObjectStore) Open(meta types.FileMetadata) (io.ReadCloser, error) {
	data, err := s.ReadObject(meta.Hash)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// GetIndex returns a copy of the committed index.
func (s *ObjectStore) GetIndex() (types.PackIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	out := make(types.PackIndex, len(s.index))
	for k, v := range s.index {
		out[k] = v
	}
	return out, nil
}

// StoredSize returns the combined size of all packfiles on disk.
func (s *ObjectStore) StoredSize() (int64, error) {
	entries, err := os.ReadDir(GetPacksDir(s.baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}
	var total int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}
