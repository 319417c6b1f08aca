package lib

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

var metaMutex = &sync.Mutex{}

func getCounterPath(baseDir string) string {
	return filepath.Join(GetMetaDir(baseDir), "counter")
}

// GetNextSnapID returns the identifier the next snapshot of baseDir will
// receive. A missing or empty counter means 1.
func GetNextSnapID(baseDir string) (int64, error) {
	metaMutex.Lock()
	defer metaMutex.Unlock()

	content, err := os.ReadFile(getCounterPath(baseDir))
	if err != nil {
		if os.IsNotExist(err) {
			return 1, nil
		}
		return 0, err
	}
	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return 1, nil
	}
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("corrupt counter file %s: %q", getCounterPath(baseDir), trimmed)
	}
	return id, nil
}

// SaveNextSnapID persists next as the identifier of the next snapshot.
func SaveNextSnapID(baseDir string, next int64) error {
	metaMutex.Lock()
	defer metaMutex.Unlock()

	if err := os.MkdirAll(GetMetaDir(baseDir), 0755); err != nil {
		return err
	}
	return WriteFileAtomic(getCounterPath(baseDir), []byte(strconv.FormatInt(next, 10)), 0644)
}
