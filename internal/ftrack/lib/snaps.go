package lib

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
)

// GetSnapshotPath returns the record path of snapshot id.
func GetSnapshotPath(baseDir string, id int64) string {
	return filepath.Join(GetSnapsDir(baseDir), strconv.FormatInt(id, 10)+".json")
}

// SaveSnapshot persists s as a full record.
func SaveSnapshot(baseDir string, s *snapshot.Snapshot) error {
	if err := os.MkdirAll(GetSnapsDir(baseDir), 0755); err != nil {
		return err
	}
	if err := WriteJSON(GetSnapshotPath(baseDir, s.ID), s.Record()); err != nil {
		return fmt.Errorf("failed to write snapshot %d: %w", s.ID, err)
	}
	return nil
}

// LoadSnapshots reads every snapshot record of baseDir, oldest first. A record
// that cannot be decoded fails the whole load.
func LoadSnapshots(baseDir string) ([]*snapshot.Snapshot, error) {
	snapsDir := GetSnapsDir(baseDir)
	dirEntries, err := os.ReadDir(snapsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var snaps []*snapshot.Snapshot
	for _, entry := range dirEntries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil {
			continue // not a snapshot record
		}
		rec, err := ReadSnapshotRecord(filepath.Join(snapsDir, name))
		if err != nil {
			return nil, err
		}
		if rec.ID != id {
			return nil, fmt.Errorf("%w: %s holds snapshot %d", ErrRecordFormat, name, rec.ID)
		}
		snaps = append(snaps, snapshot.FromRecord(rec))
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].ID < snaps[j].ID })
	return snaps, nil
}

// LoadManager rebuilds the snapshot manager of baseDir from its records and
// identifier counter. opts are applied after the defaults.
func LoadManager(baseDir string, logger *slog.Logger, opts ...snapshot.ManagerOption) (*snapshot.Manager, error) {
	snaps, err := LoadSnapshots(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}
	next, err := GetNextSnapID(baseDir)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts = append([]snapshot.ManagerOption{snapshot.WithNextID(next), snapshot.WithLogger(logger)}, opts...)
	m := snapshot.NewManager(opts...)
	if err := m.Load(snaps...); err != nil {
		return nil, err
	}
	return m, nil
}
