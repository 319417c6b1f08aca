package delta

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/diff"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/lib"
	"github.com/gingerrexayers/ftrack-go/internal/ftrack/snapshot"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrNonSequential is returned when a timeline's identifiers are not
	// 1, 2, ..., n, which chain replay depends on.
	ErrNonSequential = errors.New("snapshot identifiers are not sequential")
	// ErrChainMismatch is returned when a stored record does not hold the
	// snapshot its position in the chain calls for.
	ErrChainMismatch = errors.New("delta chain mismatch")
)

// BaseRecordName is the file holding snapshot 1 in full.
const BaseRecordName = "snapshot_1.json"

// DeltaRecordName returns the file name of the delta producing snapshot id.
func DeltaRecordName(id int64) string {
	return "delta_" + strconv.FormatInt(id, 10) + ".json"
}

// Store persists a timeline as one full base record plus one delta per later
// snapshot, and rebuilds snapshots from those records.
type Store struct {
	dir    string
	logger *slog.Logger
	flight singleflight.Group
	// onReplay runs at the start of every chain replay.
	onReplay func(id int64)
}

// StoreOption configures a Store.
type StoreOption func(*Store)

func WithLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

func withReplayHook(hook func(id int64)) StoreOption {
	return func(s *Store) { s.onReplay = hook }
}

// NewStore opens the storage directory dir, creating it if needed.
func NewStore(dir string, opts ...StoreOption) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("storage directory %s is unusable: %w", dir, err)
	}
	s := &Store{dir: dir, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the storage directory.
func (s *Store) Dir() string { return s.dir }

func (s *Store) basePath() string { return filepath.Join(s.dir, BaseRecordName) }

func (s *Store) deltaPath(id int64) string { return filepath.Join(s.dir, DeltaRecordName(id)) }

// CompressSnapshot writes the record for snapshot id of tl: the full snapshot
// for id 1, otherwise the delta from snapshot id-1.
func (s *Store) CompressSnapshot(tl *snapshot.Timeline, id int64) (*Delta, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: snapshot %d", ErrNonSequential, id)
	}
	current, err := tl.Get(int(id - 1))
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id, err)
	}
	if current.ID != id {
		return nil, fmt.Errorf("%w: position %d holds snapshot %d", ErrNonSequential, id-1, current.ID)
	}

	if id == 1 {
		if err := lib.WriteJSON(s.basePath(), current.Record()); err != nil {
			return nil, fmt.Errorf("failed to write base snapshot: %w", err)
		}
		s.logger.Debug("wrote base snapshot", "id", id, "files", current.FileCount())
		return Create(nil, current), nil
	}

	previous, err := tl.Get(int(id - 2))
	if err != nil {
		return nil, fmt.Errorf("snapshot %d: %w", id-1, err)
	}
	if err := diff.CheckComparable(previous, current); err != nil {
		return nil, fmt.Errorf("delta %d: %w", id, err)
	}
	d := Create(previous, current)
	if err := lib.WriteJSON(s.deltaPath(id), d.Record()); err != nil {
		return nil, fmt.Errorf("failed to write delta %d: %w", id, err)
	}
	s.logger.Debug("wrote delta", "id", id,
		"added", len(d.Added), "deleted", len(d.Deleted), "updated", len(d.Updated))
	return d, nil
}

// CompressResult summarizes a Compress run.
type CompressResult struct {
	Records int
	Added   int
	Deleted int
	Updated int
}

// Compress writes every snapshot of tl to the store.
func (s *Store) Compress(tl *snapshot.Timeline) (CompressResult, error) {
	var res CompressResult
	for i, snap := range tl.All() {
		if snap.ID != int64(i+1) {
			return res, fmt.Errorf("%w: position %d holds snapshot %d", ErrNonSequential, i, snap.ID)
		}
	}

	for i := 1; i <= tl.Len(); i++ {
		d, err := s.CompressSnapshot(tl, int64(i))
		if err != nil {
			return res, err
		}
		res.Records++
		if i > 1 {
			res.Added += len(d.Added)
			res.Deleted += len(d.Deleted)
			res.Updated += len(d.Updated)
		}
	}
	return res, nil
}

// Decompress rebuilds snapshot id by replaying deltas 2..id over the base.
// Concurrent calls for the same id share one replay.
func (s *Store) Decompress(id int64) (*snapshot.Snapshot, error) {
	v, err, shared := s.flight.Do(strconv.FormatInt(id, 10), func() (any, error) {
		return s.replay(id)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("shared decompression result", "id", id)
	}
	return v.(*snapshot.Snapshot), nil
}

func (s *Store) replay(id int64) (*snapshot.Snapshot, error) {
	if id < 1 {
		return nil, fmt.Errorf("invalid snapshot id %d", id)
	}
	if s.onReplay != nil {
		s.onReplay(id)
	}

	baseRec, err := lib.ReadSnapshotRecord(s.basePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load base snapshot: %w", err)
	}
	if baseRec.ID != 1 {
		return nil, fmt.Errorf("%w: base record holds snapshot %d", ErrChainMismatch, baseRec.ID)
	}

	current := snapshot.FromRecord(baseRec)
	for k := int64(2); k <= id; k++ {
		rec, err := lib.ReadDeltaRecord(s.deltaPath(k))
		if err != nil {
			return nil, fmt.Errorf("failed to load delta %d: %w", k, err)
		}
		if rec.ID != k {
			return nil, fmt.Errorf("%w: %s holds delta %d", ErrChainMismatch, DeltaRecordName(k), rec.ID)
		}
		current = Apply(current, FromRecord(rec))
	}

	s.logger.Debug("decompressed snapshot", "id", id, "deltas", id-1, "files", current.FileCount())
	return current, nil
}

// StoredIDs returns the identifiers that can be rebuilt from the store: 1
// through the last delta in an unbroken chain, or nil when there is no base.
func (s *Store) StoredIDs() []int64 {
	if _, err := os.Stat(s.basePath()); err != nil {
		return nil
	}
	ids := []int64{1}
	for k := int64(2); ; k++ {
		if _, err := os.Stat(s.deltaPath(k)); err != nil {
			return ids
		}
		ids = append(ids, k)
	}
}
