package lib

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gingerrexayers/ftrack-go/internal/ftrack/types"
)

// Record decoding failures. All of them mean the file cannot be trusted.
var (
	ErrRecordFormat   = errors.New("not an ftrack record")
	ErrRecordVersion  = errors.New("unsupported record version")
	ErrRecordKind     = errors.New("unexpected record kind")
	ErrRecordNotFound = errors.New("record not found")
)

// WriteJSON encodes v as indented JSON and writes it atomically to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0644)
}

// ReadSnapshotRecord reads and validates a full snapshot record.
func ReadSnapshotRecord(path string) (types.SnapshotRecord, error) {
	var rec types.SnapshotRecord
	err := readRecord(path, types.KindSnapshot, &rec)
	return rec, err
}

// ReadDeltaRecord reads and validates a delta record.
func ReadDeltaRecord(path string) (types.DeltaRecord, error) {
	var rec types.DeltaRecord
	err := readRecord(path, types.KindDelta, &rec)
	return rec, err
}

// DecodeRecord validates the header of data and decodes it into v. Unknown
// fields are rejected so that a record written by a newer layout is never
// half-read.
func DecodeRecord(data []byte, kind string, v any) error {
	var header types.RecordHeader
	if err := json.Unmarshal(data, &header); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordFormat, err)
	}
	if header.Format != types.RecordFormat {
		return fmt.Errorf("%w: format %q", ErrRecordFormat, header.Format)
	}
	if header.Version != types.RecordVersion {
		return fmt.Errorf("%w: %d (supported: %d)", ErrRecordVersion, header.Version, types.RecordVersion)
	}
	if header.Kind != kind {
		return fmt.Errorf("%w: got %q, want %q", ErrRecordKind, header.Kind, kind)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrRecordFormat, err)
	}
	return nil
}

func readRecord(path, kind string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, path)
		}
		return fmt.Errorf("failed to read record %s: %w", path, err)
	}
	if err := DecodeRecord(data, kind, v); err != nil {
		return fmt.Errorf("record %s: %w", path, err)
	}
	return nil
}
