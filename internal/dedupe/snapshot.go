package dedupe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"dropwatch/internal/logging"
)

const snapshotVersion = 1

// Snapshot is the on-disk representation of the fingerprint map. The format
// is versioned so future schema changes can migrate old files.
type Snapshot struct {
	Version             int       `json:"version"`
	ExportedAt          time.Time `json:"exported_at"`
	TotalItems          int       `json:"total_items"`
	LimitedEditionItems int       `json:"limited_edition_items"`
	Records             []Record  `json:"records"`
}

// Export writes the fingerprint map to path as JSON. The write is atomic
// (temp file + rename) and guarded by a sidecar flock so concurrent dropwatch
// processes cannot interleave snapshot writes.
func (s *Store) Export(path string) error {
	if path == "" {
		return errors.New("snapshot path is empty")
	}

	release, err := lockSnapshot(path)
	if err != nil {
		return err
	}
	defer release()

	s.mu.RLock()
	snapshot := Snapshot{
		Version:             snapshotVersion,
		ExportedAt:          s.now().UTC(),
		TotalItems:          s.admitted,
		LimitedEditionItems: s.limited,
		Records:             make([]Record, 0, len(s.records)),
	}
	for _, record := range s.records {
		snapshot.Records = append(snapshot.Records, record)
	}
	s.mu.RUnlock()

	// Sort for deterministic output.
	sort.Slice(snapshot.Records, func(i, j int) bool {
		return snapshot.Records[i].Fingerprint < snapshot.Records[j].Fingerprint
	})

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp snapshot: %w", err)
	}

	s.logger.Debug("exported dedupe snapshot",
		logging.String("path", path),
		logging.Int("records", len(snapshot.Records)))
	return nil
}

// Import replaces the fingerprint map with the snapshot at path. A missing
// file is not an error; the store simply starts empty. Records without a
// fingerprint are skipped.
func (s *Store) Import(path string) error {
	if path == "" {
		return errors.New("snapshot path is empty")
	}

	release, err := lockSnapshot(path)
	if err != nil {
		return err
	}
	defer release()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}
	if snapshot.Version != snapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	records := make(map[string]Record, len(snapshot.Records))
	for _, record := range snapshot.Records {
		if record.Fingerprint == "" {
			continue
		}
		records[record.Fingerprint] = record
	}

	s.mu.Lock()
	s.records = records
	s.admitted = snapshot.TotalItems
	s.limited = snapshot.LimitedEditionItems
	s.mu.Unlock()

	s.logger.Info("imported dedupe snapshot",
		logging.String("path", path),
		logging.Int("records", len(records)))
	return nil
}

func lockSnapshot(path string) (func(), error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock snapshot: %w", err)
	}
	return func() {
		_ = lock.Unlock()
	}, nil
}
