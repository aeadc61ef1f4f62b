package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/revio-dev/revio/pkg/shared/files"
)

// Store persists job records.
type Store interface {
	Save(rec *Record) error
	Get(jobID string) (*Record, error)
	Sweep() (int, error)
}

// FileStore keeps one JSON file per job under a folder. Writes go through a
// temp file and a rename so a concurrent reader never sees a partial record.
type FileStore struct {
	dir    string
	ttl    time.Duration
	logger hclog.Logger
}

// NewFileStore creates the store folder if needed.
func NewFileStore(dir string, ttl time.Duration, logger hclog.Logger) (*FileStore, error) {
	if err := files.CreateFolderIfNotExists(dir); err != nil {
		return nil, fmt.Errorf("preparing job store folder: %w", err)
	}
	return &FileStore{dir: dir, ttl: ttl, logger: logger}, nil
}

func (s *FileStore) path(jobID string) string {
	return filepath.Join(s.dir, jobID+".json")
}

// Save writes the record atomically, replacing any previous snapshot.
func (s *FileStore) Save(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling job record %s: %w", rec.JobID, err)
	}

	tmp := s.path(rec.JobID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing job record %s: %w", rec.JobID, err)
	}
	if err := os.Rename(tmp, s.path(rec.JobID)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("committing job record %s: %w", rec.JobID, err)
	}
	return nil
}

// Get loads the latest snapshot of a job.
func (s *FileStore) Get(jobID string) (*Record, error) {
	data, err := os.ReadFile(s.path(jobID))
	if err != nil {
		return nil, fmt.Errorf("reading job record %s: %w", jobID, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decoding job record %s: %w", jobID, err)
	}
	return &rec, nil
}

// Sweep removes records older than the TTL, measured from last modification,
// and returns how many were removed.
func (s *FileStore) Sweep() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("listing job store folder: %w", err)
	}

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil {
			s.logger.Warn("could not remove expired job record", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.Info("expired job records removed", "count", removed)
	}
	return removed, nil
}
