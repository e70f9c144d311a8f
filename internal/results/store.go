package results

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tqbui/vqagen/internal/domain"
)

// Store writes one JSON file per completed job into a flat directory.
// The file's existence, not its content, is the completion marker: the
// dispatcher checks it at seeding time and workers check it again
// before processing, which is what makes repeated runs idempotent.
type Store struct {
	dir string
}

// NewStore creates the output directory if needed and returns a store
// over it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the canonical result file location for a job id. Ids are
// unique, so the mapping is collision-free by construction.
func (s *Store) Path(jobID string) string {
	return filepath.Join(s.dir, jobID+"_response.json")
}

// Exists reports whether a result has already been written for the job.
func (s *Store) Exists(jobID string) bool {
	_, err := os.Stat(s.Path(jobID))
	return err == nil
}

// Write persists the result as an indented JSON file. Writes are small
// single-file creates; if two runs race on the same job the last writer
// wins, which is acceptable because both hold an equivalent result.
func (s *Store) Write(res *domain.Result) error {
	data, err := json.MarshalIndent(res, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal result for %s: %w", res.ID, err)
	}
	if err := os.WriteFile(s.Path(res.ID), data, 0o644); err != nil {
		return fmt.Errorf("failed to write result for %s: %w", res.ID, err)
	}
	return nil
}
