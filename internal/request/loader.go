package request

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tqbui/vqagen/internal/domain"
)

// File is the request file produced by the external request generator.
type File struct {
	TotalRequests int          `json:"total_requests"`
	Requests      []domain.Job `json:"requests"`
}

// Load reads and parses a request file, returning the job list.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read requests file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse requests file: %w", err)
	}

	for i := range f.Requests {
		if f.Requests[i].ID == "" {
			return nil, fmt.Errorf("request at index %d has an empty image_id", i)
		}
	}

	return &f, nil
}
