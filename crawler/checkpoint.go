package crawler

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/wenhao1996/jikelens/model"
)

// Checkpoint is the resumable state of an interrupted crawl.
type Checkpoint struct {
	LastID    string            `json:"last_id"`
	DateCount int               `json:"date_count"`
	Posts     []model.BriefPost `json:"total_user_posts"`
}

// LoadCheckpoint reads a checkpoint file. A missing file is not an error;
// it yields a zero checkpoint so the crawl starts fresh.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Checkpoint{}, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", path, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint %s: %w", path, err)
	}
	return &cp, nil
}

// SaveCheckpoint writes the crawl state so a later run can resume from it.
func SaveCheckpoint(path string, cp *Checkpoint) error {
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write checkpoint %s: %w", path, err)
	}
	return nil
}

// RemoveCheckpoint deletes the checkpoint file after a completed crawl.
// A missing file is fine.
func RemoveCheckpoint(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint %s: %w", path, err)
	}
	return nil
}
