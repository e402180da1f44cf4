package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wenhao1996/jikelens/model"
)

// ExportJSON writes posts to a JSON file, creating parent directories as
// needed.
func ExportJSON(path string, posts []model.Post) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ImportJSON reads posts from a JSON file written by ExportJSON.
func ImportJSON(path string) ([]model.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return posts, nil
}
