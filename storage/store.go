// Package storage persists crawled and analyzed posts.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema and serialization details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling

package storage

import (
	"context"

	"github.com/wenhao1996/jikelens/model"
)

// PostStorage persists analyzed posts grouped into runs. A run is one
// crawl-and-analyze pass identified by a generated ID.
type PostStorage interface {
	// BeginRun registers a new run and returns its ID.
	BeginRun(ctx context.Context) (string, error)

	// SavePosts stores posts under a run, replacing earlier versions of
	// the same link within that run.
	SavePosts(ctx context.Context, runID string, posts []model.Post) error

	// LoadPosts returns a run's posts ordered by like count, descending.
	LoadPosts(ctx context.Context, runID string) ([]model.Post, error)

	// ListRuns returns run IDs, most recently updated first.
	ListRuns(ctx context.Context) ([]string, error)

	// DeleteRun removes a run and its posts.
	DeleteRun(ctx context.Context, runID string) error

	// Close releases the underlying store.
	Close() error
}
