package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wenhao1996/jikelens/model"
)

const defaultPageDelay = 2 * time.Second

// Crawler pages through the feed until enough dates have been collected,
// persisting the accumulated user posts and a resume checkpoint after
// every page.
type Crawler struct {
	client         FeedClient
	postsPath      string
	checkpointPath string
	pageDelay      time.Duration
	logger         *zap.Logger
}

// Option customizes a Crawler.
type Option func(*Crawler)

// WithPageDelay overrides the pause between feed pages.
func WithPageDelay(d time.Duration) Option {
	return func(c *Crawler) { c.pageDelay = d }
}

// WithLogger overrides the crawler's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// New creates a Crawler that writes collected posts to postsPath and its
// resume state to checkpointPath.
func New(client FeedClient, postsPath, checkpointPath string, opts ...Option) *Crawler {
	c := &Crawler{
		client:         client,
		postsPath:      postsPath,
		checkpointPath: checkpointPath,
		pageDelay:      defaultPageDelay,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl collects user posts covering totalDates feed dates. It resumes
// from a previous checkpoint when one exists and removes the checkpoint
// once the crawl completes. The collected posts are returned in feed
// order, newest first.
func (c *Crawler) Crawl(ctx context.Context, totalDates int) ([]model.BriefPost, error) {
	cp, err := LoadCheckpoint(c.checkpointPath)
	if err != nil {
		return nil, err
	}
	if cp.DateCount > 0 {
		c.logger.Info("resuming from checkpoint",
			zap.String("last_id", cp.LastID),
			zap.Int("date_count", cp.DateCount),
			zap.Int("posts", len(cp.Posts)))
	}

	for cp.DateCount < totalDates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		remaining := totalDates - cp.DateCount
		page, err := c.client.FetchPage(ctx, remaining, cp.LastID)
		if err != nil {
			return nil, fmt.Errorf("crawl aborted at date %d: %w", cp.DateCount, err)
		}
		if len(page.Entries) == 0 {
			c.logger.Warn("feed returned no entries, stopping early",
				zap.Int("date_count", cp.DateCount))
			break
		}

		for _, entry := range page.Entries {
			userPosts, _ := SplitByType(ExtractBriefPosts(entry.Content))
			cp.Posts = append(cp.Posts, userPosts...)
		}
		cp.DateCount += len(page.Entries)
		cp.LastID = page.LastID

		c.logger.Info("page collected",
			zap.Int("date_count", cp.DateCount),
			zap.String("last_id", cp.LastID),
			zap.Int("posts", len(cp.Posts)))

		if err := SavePosts(c.postsPath, cp.Posts); err != nil {
			return nil, err
		}
		if err := SaveCheckpoint(c.checkpointPath, cp); err != nil {
			return nil, err
		}

		if cp.LastID == "" {
			c.logger.Warn("feed exhausted before reaching target",
				zap.Int("date_count", cp.DateCount))
			break
		}

		if cp.DateCount < totalDates {
			select {
			case <-time.After(c.pageDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if err := RemoveCheckpoint(c.checkpointPath); err != nil {
		c.logger.Warn("failed to remove checkpoint", zap.Error(err))
	}
	return cp.Posts, nil
}

type savedPost struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	Link  string `json:"link"`
}

// SavePosts writes the collected user posts as a JSON list of
// {date, title, link} records.
func SavePosts(path string, posts []model.BriefPost) error {
	records := make([]savedPost, 0, len(posts))
	for _, p := range posts {
		records = append(records, savedPost{Date: p.SelectedDate, Title: p.Title, Link: p.Link})
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode posts: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write posts %s: %w", path, err)
	}
	return nil
}

// LoadPosts reads a posts file written by SavePosts.
func LoadPosts(path string) ([]model.BriefPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read posts %s: %w", path, err)
	}
	var records []savedPost
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode posts %s: %w", path, err)
	}

	posts := make([]model.BriefPost, 0, len(records))
	for _, r := range records {
		posts = append(posts, model.BriefPost{Title: r.Title, Link: r.Link, SelectedDate: r.Date})
	}
	return posts, nil
}
