// Package pipeline runs the scrape-and-analyze pass over crawled posts.
//
// Information Hiding:
// - Incremental persistence and resume-by-link bookkeeping
// - Pacing between page fetches
// - Wiring of one Analyzer per post over a shared quota ledger

package pipeline

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/wenhao1996/jikelens/aiproxy"
	"github.com/wenhao1996/jikelens/llm"
	"github.com/wenhao1996/jikelens/model"
	"github.com/wenhao1996/jikelens/scraper"
	"github.com/wenhao1996/jikelens/storage"
)

// Pipeline scrapes each crawled post and annotates it with LLM analysis.
// Progress is written to the analyzed-posts file after every post, so an
// interrupted pass resumes where it left off. A shared quota ledger keeps
// the per-model rate counters honest across the per-post analyzers.
type Pipeline struct {
	scraper   *scraper.Scraper
	transport llm.Transport
	ledger    *aiproxy.QuotaLedger
	analyzed  string
	catalog   []aiproxy.Model
	cfg       aiproxy.Config
	minDelay  time.Duration
	maxDelay  time.Duration
	logger    *zap.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithScraper overrides the page scraper.
func WithScraper(s *scraper.Scraper) Option {
	return func(p *Pipeline) { p.scraper = s }
}

// WithCatalog overrides the model catalog handed to each analyzer.
func WithCatalog(catalog []aiproxy.Model) Option {
	return func(p *Pipeline) { p.catalog = catalog }
}

// WithConfig overrides the retry/failover configuration.
func WithConfig(cfg aiproxy.Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithPostDelay overrides the random pause between posts.
func WithPostDelay(min, max time.Duration) Option {
	return func(p *Pipeline) { p.minDelay, p.maxDelay = min, max }
}

// WithLogger overrides the pipeline's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// New creates a Pipeline that persists analyzed posts to analyzedFile.
func New(transport llm.Transport, analyzedFile string, opts ...Option) *Pipeline {
	p := &Pipeline{
		scraper:   scraper.New(),
		transport: transport,
		ledger:    aiproxy.NewQuotaLedger(),
		analyzed:  analyzedFile,
		catalog:   aiproxy.DefaultCatalog(),
		cfg:       aiproxy.DefaultConfig(),
		minDelay:  2 * time.Second,
		maxDelay:  6 * time.Second,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run scrapes and analyzes every brief post not already present in the
// analyzed-posts file, appending as it goes. It returns the full analyzed
// set, previously done posts included. A post that fails to scrape is
// skipped; an analysis error aborts the pass since it means the model
// pool is exhausted or the context is done.
func (p *Pipeline) Run(ctx context.Context, briefs []model.BriefPost) ([]model.Post, error) {
	posts, err := p.loadPrior()
	if err != nil {
		return nil, err
	}
	done := make(map[string]bool, len(posts))
	for _, post := range posts {
		done[post.Link] = true
	}
	if len(posts) > 0 {
		p.logger.Info("resuming analysis", zap.Int("already_analyzed", len(posts)))
	}

	added := 0
	for _, brief := range briefs {
		if done[brief.Link] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return posts, err
		}

		post, err := p.processOne(ctx, brief)
		if err != nil {
			if errors.Is(err, errSkipPost) {
				continue
			}
			return posts, err
		}

		posts = append(posts, *post)
		done[post.Link] = true
		added++

		if err := storage.ExportJSON(p.analyzed, posts); err != nil {
			return posts, err
		}

		if err := p.pause(ctx); err != nil {
			return posts, err
		}
	}

	p.logger.Info("analysis pass finished",
		zap.Int("new_posts", added),
		zap.Int("total_posts", len(posts)))
	return posts, nil
}

var errSkipPost = errors.New("post skipped")

func (p *Pipeline) processOne(ctx context.Context, brief model.BriefPost) (*model.Post, error) {
	p.logger.Info("processing post", zap.String("title", brief.Title), zap.String("link", brief.Link))

	post, err := p.scraper.ScrapePost(ctx, brief)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("failed to scrape post, skipping",
			zap.String("link", brief.Link), zap.Error(err))
		return nil, errSkipPost
	}

	if post.Tags == nil {
		post.Tags = []string{}
	}
	if post.Content == "" {
		// Nothing to analyze; keep the scraped fields with NONE annotations.
		return post, nil
	}

	analyzer, err := aiproxy.New(post.Content, p.transport,
		aiproxy.WithCatalog(p.catalog),
		aiproxy.WithConfig(p.cfg),
		aiproxy.WithSharedQuota(p.ledger),
		aiproxy.WithAnalyzerLogger(p.logger))
	if err != nil {
		return nil, err
	}

	if post.Tags, err = analyzer.Tags(ctx); err != nil {
		return nil, err
	}
	if post.PostType, err = analyzer.PostType(ctx); err != nil {
		return nil, err
	}
	if post.SentimentType, err = analyzer.Sentiment(ctx); err != nil {
		return nil, err
	}
	if post.IsHotspot, err = analyzer.IsHotspot(ctx); err != nil {
		return nil, err
	}
	if post.IsCreative, err = analyzer.IsCreative(ctx); err != nil {
		return nil, err
	}
	return post, nil
}

func (p *Pipeline) loadPrior() ([]model.Post, error) {
	if _, err := os.Stat(p.analyzed); os.IsNotExist(err) {
		return []model.Post{}, nil
	}
	return storage.ImportJSON(p.analyzed)
}

func (p *Pipeline) pause(ctx context.Context) error {
	delay := p.minDelay
	if p.maxDelay > p.minDelay {
		delay += time.Duration(rand.Int63n(int64(p.maxDelay - p.minDelay)))
	}
	if delay <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
