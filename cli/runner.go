// Command execution for CLI commands.
//
// Information Hiding:
// - Wiring of crawler, pipeline and storage from settings
// - Output formatting

package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wenhao1996/jikelens/aiproxy"
	"github.com/wenhao1996/jikelens/config"
	"github.com/wenhao1996/jikelens/crawler"
	"github.com/wenhao1996/jikelens/llm"
	"github.com/wenhao1996/jikelens/model"
	"github.com/wenhao1996/jikelens/pipeline"
	"github.com/wenhao1996/jikelens/storage"
)

// Options holds CLI execution options.
type Options struct {
	Provider string
	Verbose  bool
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// Crawl walks the feed and writes the collected brief posts to the posts
// file. dateNum overrides the configured number of dates when positive.
func Crawl(ctx context.Context, dateNum int, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	if dateNum <= 0 {
		dateNum = settings.Crawl.DateNum
	}
	if settings.Crawl.AccessToken == "" {
		return fmt.Errorf("JIKE_ACCESS_TOKEN environment variable not set")
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := os.MkdirAll(settings.Data.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	client := crawler.NewHTTPFeedClient(crawler.DefaultFeedURL,
		settings.Crawl.Username, settings.Crawl.AccessToken)
	c := crawler.New(client, settings.Data.PostsFile, settings.Data.CheckpointFile,
		crawler.WithLogger(logger))

	posts, err := c.Crawl(ctx, dateNum)
	if err != nil {
		return err
	}

	fmt.Printf("Collected %d user posts into %s\n", len(posts), settings.Data.PostsFile)
	return nil
}

// Analyze scrapes and annotates every crawled post, writing the analyzed
// set to the analyzed-posts file and recording it as a run in the post
// database.
func Analyze(ctx context.Context, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}
	providerName := settings.Analysis.Provider
	if opts.Provider != "" {
		providerName = opts.Provider
	}

	transportType, err := llm.ParseTransportType(providerName)
	if err != nil {
		return err
	}
	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return err
	}
	transport, err := llm.New(transportType, apiKey)
	if err != nil {
		return err
	}

	logger, err := newLogger(opts.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()

	briefs, err := crawler.LoadPosts(settings.Data.PostsFile)
	if err != nil {
		return fmt.Errorf("no crawled posts to analyze (run crawl first): %w", err)
	}

	p := pipeline.New(transport, settings.Data.AnalyzedFile,
		pipeline.WithConfig(aiproxy.Config{
			RetryMax:   settings.Analysis.RetryMax,
			RetryDelay: settings.Analysis.RetryDelay,
		}),
		pipeline.WithLogger(logger))

	posts, runErr := p.Run(ctx, briefs)

	// Persist whatever was analyzed even when the pass aborted partway.
	if len(posts) > 0 {
		store, err := storage.OpenSqlite(settings.Data.DatabaseFile)
		if err != nil {
			return err
		}
		defer store.Close()

		runID, err := store.BeginRun(ctx)
		if err != nil {
			return err
		}
		if err := store.SavePosts(ctx, runID, posts); err != nil {
			return err
		}
		fmt.Printf("Analyzed %d posts, saved as run %s\n", len(posts), runID)
	}

	return runErr
}

// Top prints the n most-liked posts of a run. An empty runID selects the
// most recent run.
func Top(ctx context.Context, runID string, n int, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(settings.Data.DatabaseFile)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID == "" {
		runs, err := store.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no analysis runs found (run analyze first)")
		}
		runID = runs[0]
	}

	posts, err := store.LoadPosts(ctx, runID)
	if err != nil {
		return err
	}
	if n > 0 && len(posts) > n {
		posts = posts[:n]
	}

	printPosts(posts)
	return nil
}

// Runs lists recorded analysis runs, most recent first.
func Runs(ctx context.Context, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(settings.Data.DatabaseFile)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx)
	if err != nil {
		return err
	}
	for _, run := range runs {
		fmt.Println(run)
	}
	return nil
}

// Export writes a run's posts to a JSON file. An empty runID selects the
// most recent run.
func Export(ctx context.Context, runID, outPath string, opts Options) error {
	settings, err := config.New()
	if err != nil {
		return err
	}

	store, err := storage.OpenSqlite(settings.Data.DatabaseFile)
	if err != nil {
		return err
	}
	defer store.Close()

	if runID == "" {
		runs, err := store.ListRuns(ctx)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			return fmt.Errorf("no analysis runs found (run analyze first)")
		}
		runID = runs[0]
	}

	posts, err := store.LoadPosts(ctx, runID)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(outPath, posts); err != nil {
		return err
	}

	fmt.Printf("Exported %d posts of run %s to %s\n", len(posts), runID, outPath)
	return nil
}

func printPosts(posts []model.Post) {
	for i, post := range posts {
		fmt.Printf("%d. %s (%d likes)\n", i+1, post.Title, post.LikeCount)
		fmt.Printf("   %s\n", post.Link)
		fmt.Printf("   type=%s sentiment=%s hotspot=%v creative=%v\n",
			post.PostType, post.SentimentType, post.IsHotspot, post.IsCreative)
		if len(post.Tags) > 0 {
			fmt.Printf("   tags: %v\n", post.Tags)
		}
		if post.Author != nil && post.Author.Name != "" {
			fmt.Printf("   by %s (%d followers)\n", post.Author.Name, post.Author.FollowerNum)
		}
	}
}
