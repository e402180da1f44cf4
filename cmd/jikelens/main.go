// Package main provides the jikelens CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wenhao1996/jikelens/cli"
)

var (
	// Global flags
	provider string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "jikelens",
		Short: "Crawl, scrape and LLM-analyze Jike posts",
		Long: `A CLI tool for collecting posts from the Jike daily digest feed and
annotating them with LLM analysis (tags, category, sentiment, hotspot and
creative flags). Analysis survives per-model rate limits by rotating
through a pool of fallback models.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, openai, anthropic, deepseek)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(crawlCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(topCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func options() cli.Options {
	return cli.Options{Provider: provider, Verbose: verbose}
}

func crawlCmd() *cobra.Command {
	var dates int

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Collect brief posts from the daily digest feed",
		Long: `Walk the paginated digest feed and collect user posts until the requested
number of dates is covered. Progress is checkpointed after every page, so
an interrupted crawl resumes where it stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Crawl(context.Background(), dates, options())
		},
	}

	cmd.Flags().IntVar(&dates, "dates", 0, "Number of feed dates to cover (default from CRAWL_DATE_NUM)")

	return cmd
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze",
		Short: "Scrape and LLM-annotate the crawled posts",
		Long: `Fetch each crawled post's page, extract its content, author and like
count, then annotate it with tags, category, sentiment and hotspot/creative
flags via a conversational LLM session. Already-analyzed posts are skipped,
so the command can be re-run after an interruption or a fresh crawl.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Analyze(context.Background(), options())
		},
	}
}

func topCmd() *cobra.Command {
	var runID string
	var limit int

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the most-liked analyzed posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Top(context.Background(), runID, limit, options())
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (default: most recent run)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 100, "Number of posts to show")

	return cmd
}

func runsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded analysis runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Runs(context.Background(), options())
		},
	}
}

func exportCmd() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export a run's posts to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Export(context.Background(), runID, args[0], options())
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "Run ID (default: most recent run)")

	return cmd
}
