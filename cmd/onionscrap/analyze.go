package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/onionscrap/internal/model"
	"github.com/spf13/cobra"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <onion-url>",
		Short: "Crawl one hidden service and analyze its content",
		Long: `Analyze crawls a single Tor hidden service and sends the retrieved
text to an LLM for OSINT triage.

It connects through Tor, fetches the seed page and the pages it links
to up to the configured depth, aggregates the page text, and asks the
inference model to categorize the site and extract indicators.

Examples:
  # Analyze a single onion service
  onionscrap analyze http://exampleonion.onion

  # Follow links two hops deep with a longer crawl budget
  onionscrap analyze -d 2 -t 5m http://exampleonion.onion

  # Use external Tor proxy instead of embedded daemon
  onionscrap analyze --external-tor 127.0.0.1:9150 exampleonion.onion

  # Ask a specific question about the site
  onionscrap analyze --instruction "List all contact channels" exampleonion.onion

  # Output a Markdown report to a file
  onionscrap analyze --markdown -o report.md exampleonion.onion`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyzeCmd,
	}

	addCommonFlags(cmd)

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	seed, err := normalizeSeed(args[0])
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	client, cleanup, err := setupTor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	p := newPipeline(cfg, client, logger, false)

	fmt.Printf("Analyzing %s...\n", seed)
	started := time.Now()

	result := p.RunSingle(ctx, model.CrawlJob{
		SeedURL:     seed,
		MaxDepth:    cfg.CrawlDepth,
		Timeout:     cfg.JobTimeout,
		Instruction: cfg.Instruction,
	})

	fmt.Printf("Done in %s\n", time.Since(started).Round(time.Millisecond))

	batch := &model.BatchResult{
		Results:   []*model.SiteResult{result},
		StartedAt: started,
		Elapsed:   time.Since(started),
	}
	batch.Recount()

	return writeReport(cfg, batch)
}
