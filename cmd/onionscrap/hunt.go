package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/onionscrap/internal/config"
	"github.com/nao1215/onionscrap/internal/pipeline"
	"github.com/spf13/cobra"
)

// NewHuntCmd creates the hunt command.
func NewHuntCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hunt <query>...",
		Short: "Search for hidden services and analyze each result",
		Long: `Hunt discovers hidden services matching a search query, then crawls
and analyzes each one.

Seeds come from the Ahmia search engine; the query terms are joined
into a single search. Each discovered site is crawled through Tor and
its content is sent to the inference model, a few sites at a time. One
site failing never stops its siblings.

Examples:
  # Find and analyze up to 5 marketplaces
  onionscrap hunt marketplace

  # Multi-word query, 10 sites, only services seen in the last week
  onionscrap hunt -n 10 --since-days 7 stolen credentials

  # Crawl deeper and run more sites in parallel
  onionscrap hunt -d 2 -b 5 forum

  # JSON report to a file
  onionscrap hunt --json -o results.json ransomware`,
		Args: cobra.MinimumNArgs(1),
		RunE: runHuntCmd,
	}

	addCommonFlags(cmd)

	// Discovery flags
	cmd.Flags().IntP("max-sites", "n", config.DefaultMaxSites,
		"Maximum number of discovered sites to analyze")
	cmd.Flags().Int("since-days", 0,
		"Only analyze services seen within this many days (1, 7, or 30; 0 = no filter)")

	// Batch flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchConcurrency,
		"Number of sites processed concurrently")
	cmd.Flags().Duration("batch-timeout", config.DefaultBatchTimeout,
		"Timeout for the whole run")

	return cmd
}

// runHuntCmd executes the hunt command.
func runHuntCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("max-sites") {
		if cfg.MaxSites, err = cmd.Flags().GetInt("max-sites"); err != nil {
			return err
		}
	}
	if cfg.SinceDays, err = cmd.Flags().GetInt("since-days"); err != nil {
		return err
	}
	if cmd.Flags().Changed("batch") {
		if cfg.BatchConcurrency, err = cmd.Flags().GetInt("batch"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("batch-timeout") {
		if cfg.BatchTimeout, err = cmd.Flags().GetDuration("batch-timeout"); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	query := strings.Join(args, " ")
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

	p := newPipeline(cfg, client, logger, true)

	fmt.Printf("Hunting %q (up to %d sites, concurrency %d)...\n\n",
		query, cfg.MaxSites, cfg.BatchConcurrency)
	started := time.Now()

	batch, err := p.RunBulk(ctx, pipeline.BulkRequest{
		Query:       query,
		MaxSites:    cfg.MaxSites,
		SinceDays:   cfg.SinceDays,
		Depth:       cfg.CrawlDepth,
		JobTimeout:  cfg.JobTimeout,
		Instruction: cfg.Instruction,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Hunt completed in %s: %d analyzed, %d failed\n",
		time.Since(started).Round(time.Millisecond), batch.Succeeded, batch.Failed)

	return writeReport(cfg, batch)
}
