package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/onionscrap/internal/analyze"
	"github.com/nao1215/onionscrap/internal/config"
	"github.com/nao1215/onionscrap/internal/crawl"
	"github.com/nao1215/onionscrap/internal/fetch"
	"github.com/nao1215/onionscrap/internal/log"
	"github.com/nao1215/onionscrap/internal/model"
	"github.com/nao1215/onionscrap/internal/pipeline"
	"github.com/nao1215/onionscrap/internal/report"
	"github.com/nao1215/onionscrap/internal/search"
	"github.com/nao1215/onionscrap/internal/tor"
	"github.com/spf13/cobra"
)

// addCommonFlags registers the flags shared by analyze and hunt.
func addCommonFlags(cmd *cobra.Command) {
	// Tor connection flags
	cmd.Flags().StringP("external-tor", "e", "",
		"Use external Tor proxy at specified address (e.g., 127.0.0.1:9150)")
	cmd.Flags().DurationP("tor-timeout", "T", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	// Crawl behavior flags
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Number of link hops to follow from each seed (0 = seed page only)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultJobTimeout,
		"Timeout for each seed's whole crawl")
	cmd.Flags().IntP("max-pages", "p", config.DefaultCrawlCeiling,
		"Maximum number of pages to crawl per seed")

	// Analysis flags
	cmd.Flags().String("model", config.DefaultModel,
		"Inference model identifier")
	cmd.Flags().String("instruction", "",
		"Custom analysis instruction (default: built-in OSINT triage prompt)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .onionscrap in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// buildConfig creates a Config from defaults, the optional config file,
// and cobra flags, in increasing order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg.ConfigFilePath = configFlag

	// If the user explicitly specified a config file path, error if not
	// found. If no path was specified, silently run on defaults.
	configPath := config.FindConfigFile(configFlag)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cf.ApplyTo(cfg)
	} else if configFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configFlag)
	}

	// Flags override file values only when set on the command line.
	if cmd.Flags().Changed("external-tor") {
		addr, err := cmd.Flags().GetString("external-tor")
		if err != nil {
			return nil, err
		}
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = addr
	}
	if cmd.Flags().Changed("tor-timeout") {
		if cfg.TorStartupTimeout, err = cmd.Flags().GetDuration("tor-timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("depth") {
		if cfg.CrawlDepth, err = cmd.Flags().GetInt("depth"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("timeout") {
		if cfg.JobTimeout, err = cmd.Flags().GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("max-pages") {
		if cfg.CrawlCeiling, err = cmd.Flags().GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("model") {
		if cfg.Model, err = cmd.Flags().GetString("model"); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("instruction") {
		if cfg.Instruction, err = cmd.Flags().GetString("instruction"); err != nil {
			return nil, err
		}
	}

	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger creates the sanitizing structured logger. The inference
// API key travels with every analysis request, so all CLI logging goes
// through the redacting handler.
func setupLogger(verbose bool) *slog.Logger {
	return log.NewSecureLogger(os.Stderr, verbose)
}

// normalizeSeed turns a bare onion address into a crawlable URL and
// validates it. "example.onion" becomes "http://example.onion".
func normalizeSeed(raw string) (string, error) {
	seed := strings.TrimSpace(raw)
	if !strings.Contains(seed, "://") {
		seed = "http://" + seed
	}
	if err := fetch.ValidateTargetURL(seed); err != nil {
		return "", fmt.Errorf("invalid onion URL %q: %w", raw, err)
	}
	u, err := url.Parse(seed)
	if err != nil {
		return "", fmt.Errorf("invalid onion URL %q: %w", raw, err)
	}
	if !model.IsOnionHost(u.Hostname()) {
		return "", fmt.Errorf("invalid onion URL %q: host is not a .onion address", raw)
	}
	return seed, nil
}

// setupTor prepares Tor connectivity per the configuration and returns
// a verified client plus a cleanup function.
func setupTor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*tor.Client, func(), error) {
	if cfg.UseExternalTor {
		client, err := tor.NewClient(cfg.TorProxyAddress, cfg.JobTimeout)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
		}

		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return nil, nil, fmt.Errorf("tor proxy check failed: %s (make sure Tor is running at %s)",
				status, cfg.TorProxyAddress)
		}

		logger.Info("Tor proxy connection verified", "address", cfg.TorProxyAddress)
		return client, func() {}, nil
	}

	fmt.Println("Starting embedded Tor daemon...")
	fmt.Printf("This may take 1-3 minutes while Tor bootstraps and connects to the network.\n\n")

	embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
	if err := embedded.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start embedded Tor: %w", err)
	}

	logger.Info("embedded Tor daemon started",
		"socksAddr", embedded.SocksAddr(),
		"controlAddr", embedded.ControlAddr(),
	)

	client, err := embedded.NewClient(cfg.JobTimeout)
	if err != nil {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("failed to create Tor client: %w", err)
	}

	if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
		_ = embedded.Stop() //nolint:errcheck // Best effort cleanup
		return nil, nil, fmt.Errorf("embedded Tor proxy check failed: %s", status)
	}

	cleanup := func() {
		logger.Info("stopping embedded Tor daemon...")
		if err := embedded.Stop(); err != nil {
			logger.Error("failed to stop embedded Tor", "error", err)
		}
	}
	return client, cleanup, nil
}

// newPipeline wires the crawl engine, the analyzer, and (for bulk runs)
// the search adapter into a pipeline.
func newPipeline(cfg *config.Config, client *tor.Client, logger *slog.Logger, withSearch bool) *pipeline.Pipeline {
	fetchOpts := []fetch.Option{}
	if cfg.UserAgent != "" {
		fetchOpts = append(fetchOpts, fetch.WithUserAgent(cfg.UserAgent))
	}
	if cfg.MaxBodySize > 0 {
		fetchOpts = append(fetchOpts, fetch.WithMaxBodySize(cfg.MaxBodySize))
	}
	fetcher := fetch.New(client.NewHTTPClient(), fetchOpts...)

	engine := crawl.New(fetcher,
		crawl.WithConcurrency(cfg.FetchConcurrency),
		crawl.WithCeiling(cfg.CrawlCeiling),
		crawl.WithMaxAnalysisBytes(cfg.MaxAnalysisBytes),
		crawl.WithRateLimit(cfg.CrawlRate),
		crawl.WithLogger(logger),
	)

	analyzer := analyze.New(cfg.APIKey,
		analyze.WithBaseURL(cfg.InferenceBaseURL),
		analyze.WithModel(cfg.Model),
		analyze.WithLogger(logger),
	)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithBatchConcurrency(cfg.BatchConcurrency),
		pipeline.WithBatchTimeout(cfg.BatchTimeout),
	}
	if withSearch {
		searcher := search.NewClient(
			search.WithBaseURL(cfg.SearchBaseURL),
			search.WithMaxResults(cfg.MaxSites),
			search.WithLogger(logger),
		)
		opts = append(opts, pipeline.WithSearcher(searcher))
	}

	return pipeline.New(engine, analyzer, opts...)
}

// writeReport outputs the batch result in the requested format.
func writeReport(cfg *config.Config, batch *model.BatchResult) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain sensitive findings; owner-only permissions.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Write errors surface through the writer
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(batch)
	return err
}
