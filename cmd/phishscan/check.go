package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/pipeline"
	"github.com/nao1215/phishscan/internal/report"
	"github.com/nao1215/phishscan/internal/source"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [url...]",
		Short: "Classify URLs as phishing or benign",
		Long: `Check extracts lexical features from each URL and classifies it.

URLs come from the arguments, a list file, or links harvested from local
HTML and text files. Duplicates are checked once.

Examples:
  # Check a single URL with the embedded baseline model
  phishscan check "http://paypal.com.secure-update.example.com/login"

  # Check every URL in a file, 20 at a time
  phishscan check --list urls.txt --batch 20

  # Check links found in a saved e-mail
  phishscan check --html message.html --text message.txt

  # Use a remote model server and add reputation data
  phishscan check --remote-model http://localhost:5000/predict -r example.com

  # Write a CSV table and an Excel workbook
  phishscan check --list urls.txt --csv -o verdicts.csv --xlsx verdicts.xlsx

Configuration file (.phishscan) example:
  timeout: 30s
  batch_size: 10
  model: ./model.yaml
  reputation:
    enabled: true
    blocklist: https://example.com/blocklist.txt`,
		Args: cobra.ArbitraryArgs,
		RunE: runCheckCmd,
	}

	// URL sources
	cmd.Flags().StringP("list", "l", "",
		"File with one URL per line (# starts a comment)")
	cmd.Flags().StringSlice("html", nil,
		"Local HTML file(s) to harvest absolute links from")
	cmd.Flags().StringSlice("text", nil,
		"Local text file(s) to harvest http(s) links from")

	// Classifier flags
	cmd.Flags().StringP("model", "M", "",
		"YAML linear model file (default: embedded baseline)")
	cmd.Flags().String("remote-model", "",
		"Predict endpoint of a remote model server")

	// Check behavior flags
	cmd.Flags().BoolP("reputation", "r", false,
		"Look up WHOIS, DNS and blocklist data for each domain")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent checks")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each check")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown and --csv)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json and --csv)")
	cmd.Flags().Bool("csv", false,
		"Output one CSV row per URL (mutually exclusive with --json and --markdown)")
	cmd.Flags().String("xlsx", "",
		"Also write an Excel workbook to the specified path")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-save", false,
		"Do not store verdicts in the history database")

	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCheckConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.ValidateCheck(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCheck(ctx, cfg, cmd.OutOrStdout(), logger)
}

// buildCheckConfig creates a Config from the configuration file,
// environment and the check command flags.
func buildCheckConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	err = applyFlags(cmd,
		stringFlag("list", &cfg.ListFile),
		stringSliceFlag("html", &cfg.HTMLFiles),
		stringSliceFlag("text", &cfg.TextFiles),
		stringFlag("model", &cfg.ModelPath),
		stringFlag("remote-model", &cfg.RemoteModelURL),
		boolFlag("reputation", &cfg.Reputation),
		intFlag("batch", &cfg.BatchSize),
		durationFlag("timeout", &cfg.Timeout),
		boolFlag("json", &cfg.JSONReport),
		boolFlag("markdown", &cfg.MarkdownReport),
		boolFlag("csv", &cfg.CSVReport),
		stringFlag("xlsx", &cfg.XLSXFile),
		stringFlag("output", &cfg.ReportFile),
		noSaveFlag(&cfg.SaveToDB),
	)
	if err != nil {
		return nil, err
	}

	// A model given on the command line replaces a remote model from the
	// file or environment, and the other way around.
	if cmd.Flags().Changed("model") && !cmd.Flags().Changed("remote-model") {
		cfg.RemoteModelURL = ""
	}
	if cmd.Flags().Changed("remote-model") && !cmd.Flags().Changed("model") {
		cfg.ModelPath = ""
	}

	cfg.Targets = args
	return cfg, nil
}

// collectURLs gathers the URLs to check from every configured source,
// in source order and without duplicates.
func collectURLs(cfg *config.Config) ([]string, error) {
	urls := append([]string(nil), cfg.Targets...)

	if cfg.ListFile != "" {
		list, err := source.ReadListFile(cfg.ListFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read URL list: %w", err)
		}
		urls = append(urls, list...)
	}
	for _, path := range cfg.HTMLFiles {
		links, err := source.FromHTMLFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to harvest links: %w", err)
		}
		urls = append(urls, links...)
	}
	for _, path := range cfg.TextFiles {
		links, err := source.FromTextFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to harvest links: %w", err)
		}
		urls = append(urls, links...)
	}

	return source.Dedup(urls), nil
}

// runCheck checks every URL and writes the reports.
func runCheck(ctx context.Context, cfg *config.Config, stdout io.Writer, logger *slog.Logger) error {
	urls, err := collectURLs(cfg)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in the given sources: %w", config.ErrNoTarget)
	}

	c, err := newClassifier(cfg)
	if err != nil {
		return err
	}
	extractor := newExtractor(cfg)
	service := newReputationService(cfg, logger)

	db, err := openVerdictDB(cfg, logger)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	logger.Info("starting check",
		"urls", len(urls),
		"batchSize", cfg.BatchSize,
		"reputation", service != nil,
		"saveToDB", cfg.SaveToDB,
	)

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewCheckPipeline(extractor, c, service, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithCheckTimeout(cfg.Timeout),
		pipeline.WithBatchLogger(logger),
		pipeline.WithOnResult(func(_ int, r *model.CheckReport) {
			// Stored as each check ends; an interrupted batch keeps what finished.
			if err := saveVerdict(context.WithoutCancel(ctx), db, r, logger); err != nil {
				logger.Error("failed to save verdict", "url", r.URL, "error", err)
			}
		}),
	)

	startTime := time.Now()
	results, batchErr := bp.ProcessBatch(ctx, urls)
	logger.Info("check completed", "elapsed", time.Since(startTime).Round(time.Millisecond))

	reports := completedReports(results)

	if err := outputReports(cfg, reports, stdout); err != nil {
		return err
	}
	return batchErr
}

// completedReports drops the slots of checks that never started.
func completedReports(results []*model.CheckReport) []*model.CheckReport {
	reports := make([]*model.CheckReport, 0, len(results))
	for _, r := range results {
		if r != nil {
			reports = append(reports, r)
		}
	}
	return reports
}

// outputReports writes reports in the requested format, and the workbook
// when one was requested.
func outputReports(cfg *config.Config, reports []*model.CheckReport, stdout io.Writer) error {
	output, closeOutput, err := openOutput(cfg.ReportFile, stdout)
	if err != nil {
		return err
	}
	defer closeOutput()

	opts := report.RenderOptions{Version: getVersion(), Verbose: cfg.Verbose}
	if err := report.Render(output, reportFormat(cfg), reports, opts); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.XLSXFile != "" {
		f, closeFile, err := openOutput(cfg.XLSXFile, nil)
		if err != nil {
			return err
		}
		defer closeFile()
		if err := report.NewXLSXWriter(f).WriteAll(reports); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
	}
	return nil
}

// reportFormat maps the format flags of cfg to a report.Format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	case cfg.CSVReport:
		return report.FormatCSV
	default:
		return report.FormatText
	}
}

// openOutput opens path for writing, creating parent directories. An
// empty path returns fallback. Reports may contain sensitive URLs, so
// files are only readable by the owner.
func openOutput(path string, fallback io.Writer) (io.Writer, func(), error) {
	if path == "" {
		return fallback, func() {}, nil
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
