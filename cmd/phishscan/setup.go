package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/database"
	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/log"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/reputation"
)

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

// getConfigFlag retrieves the config file flag from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig builds the settings shared by every command: defaults, the
// configuration file, then .env and PHISHSCAN_* variables. Command flags
// are applied by the caller on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath := getConfigFlag(cmd)
	cfg, err := config.Load(configPath)
	if err != nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	dotenv, err := config.ReadEnvFile(config.DefaultEnvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.DefaultEnvFile, err)
	}
	cfg.ApplyEnv(config.EnvLookup(dotenv))

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// flagApplier copies one changed flag onto the configuration.
type flagApplier func(cmd *cobra.Command) error

// applyFlags runs every applier and stops at the first error.
func applyFlags(cmd *cobra.Command, appliers ...flagApplier) error {
	for _, apply := range appliers {
		if err := apply(cmd); err != nil {
			return err
		}
	}
	return nil
}

func stringFlag(name string, dst *string) flagApplier {
	return func(cmd *cobra.Command) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetString(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func stringSliceFlag(name string, dst *[]string) flagApplier {
	return func(cmd *cobra.Command) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetStringSlice(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func boolFlag(name string, dst *bool) flagApplier {
	return func(cmd *cobra.Command) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// noSaveFlag turns --no-save into SaveToDB=false.
func noSaveFlag(dst *bool) flagApplier {
	return func(cmd *cobra.Command) error {
		if !cmd.Flags().Changed("no-save") {
			return nil
		}
		v, err := cmd.Flags().GetBool("no-save")
		if err != nil {
			return err
		}
		*dst = !v
		return nil
	}
}

func intFlag(name string, dst *int) flagApplier {
	return func(cmd *cobra.Command) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

func durationFlag(name string, dst *time.Duration) flagApplier {
	return func(cmd *cobra.Command) error {
		if !cmd.Flags().Changed(name) {
			return nil
		}
		v, err := cmd.Flags().GetDuration(name)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	}
}

// setupLogger creates a text logger that masks secrets.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// newExtractor creates the feature extractor for cfg.
func newExtractor(cfg *config.Config) *feature.Extractor {
	if len(cfg.SensitiveWords) > 0 {
		return feature.NewExtractor(feature.WithSensitiveWords(cfg.SensitiveWords...))
	}
	return feature.NewExtractor()
}

// newClassifier selects the classifier configured in cfg: a remote model
// server, a YAML linear model, or the embedded baseline.
func newClassifier(cfg *config.Config) (classifier.Classifier, error) {
	switch {
	case cfg.RemoteModelURL != "":
		opts := []classifier.RemoteOption{classifier.WithRemoteTimeout(cfg.RemoteTimeout)}
		if cfg.RemoteAPIKey != "" {
			opts = append(opts, classifier.WithAPIKey(cfg.RemoteAPIKey))
		}
		c, err := classifier.NewRemoteClassifier(cfg.RemoteModelURL, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create remote classifier: %w", err)
		}
		return c, nil
	case cfg.ModelPath != "":
		m, err := classifier.LoadLinearModel(cfg.ModelPath)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return classifier.Baseline(), nil
	}
}

// newReputationService creates the reputation checker, or nil when
// reputation lookups are disabled.
func newReputationService(cfg *config.Config, logger *slog.Logger) reputation.Service {
	if !cfg.Reputation {
		return nil
	}

	opts := []reputation.Option{
		reputation.WithWhois(reputation.NewWhoisLookup(cfg.WhoisTimeout)),
		reputation.WithResolver(reputation.NewDNSResolver(cfg.DNSServer, cfg.DNSTimeout).Resolve),
		reputation.WithRateLimit(cfg.ReputationRate, cfg.ReputationBurst),
		reputation.WithLogger(logger),
	}
	if cfg.BlocklistSource != "" {
		opts = append(opts, reputation.WithBlocklist(
			reputation.NewBlocklist(cfg.BlocklistSource, reputation.WithBlocklistTTL(cfg.BlocklistTTL)),
		))
	}
	return reputation.NewChecker(opts...)
}

// openVerdictDB opens the verdict database when saving is enabled.
// It returns nil when saving is disabled.
func openVerdictDB(cfg *config.Config, logger *slog.Logger) (*database.VerdictDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Debug("database opened", "path", db.Path())
	return db, nil
}

// saveVerdict stores report in db. A nil db is a no-op.
func saveVerdict(ctx context.Context, db *database.VerdictDB, report *model.CheckReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveVerdict(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}
	logger.Debug("verdict saved to database", "url", report.URL, "id", id)
	return nil
}
