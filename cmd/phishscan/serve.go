package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/classifier"
	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/log"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long: `Serve runs an HTTP server that classifies URLs on request.

Endpoints:
  POST /predict   form field input_data, or JSON {"url": "..."}
                  add reputation=true to include reputation findings
  GET  /schema    feature column names
  GET  /healthz   liveness

Responses are JSON. Errors never reveal internal details; they are
written to the log, which is JSON on stderr.

Examples:
  phishscan serve --addr :8080
  curl -d input_data=http://192.168.1.1/login http://localhost:8080/predict`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	cmd.Flags().String("addr", config.DefaultListenAddr, "Listen address")
	cmd.Flags().StringP("model", "M", "",
		"YAML linear model file (default: embedded baseline)")
	cmd.Flags().String("remote-model", "",
		"Predict endpoint of a remote model server")
	cmd.Flags().BoolP("reputation", "r", false,
		"Allow reputation lookups for requests with reputation=true")
	cmd.Flags().Bool("no-save", false,
		"Do not store verdicts in the history database")

	return cmd
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildServeConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureJSONLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	srv, cleanup, err := newServer(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return srv.ListenAndServe(ctx, cfg.ListenAddr)
}

// buildServeConfig creates a Config from the configuration file,
// environment and the serve command flags.
func buildServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	err = applyFlags(cmd,
		stringFlag("addr", &cfg.ListenAddr),
		stringFlag("model", &cfg.ModelPath),
		stringFlag("remote-model", &cfg.RemoteModelURL),
		boolFlag("reputation", &cfg.Reputation),
		noSaveFlag(&cfg.SaveToDB),
	)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("model") && !cmd.Flags().Changed("remote-model") {
		cfg.RemoteModelURL = ""
	}
	if cmd.Flags().Changed("remote-model") && !cmd.Flags().Changed("model") {
		cfg.ModelPath = ""
	}
	return cfg, nil
}

// newServer wires the classifier, reputation service and verdict
// database into a server. cleanup releases the database.
func newServer(cfg *config.Config, logger *slog.Logger) (*server.Server, func(), error) {
	c, err := newClassifier(cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithExtractor(newExtractor(cfg)),
		server.WithMaxRequestBytes(cfg.MaxRequestBytes),
		server.WithCheckTimeout(cfg.Timeout),
		server.WithTimeouts(cfg.ReadTimeout, cfg.WriteTimeout, cfg.ShutdownTimeout),
	}
	if service := newReputationService(cfg, logger); service != nil {
		opts = append(opts, server.WithReputation(service))
	}

	db, err := openVerdictDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {}
	if db != nil {
		opts = append(opts, server.WithRecorder(func(ctx context.Context, r *model.CheckReport) error {
			return saveVerdict(ctx, db, r, logger)
		}))
		cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}
	}

	logger.Info("serving predictions",
		"addr", cfg.ListenAddr,
		"classifier", classifier.NameOf(c),
		"reputation", cfg.Reputation,
		"saveToDB", db != nil,
	)
	return server.New(c, opts...), cleanup, nil
}
