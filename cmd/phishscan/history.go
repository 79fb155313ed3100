package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/database"
	"github.com/nao1215/phishscan/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List stored verdicts",
		Long: `History lists verdicts stored by check and serve, newest first.

With a URL argument only the verdicts of that exact URL are listed.

Examples:
  phishscan history
  phishscan history "http://192.168.1.1/login" --json
  phishscan history --stats
  phishscan history --prune 720h`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", config.DefaultHistoryLimit,
		"Maximum number of verdicts to list")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().Bool("stats", false, "Print verdict counts instead of the list")
	cmd.Flags().Duration("prune", 0,
		"Delete verdicts older than this duration before listing")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyFlags(cmd,
		intFlag("limit", &cfg.HistoryLimit),
		boolFlag("json", &cfg.JSONReport),
	); err != nil {
		return err
	}

	stats, err := cmd.Flags().GetBool("stats")
	if err != nil {
		return err
	}
	prune, err := cmd.Flags().GetDuration("prune")
	if err != nil {
		return err
	}

	var target string
	if len(args) == 1 {
		target = args[0]
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if prune > 0 {
		n, err := db.DeleteBefore(ctx, time.Now().Add(-prune))
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Deleted %d verdict(s) older than %s\n", n, prune)
	}

	if stats {
		s, err := db.Stats(ctx)
		if err != nil {
			return fmt.Errorf("failed to read statistics: %w", err)
		}
		return writeStats(out, s, cfg.JSONReport)
	}

	verdicts, err := db.History(ctx, target, cfg.HistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}
	if cfg.JSONReport {
		if verdicts == nil {
			verdicts = []*database.Verdict{}
		}
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(verdicts)
		return err
	}
	return writeHistoryTable(out, verdicts)
}

func writeStats(out io.Writer, s database.Stats, asJSON bool) error {
	if asJSON {
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(s)
		return err
	}
	_, err := fmt.Fprintf(out, "Total:    %d\nPhishing: %d\nBenign:   %d\nUnknown:  %d\n",
		s.Total, s.Phishing, s.Benign, s.Unknown)
	return err
}

// writeHistoryTable prints verdicts as aligned columns.
func writeHistoryTable(out io.Writer, verdicts []*database.Verdict) error {
	if len(verdicts) == 0 {
		_, err := fmt.Fprintln(out, "No verdicts stored.")
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHECKED\tVERDICT\tSCORE\tURL")
	for _, v := range verdicts {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f\t%s\n",
			v.ID,
			v.CheckedAt.Local().Format(time.DateTime),
			v.Label,
			v.Score,
			v.URL,
		)
	}
	return tw.Flush()
}
