package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nao1215/phishscan/internal/config"
	"github.com/nao1215/phishscan/internal/feature"
	"github.com/nao1215/phishscan/internal/model"
	"github.com/nao1215/phishscan/internal/report"
)

// NewFeaturesCmd creates the features command.
func NewFeaturesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "features [url...]",
		Short: "Print the feature vector of URLs without classifying them",
		Long: `Features prints the lexical feature vector extracted from each URL.

No classifier runs and nothing is stored. The CSV output has the same
columns a model is trained on, so it can be used to build training sets.

Examples:
  phishscan features "http://192.168.1.1/login.php?user=admin"
  phishscan features --list urls.txt --csv > features.csv`,
		Args: cobra.ArbitraryArgs,
		RunE: runFeaturesCmd,
	}

	cmd.Flags().StringP("list", "l", "",
		"File with one URL per line (# starts a comment)")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().Bool("csv", false, "Output CSV")

	return cmd
}

// featureRow is the JSON form of one extracted vector.
type featureRow struct {
	URL      string         `json:"url"`
	Features feature.Vector `json:"features"`
}

func runFeaturesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	err = applyFlags(cmd,
		stringFlag("list", &cfg.ListFile),
		boolFlag("json", &cfg.JSONReport),
		boolFlag("csv", &cfg.CSVReport),
	)
	if err != nil {
		return err
	}
	if cfg.JSONReport && cfg.CSVReport {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingReportFormats)
	}
	cfg.Targets = args
	if !cfg.HasSources() {
		return fmt.Errorf("configuration error: %w", config.ErrNoTarget)
	}

	urls, err := collectURLs(cfg)
	if err != nil {
		return err
	}
	return writeFeatures(cmd.OutOrStdout(), cfg, newExtractor(cfg), urls)
}

// writeFeatures extracts and prints the vector of every URL.
func writeFeatures(out io.Writer, cfg *config.Config, extractor *feature.Extractor, urls []string) error {
	switch {
	case cfg.JSONReport:
		rows := make([]featureRow, 0, len(urls))
		for _, u := range urls {
			rows = append(rows, featureRow{URL: u, Features: extractor.Extract(u)})
		}
		_, err := report.NewJSONWriter(out, report.WithPrettyPrint()).WriteValue(rows)
		return err
	case cfg.CSVReport:
		reports := make([]*model.CheckReport, 0, len(urls))
		for _, u := range urls {
			r := model.NewCheckReport(u)
			r.Features = extractor.Extract(u)
			reports = append(reports, r)
		}
		return report.NewCSVWriter(out, report.WithFeaturesOnly()).WriteAll(reports)
	default:
		for i, u := range urls {
			if i > 0 {
				if _, err := fmt.Fprintln(out); err != nil {
					return err
				}
			}
			if err := writeFeatureText(out, u, extractor.Extract(u)); err != nil {
				return err
			}
		}
		return nil
	}
}

func writeFeatureText(out io.Writer, rawURL string, v feature.Vector) error {
	var errs []error
	_, err := fmt.Fprintf(out, "%s\n", rawURL)
	errs = append(errs, err)
	for i := range feature.NumFeatures {
		f := feature.Feature(i)
		if f.IsPlaceholder() {
			continue
		}
		_, err := fmt.Fprintf(out, "  %-34s %d\n", f.String(), v.Get(f))
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// NewSchemaCmd creates the schema command.
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the feature column names in order",
		Long: `Schema prints the names of all feature columns in the order models
expect them, one per line. Columns that are always 0 are marked with
--mark-placeholders.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return err
			}
			mark, err := cmd.Flags().GetBool("mark-placeholders")
			if err != nil {
				return err
			}
			return writeSchema(cmd.OutOrStdout(), asJSON, mark)
		},
	}

	cmd.Flags().BoolP("json", "j", false, "Output a JSON array")
	cmd.Flags().Bool("mark-placeholders", false, "Append (placeholder) to columns that are always 0")

	return cmd
}

func writeSchema(out io.Writer, asJSON, markPlaceholders bool) error {
	if asJSON {
		_, err := report.NewJSONWriter(out).WriteValue(feature.Schema())
		return err
	}
	for i, name := range feature.Schema() {
		suffix := ""
		if markPlaceholders && feature.Feature(i).IsPlaceholder() {
			suffix = " (placeholder)"
		}
		if _, err := fmt.Fprintf(out, "%s%s\n", name, suffix); err != nil {
			return err
		}
	}
	return nil
}
