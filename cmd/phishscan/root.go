package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for phishscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phishscan",
		Short: "Lexical phishing URL classifier",
		Long: `phishscan classifies URLs as phishing or benign.

It extracts a fixed vector of lexical features from each URL string
(character counts, host shape, randomness, sensitive words) and feeds it
to a classifier: the embedded baseline model, a YAML linear model, or a
remote model server. Verdicts are stored in a local history database.

Nothing is fetched from the checked URLs themselves. Optional reputation
lookups query WHOIS, DNS and a blocklist about the domain.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .phishscan in current or home directory)")

	cmd.AddCommand(NewCheckCmd())
	cmd.AddCommand(NewFeaturesCmd())
	cmd.AddCommand(NewSchemaCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
