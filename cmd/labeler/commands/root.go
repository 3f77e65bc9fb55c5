// Package commands implements the labeler CLI commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	rulesFile string
	verbose   bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "labeler",
	Short: "Regex-based multi-label classifier for GitHub issues",
	Long: `labeler classifies GitHub issues against an ordered set of
regex label rules and optionally applies the matched labels.

Rules map label names to pattern lists in a YAML file; the built-in
rule set covers the glideinwms issue template (priority, component,
stakeholder and type fields).`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file (default: .github/labeler.yaml)")
	rootCmd.PersistentFlags().StringVar(&rulesFile, "rules", "", "Path to label rules YAML (default: built-in rule set)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
