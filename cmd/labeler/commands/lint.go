package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glideinwms/issue-labeler/internal/core/rules"
)

// lintCmd represents the lint command
var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate a label rules file",
	Long: `Validate a label rules file: check that every pattern
compiles, that fallback rules reference existing labels, and warn
about catch-all rules whose exclusion lists have drifted out of sync
with their sibling labels.`,
	Run: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) {
	rs, err := loadRuleSet(nil)
	if err != nil {
		var cfgErr *rules.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Printf("Invalid rule %q (pattern %q): %v\n", cfgErr.Label, cfgErr.Pattern, cfgErr.Err)
		} else {
			fmt.Printf("Error: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Rules OK: %d labels\n", rs.Len())
	for _, label := range rs.Labels() {
		if verbose {
			fmt.Printf("  %s (%d patterns)\n", label, len(rs.Rule(label).Patterns))
		}
	}

	warnings := rs.CheckExclusions()
	if len(warnings) == 0 {
		fmt.Println("No consistency warnings")
		return
	}

	fmt.Printf("%d consistency warning(s):\n", len(warnings))
	for _, w := range warnings {
		fmt.Printf("  %s\n", w)
	}
	os.Exit(2)
}
