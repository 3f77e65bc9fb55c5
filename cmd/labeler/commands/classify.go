package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/utils/text"
)

var (
	classifyFile  string
	classifyTitle string
	classifyJSON  bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify issue text against the label rules",
	Long: `Classify issue text against the label rules and print the
matched labels. Reads the body from --file or stdin. This command is
pure: it never talks to GitHub.`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVar(&classifyFile, "file", "", "Path to a file with the issue body (stdin if omitted)")
	classifyCmd.Flags().StringVar(&classifyTitle, "title", "", "Issue title to prepend to the body")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "Emit the full match result as JSON")
}

func runClassify(cmd *cobra.Command, args []string) error {
	var body []byte
	var err error

	if classifyFile != "" {
		body, err = os.ReadFile(classifyFile)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", classifyFile, err)
		}
	} else {
		body, err = io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
	}

	cfg := loadOptionalConfig()
	rs, err := loadRuleSet(cfg)
	if err != nil {
		return err
	}

	input := text.Normalize(string(body))
	if classifyTitle != "" {
		input = classifyTitle + "\n" + input
	}
	if max := cfg.Labeling.MaxBodyBytes; max > 0 {
		input = text.Truncate(input, max)
	}

	result, err := rs.Match(input)
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	if classifyJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(result.Labels) == 0 {
		fmt.Println("No labels matched")
		return nil
	}
	for _, label := range result.Labels {
		fmt.Println(label)
	}
	return nil
}

// loadOptionalConfig loads the local config file if one exists; a
// missing or broken config falls back to defaults with a warning.
func loadOptionalConfig() *config.Config {
	path := cfgFile
	if path == "" {
		path = config.FindConfigPath("")
	}
	if path == "" {
		return config.DefaultConfig()
	}

	cfg, err := config.Load(path)
	if err != nil {
		fmt.Printf("Warning: Failed to load config from %s: %v. Using defaults.\n", path, err)
		return config.DefaultConfig()
	}
	if verbose {
		fmt.Printf("Loaded config from %s\n", path)
	}
	return cfg
}
