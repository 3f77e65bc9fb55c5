package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
	"github.com/glideinwms/issue-labeler/internal/integrations/gemini"
	"github.com/glideinwms/issue-labeler/internal/integrations/github"
	"github.com/glideinwms/issue-labeler/internal/tui"
)

var (
	issueFile string
	eventFile string
	dryRun    bool
	workflow  string
	repoName  string
	orgName   string
	issueNum  int
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single issue through the labeling pipeline",
	Long: `Process a single issue through the labeling pipeline.
The issue can come from a JSON file (--issue), a GitHub Actions event
payload (--event or GITHUB_EVENT_PATH), or be fetched from the API
with --org/--repo/--number.`,
	Run: func(cmd *cobra.Command, args []string) {
		runProcess()
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&issueFile, "issue", "", "Path to issue JSON file")
	processCmd.Flags().StringVar(&eventFile, "event", "", "Path to GitHub event payload (default: $GITHUB_EVENT_PATH)")
	processCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run in dry-run mode (no label writes)")
	processCmd.Flags().StringVar(&workflow, "workflow", "issue-label", "Workflow preset to run")
	processCmd.Flags().StringVar(&repoName, "repo", "", "Repository name")
	processCmd.Flags().StringVar(&orgName, "org", "", "Organization name")
	processCmd.Flags().IntVar(&issueNum, "number", 0, "Issue number")
}

func runProcess() {
	token := os.Getenv("GITHUB_TOKEN")

	// Fetcher for config inheritance (extends: org/repo@branch:path)
	fetcher := func(ref string) ([]byte, error) {
		org, repo, branch, path, err := config.ParseExtendsRef(ref)
		if err != nil {
			return nil, err
		}
		if token == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN required to fetch remote config %s", ref)
		}
		ghClient := github.NewClient(context.Background(), token)
		return ghClient.GetFileContent(context.Background(), org, repo, path, branch)
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = config.FindConfigPath("")
	}

	var cfg *config.Config
	var err error

	if cfgPath != "" {
		cfg, err = config.LoadWithInheritance(cfgPath, fetcher)
		if err != nil {
			fmt.Printf("Warning: Failed to load config from %s: %v. Using defaults.\n", cfgPath, err)
			cfg = config.DefaultConfig()
		} else if verbose {
			fmt.Printf("Loaded config from %s\n", cfgPath)
		}
	} else {
		if verbose {
			fmt.Println("No configuration file found. Using defaults and environment variables.")
		}
		cfg = config.DefaultConfig()
	}

	rs, err := loadRuleSet(cfg)
	if err != nil {
		fmt.Printf("Error loading rules: %v\n", err)
		os.Exit(1)
	}

	issue, err := resolveIssue(token)
	if err != nil {
		fmt.Printf("Error resolving issue: %v\n", err)
		os.Exit(1)
	}

	statusChan := make(chan tui.PipelineStatusMsg)
	stepNames := pipeline.ResolveSteps(cfg.Steps, workflow)

	deps := &pipeline.Dependencies{
		DryRun: dryRun,
	}

	if token != "" {
		deps.Labels = github.NewClient(context.Background(), token)
	} else if verbose {
		fmt.Println("No GITHUB_TOKEN found, labels cannot be applied")
	}

	if cfg.Suggest.Enabled {
		geminiKey := cfg.Suggest.APIKey
		if geminiKey == "" {
			geminiKey = os.Getenv("GEMINI_API_KEY")
		}
		if geminiKey != "" {
			suggester, err := gemini.NewSuggester(geminiKey, cfg.Suggest.Model)
			if err == nil {
				deps.Suggester = suggester
			} else {
				fmt.Printf("Warning: Failed to initialize suggester: %v\n", err)
			}
		} else {
			fmt.Println("Warning: Suggestions enabled but no Gemini API key found")
		}
	}

	defer deps.Close()

	isCI := os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"

	if isCI {
		fmt.Println("[labeler] Running in CI mode (no TUI)")
		runPipeline(nil, deps, stepNames, issue, cfg, rs, statusChan)
		fmt.Println("[labeler] Pipeline completed")
	} else {
		model := tui.NewModel(stepNames, statusChan)
		p := tea.NewProgram(model)

		go func() {
			runPipeline(p, deps, stepNames, issue, cfg, rs, statusChan)
		}()

		if _, err := p.Run(); err != nil {
			fmt.Printf("Error running TUI: %v\n", err)
			os.Exit(1)
		}
	}
}

// resolveIssue loads the issue to process, in order of preference:
// explicit JSON file, event payload, GitHub API fetch.
func resolveIssue(token string) (*pipeline.Issue, error) {
	if issueFile != "" {
		data, err := os.ReadFile(issueFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read issue file: %w", err)
		}
		var issue pipeline.Issue
		if err := json.Unmarshal(data, &issue); err != nil {
			return nil, fmt.Errorf("failed to parse issue JSON: %w", err)
		}
		applyIssueOverrides(&issue)
		return &issue, nil
	}

	evPath := eventFile
	if evPath == "" {
		evPath = os.Getenv("GITHUB_EVENT_PATH")
	}
	if evPath != "" {
		issue, err := github.ParseEventFile(evPath)
		if err != nil {
			return nil, fmt.Errorf("failed to parse event payload: %w", err)
		}
		applyIssueOverrides(issue)
		return issue, nil
	}

	if orgName != "" && repoName != "" && issueNum != 0 {
		if token == "" {
			return nil, fmt.Errorf("GITHUB_TOKEN required to fetch issue %s/%s#%d", orgName, repoName, issueNum)
		}
		client := github.NewClient(context.Background(), token)
		return client.GetIssue(context.Background(), orgName, repoName, issueNum)
	}

	return nil, fmt.Errorf("no issue source: provide --issue, --event, or --org/--repo/--number")
}

func applyIssueOverrides(issue *pipeline.Issue) {
	if orgName != "" {
		issue.Org = orgName
	}
	if repoName != "" {
		issue.Repo = repoName
	}
	if issueNum != 0 {
		issue.Number = issueNum
	}
}
