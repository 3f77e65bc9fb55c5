package commands

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
	"github.com/glideinwms/issue-labeler/internal/core/rules"
	"github.com/glideinwms/issue-labeler/internal/integrations/github"
)

var (
	batchFile     string
	batchOutFile  string
	batchFormat   string
	batchWorkers  int
	batchWorkflow string
)

// BatchJob represents a job to process in the worker pool
type BatchJob struct {
	Index int
	Issue pipeline.Issue
}

// BatchResult represents the result of processing a single issue
type BatchResult struct {
	Index  int
	Issue  pipeline.Issue
	Result *pipeline.Result
	Error  error
}

// JSONOutput represents the JSON output structure
type JSONOutput struct {
	ProcessedAt time.Time     `json:"processed_at"`
	TotalIssues int           `json:"total_issues"`
	Successful  int           `json:"successful"`
	Failed      int           `json:"failed"`
	Results     []ResultEntry `json:"results"`
}

// ResultEntry represents a single result entry in JSON output
type ResultEntry struct {
	Issue  pipeline.Issue   `json:"issue"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Classify multiple issues from a JSON file",
	Long: `Classify multiple issues through the pipeline in batch mode.
This command reads issues from a JSON file, runs them through the full
pipeline with dry-run mode forced (no GitHub writes), and outputs the
results in JSON or CSV format.

Use cases:
- Test a rule set against historical issues before deploying it
- Generate labeling reports for an issue backlog
- Estimate how a rule change shifts label distribution`,
	Run: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchFile, "file", "", "Path to JSON file containing array of issues (required)")
	batchCmd.Flags().StringVar(&batchOutFile, "out-file", "", "Output file path (stdout if not specified)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "json", "Output format: json or csv")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 1, "Number of concurrent workers")
	batchCmd.Flags().StringVar(&batchWorkflow, "workflow", "classify-only", "Workflow preset to run")

	if err := batchCmd.MarkFlagRequired("file"); err != nil {
		fmt.Printf("Warning: Failed to mark file flag as required: %v\n", err)
	}
}

func runBatch(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	if verbose {
		fmt.Printf("Loading issues from %s...\n", batchFile)
	}
	issues, err := loadIssues(batchFile)
	if err != nil {
		fmt.Printf("Error loading issues: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		fmt.Printf("Loaded %d issues\n", len(issues))
	}

	cfgPath := cfgFile
	if cfgPath == "" {
		cfgPath = config.FindConfigPath("")
	}

	var cfg *config.Config
	if cfgPath != "" {
		token := os.Getenv("GITHUB_TOKEN")
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

		cfg, err = config.LoadWithInheritance(cfgPath, fetcher)
		if err != nil {
			fmt.Printf("Warning: Failed to load config from %s: %v. Using defaults.\n", cfgPath, err)
			cfg = config.DefaultConfig()
		} else if verbose {
			fmt.Printf("Loaded config from %s\n", cfgPath)
		}
	} else {
		if verbose {
			fmt.Println("No configuration file found. Using defaults.")
		}
		cfg = config.DefaultConfig()
	}

	rs, err := loadRuleSet(cfg)
	if err != nil {
		fmt.Printf("Error loading rules: %v\n", err)
		os.Exit(1)
	}

	stepNames := pipeline.ResolveSteps(cfg.Steps, batchWorkflow)
	if verbose {
		fmt.Printf("Pipeline steps: %v\n", stepNames)
	}

	// Batch mode never writes to GitHub
	deps := &pipeline.Dependencies{DryRun: true}
	defer deps.Close()
	if verbose {
		fmt.Println("Dry-run mode enabled (no GitHub writes will be performed)")
	}

	fmt.Printf("Processing %d issues with %d workers...\n", len(issues), batchWorkers)
	results := processBatch(ctx, issues, cfg, rs, deps, stepNames)

	if err := outputResults(results); err != nil {
		fmt.Printf("Error outputting results: %v\n", err)
		os.Exit(1)
	}

	successful := 0
	failed := 0
	for _, r := range results {
		if r.Error == nil {
			successful++
		} else {
			failed++
		}
	}
	fmt.Printf("\nBatch processing completed: %d successful, %d failed\n", successful, failed)
}

// loadIssues reads and parses a JSON file containing an array of issues
func loadIssues(filePath string) ([]pipeline.Issue, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var issues []pipeline.Issue
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if len(issues) == 0 {
		return nil, fmt.Errorf("no issues found in file")
	}

	for i, issue := range issues {
		if issue.Org == "" || issue.Repo == "" || issue.Number == 0 || issue.Title == "" {
			return nil, fmt.Errorf("issue at index %d missing required fields (org, repo, number, title)", i)
		}
	}

	return issues, nil
}

// processBatch processes all issues using a worker pool pattern
func processBatch(ctx context.Context, issues []pipeline.Issue, cfg *config.Config, rs *rules.RuleSet, deps *pipeline.Dependencies, stepNames []string) []BatchResult {
	jobs := make(chan BatchJob, batchWorkers)
	results := make(chan BatchResult, batchWorkers)
	var wg sync.WaitGroup

	for i := 0; i < batchWorkers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobs {
				if verbose {
					fmt.Printf("[Worker %d] Processing issue #%d (%s/%s)\n", workerID, job.Issue.Number, job.Issue.Org, job.Issue.Repo)
				}

				result, err := ExecutePipeline(ctx, &job.Issue, cfg, rs, deps, stepNames)

				results <- BatchResult{
					Index:  job.Index,
					Issue:  job.Issue,
					Result: result,
					Error:  err,
				}
			}
		}(i)
	}

	go func() {
		for i, issue := range issues {
			jobs <- BatchJob{Index: i, Issue: issue}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Gather results in input order
	resultMap := make(map[int]BatchResult)
	for result := range results {
		resultMap[result.Index] = result
	}

	orderedResults := make([]BatchResult, len(issues))
	for i := range issues {
		orderedResults[i] = resultMap[i]
	}

	return orderedResults
}

// outputResults formats and writes results to the specified output
func outputResults(results []BatchResult) error {
	var data []byte
	var err error

	format := batchFormat
	if format == "" && batchOutFile != "" {
		ext := strings.ToLower(filepath.Ext(batchOutFile))
		if ext == ".csv" {
			format = "csv"
		} else {
			format = "json"
		}
	}
	if format == "" {
		format = "json"
	}

	switch format {
	case "csv":
		data, err = formatCSV(results)
	case "json":
		data, err = formatJSON(results)
	default:
		return fmt.Errorf("unsupported format: %s (use json or csv)", format)
	}

	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if batchOutFile != "" {
		if err := os.WriteFile(batchOutFile, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Results written to %s\n", batchOutFile)
	} else {
		fmt.Println("\n=== Batch Results ===")
		fmt.Println(string(data))
	}

	return nil
}

// formatJSON formats results as JSON
func formatJSON(results []BatchResult) ([]byte, error) {
	successful := 0
	failed := 0
	entries := make([]ResultEntry, len(results))

	for i, r := range results {
		entry := ResultEntry{
			Issue:  r.Issue,
			Result: r.Result,
		}
		if r.Error != nil {
			entry.Error = r.Error.Error()
			failed++
		} else {
			successful++
		}
		entries[i] = entry
	}

	output := JSONOutput{
		ProcessedAt: time.Now(),
		TotalIssues: len(results),
		Successful:  successful,
		Failed:      failed,
		Results:     entries,
	}

	return json.MarshalIndent(output, "", "  ")
}

// formatCSV formats results as CSV
func formatCSV(results []BatchResult) ([]byte, error) {
	var buf strings.Builder
	writer := csv.NewWriter(&buf)

	header := []string{
		"issue_number",
		"org",
		"repo",
		"title",
		"skipped",
		"skip_reason",
		"matched_labels",
		"suggested_labels",
		"error",
	}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, r := range results {
		row := []string{
			strconv.Itoa(r.Issue.Number),
			r.Issue.Org,
			r.Issue.Repo,
			r.Issue.Title,
			"",
			"",
			"",
			"",
			"",
		}
		if r.Result != nil {
			row[4] = strconv.FormatBool(r.Result.Skipped)
			row[5] = r.Result.SkipReason
			row[6] = strings.Join(r.Result.MatchedLabels, ";")
			row[7] = strings.Join(r.Result.SuggestedLabels, ";")
		}
		if r.Error != nil {
			row[8] = r.Error.Error()
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return []byte(buf.String()), nil
}
