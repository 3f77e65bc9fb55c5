package commands

import (
	"testing"
	"time"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
	"github.com/glideinwms/issue-labeler/internal/core/rules"
	"github.com/glideinwms/issue-labeler/internal/tui"
)

// Without a TUI program attached (CI mode), runPipeline must drain the
// status channel itself; otherwise the first step's status send blocks
// and the command hangs.
func TestRunPipelineCompletesWithoutTUI(t *testing.T) {
	issue := &pipeline.Issue{
		Org:    "glideinwms",
		Repo:   "glideinwms",
		Number: 42,
		Title:  "Glidein startup failure",
		Body:   "Priority: [High]\nComponent: [Glidein]\nbug",
		State:  "open",
		Author: "alice",
	}
	cfg := config.DefaultConfig()
	rs := rules.Default()
	statusChan := make(chan tui.PipelineStatusMsg)

	done := make(chan struct{})
	go func() {
		runPipeline(nil, &pipeline.Dependencies{DryRun: true}, []string{"gatekeeper", "classify"}, issue, cfg, rs, statusChan)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runPipeline did not complete without a TUI attached")
	}
}

func TestRunPipelineReportsUnknownStepWithoutTUI(t *testing.T) {
	issue := &pipeline.Issue{Org: "glideinwms", Repo: "glideinwms", Number: 43, Title: "t", State: "open"}
	statusChan := make(chan tui.PipelineStatusMsg)

	done := make(chan struct{})
	go func() {
		runPipeline(nil, &pipeline.Dependencies{DryRun: true}, []string{"no_such_step"}, issue, config.DefaultConfig(), rules.Default(), statusChan)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("runPipeline did not complete after a step build failure")
	}
}
