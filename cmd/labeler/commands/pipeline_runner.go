package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
	"github.com/glideinwms/issue-labeler/internal/core/rules"
	"github.com/glideinwms/issue-labeler/internal/steps"
	"github.com/glideinwms/issue-labeler/internal/tui"
)

// Wrapper step to send status updates
type statusReportingStep struct {
	inner      pipeline.Step
	statusChan chan<- tui.PipelineStatusMsg
}

func (s *statusReportingStep) Name() string {
	return s.inner.Name()
}

func (s *statusReportingStep) Run(ctx *pipeline.Context) error {
	s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "started", Message: "Starting..."}
	time.Sleep(100 * time.Millisecond) // Artificial delay for visual effect

	err := s.inner.Run(ctx)

	if err != nil {
		if errors.Is(err, pipeline.ErrSkipPipeline) {
			s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "skipped", Message: ctx.Result.SkipReason}
			return err
		}
		s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "error", Message: err.Error()}
		return err
	}

	s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "success", Message: "Completed"}
	return nil
}

// sendResult delivers the final output. In CI mode there is no TUI
// program, so the output goes straight to the terminal.
func sendResult(p *tea.Program, msg tui.ResultMsg) {
	if p == nil {
		if msg.Output != "" {
			fmt.Println(msg.Output)
		}
		return
	}
	p.Send(msg)
}

func runPipeline(p *tea.Program, deps *pipeline.Dependencies, stepNames []string, issue *pipeline.Issue, cfg *config.Config, rs *rules.RuleSet, statusChan chan tui.PipelineStatusMsg) {
	defer close(statusChan)

	// Without a TUI there is no reader on the status channel; drain it
	// here or the first step's status send blocks forever.
	if p == nil {
		go func() {
			for msg := range statusChan {
				log.Printf("[%s] %s: %s", msg.Step, msg.Status, msg.Message)
			}
		}()
	}

	pCtx := pipeline.NewContext(context.Background(), issue, cfg, rs)
	pCtx.Result.RunID = uuid.NewString()

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	builtSteps, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		statusChan <- tui.PipelineStatusMsg{Step: "init", Status: "error", Message: err.Error()}
		sendResult(p, tui.ResultMsg{Success: false, Output: err.Error()})
		return
	}

	// Wrap steps with status reporting
	var wrappedSteps []pipeline.Step
	for _, step := range builtSteps.Steps() {
		wrappedSteps = append(wrappedSteps, &statusReportingStep{inner: step, statusChan: statusChan})
	}

	finalPipeline := pipeline.New(wrappedSteps...)

	if err := finalPipeline.Run(pCtx); err != nil {
		sendResult(p, tui.ResultMsg{Success: false, Output: err.Error()})
		return
	}

	resultBytes, _ := json.MarshalIndent(pCtx.Result, "", "  ")
	sendResult(p, tui.ResultMsg{Success: true, Output: string(resultBytes)})
}

// ExecutePipeline runs the pipeline without a TUI, for batch and
// programmatic use. It returns the accumulated result.
func ExecutePipeline(ctx context.Context, issue *pipeline.Issue, cfg *config.Config, rs *rules.RuleSet, deps *pipeline.Dependencies, stepNames []string) (*pipeline.Result, error) {
	pCtx := pipeline.NewContext(ctx, issue, cfg, rs)
	pCtx.Result.RunID = uuid.NewString()

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	pl, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		return nil, err
	}

	if err := pl.Run(pCtx); err != nil {
		return pCtx.Result, err
	}
	return pCtx.Result, nil
}
