package steps

import (
	"fmt"
	"log"
	"strings"

	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
)

// LabelApply adds the matched labels to the issue on GitHub.
type LabelApply struct {
	labels pipeline.LabelService
	dryRun bool
}

// NewLabelApply creates a new label application step.
func NewLabelApply(deps *pipeline.Dependencies) *LabelApply {
	return &LabelApply{
		labels: deps.Labels,
		dryRun: deps.DryRun,
	}
}

// Name returns the step name.
func (s *LabelApply) Name() string {
	return "label_apply"
}

// Run applies the labels the issue does not already carry.
func (s *LabelApply) Run(ctx *pipeline.Context) error {
	missing := missingLabels(ctx.Result.MatchedLabels, ctx.Issue.Labels)
	if len(missing) == 0 {
		log.Printf("[label_apply] Issue #%d needs no new labels", ctx.Issue.Number)
		return nil
	}

	if s.dryRun || ctx.Config.Labeling.DryRun {
		log.Printf("[label_apply] DRY RUN: would add labels %v to %s/%s#%d",
			missing, ctx.Issue.Org, ctx.Issue.Repo, ctx.Issue.Number)
		ctx.Result.LabelsApplied = missing
		return nil
	}

	if s.labels == nil {
		return fmt.Errorf("no label service configured, cannot apply %v", missing)
	}

	if err := s.labels.AddLabels(ctx.Ctx, ctx.Issue.Org, ctx.Issue.Repo, ctx.Issue.Number, missing); err != nil {
		return fmt.Errorf("failed to add labels to issue #%d: %w", ctx.Issue.Number, err)
	}

	ctx.Result.LabelsApplied = missing
	log.Printf("[label_apply] Added labels %v to %s/%s#%d",
		missing, ctx.Issue.Org, ctx.Issue.Repo, ctx.Issue.Number)
	return nil
}

// missingLabels returns matched labels not already on the issue.
// Comparison is case-insensitive, matching GitHub's label semantics.
func missingLabels(matched, existing []string) []string {
	have := make(map[string]bool, len(existing))
	for _, l := range existing {
		have[strings.ToLower(l)] = true
	}
	var missing []string
	for _, l := range matched {
		if !have[strings.ToLower(l)] {
			missing = append(missing, l)
		}
	}
	return missing
}
