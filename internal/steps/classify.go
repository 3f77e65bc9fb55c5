package steps

import (
	"fmt"
	"log"

	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
	"github.com/glideinwms/issue-labeler/internal/utils/text"
)

// Classify runs the issue text through the label rule set.
type Classify struct{}

// NewClassify creates a new classify step.
func NewClassify(deps *pipeline.Dependencies) *Classify {
	return &Classify{}
}

// Name returns the step name.
func (s *Classify) Name() string {
	return "classify"
}

// Run matches rule patterns against the normalized issue text.
func (s *Classify) Run(ctx *pipeline.Context) error {
	if ctx.Rules == nil {
		return fmt.Errorf("no rule set loaded")
	}

	body := text.Normalize(ctx.Issue.Body)
	if ctx.Config.Labeling.IncludeTitle && ctx.Issue.Title != "" {
		body = ctx.Issue.Title + "\n" + body
	}
	if max := ctx.Config.Labeling.MaxBodyBytes; max > 0 {
		body = text.Truncate(body, max)
	}

	result, err := ctx.Rules.Match(body)
	if err != nil {
		return fmt.Errorf("failed to classify issue #%d: %w", ctx.Issue.Number, err)
	}

	ctx.Result.MatchedLabels = result.Labels
	ctx.Result.MatchDetails = result.Patterns

	log.Printf("[classify] Issue #%d matched %d label(s): %v",
		ctx.Issue.Number, len(result.Labels), result.Labels)
	return nil
}
