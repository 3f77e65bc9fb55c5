package steps

import (
	"log"

	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
)

// Suggest asks the LLM for label suggestions when the rules matched nothing.
// Suggestions are advisory and never applied automatically.
type Suggest struct {
	suggester pipeline.Suggester
}

// NewSuggest creates a new suggest step.
func NewSuggest(deps *pipeline.Dependencies) *Suggest {
	return &Suggest{
		suggester: deps.Suggester,
	}
}

// Name returns the step name.
func (s *Suggest) Name() string {
	return "suggest"
}

// Run requests label suggestions for unmatched issues. Suggestion
// failures are logged but never fail the pipeline.
func (s *Suggest) Run(ctx *pipeline.Context) error {
	if len(ctx.Result.MatchedLabels) > 0 {
		log.Printf("[suggest] Issue #%d already matched rules, skipping suggestion", ctx.Issue.Number)
		return nil
	}
	if s.suggester == nil {
		log.Printf("[suggest] No suggester configured, skipping")
		return nil
	}

	vocabulary := ctx.Rules.Labels()
	labels, err := s.suggester.SuggestLabels(ctx.Ctx, ctx.Issue.Title, ctx.Issue.Body, vocabulary)
	if err != nil {
		log.Printf("[suggest] Suggestion failed for issue #%d: %v", ctx.Issue.Number, err)
		return nil
	}

	ctx.Result.SuggestedLabels = labels
	log.Printf("[suggest] Issue #%d suggestions: %v", ctx.Issue.Number, labels)
	return nil
}
