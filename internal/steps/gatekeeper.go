// Package steps contains the modular pipeline steps.
// Each step implements the pipeline.Step interface.
package steps

import (
	"log"
	"strings"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
)

// Gatekeeper decides whether an issue should be processed at all.
type Gatekeeper struct{}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run checks the issue author and repository configuration.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	log.Printf("[gatekeeper] Issue #%d, EventAction=%q, Repo=%s/%s",
		ctx.Issue.Number, ctx.Issue.EventAction, ctx.Issue.Org, ctx.Issue.Repo)

	// Skip events triggered by bot authors to prevent loops where a
	// bot-filed issue triggers a new workflow run.
	if ctx.Issue.Author != "" && isBotAuthor(ctx.Issue.Author, ctx.Config.BotUsers) {
		log.Printf("[gatekeeper] Skipping issue from bot author %q", ctx.Issue.Author)
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "issue filed by bot"
		return pipeline.ErrSkipPipeline
	}

	if ctx.Issue.State == "closed" {
		log.Printf("[gatekeeper] Issue #%d is closed, skipping", ctx.Issue.Number)
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "issue is closed"
		return pipeline.ErrSkipPipeline
	}

	// If the repositories list is empty, allow all (single-repo mode).
	if len(ctx.Config.Repositories) == 0 {
		return nil
	}

	repoConfig := findRepoConfig(ctx)
	if repoConfig == nil {
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "repository not configured"
		return pipeline.ErrSkipPipeline
	}

	if !repoConfig.Enabled {
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "repository processing disabled"
		return pipeline.ErrSkipPipeline
	}

	log.Printf("[gatekeeper] Repository %s/%s is enabled, proceeding", ctx.Issue.Org, ctx.Issue.Repo)
	return nil
}

// isBotAuthor returns true if the given username matches a known bot pattern
// or is in the user-configured bot_users list.
func isBotAuthor(author string, configBotUsers []string) bool {
	if strings.HasSuffix(author, "[bot]") ||
		strings.EqualFold(author, "github-actions") {
		return true
	}
	for _, u := range configBotUsers {
		if strings.EqualFold(author, u) {
			return true
		}
	}
	return false
}

// findRepoConfig looks up the repository configuration.
func findRepoConfig(ctx *pipeline.Context) *config.RepositoryConfig {
	for i := range ctx.Config.Repositories {
		repo := &ctx.Config.Repositories[i]
		if repo.Org == ctx.Issue.Org && repo.Repo == ctx.Issue.Repo {
			return repo
		}
	}
	return nil
}
