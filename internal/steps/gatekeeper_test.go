package steps

import (
	"context"
	"errors"
	"testing"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
	"github.com/glideinwms/issue-labeler/internal/core/rules"
)

func newTestContext(t *testing.T, issue *pipeline.Issue, cfg *config.Config) *pipeline.Context {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	rs, err := rules.Parse([]byte("BUG:\n  - '(?i)\\bbug\\b'\n"))
	if err != nil {
		t.Fatalf("failed to parse test rules: %v", err)
	}
	return pipeline.NewContext(context.Background(), issue, cfg, rs)
}

func TestGatekeeper_AllowsOpenIssue(t *testing.T) {
	ctx := newTestContext(t, &pipeline.Issue{
		Org: "glideinwms", Repo: "glideinwms", Number: 1,
		State: "open", Author: "someuser",
	}, nil)

	step := NewGatekeeper(&pipeline.Dependencies{})
	if err := step.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ctx.Result.Skipped {
		t.Errorf("Expected issue to pass the gatekeeper, got skip: %s", ctx.Result.SkipReason)
	}
}

func TestGatekeeper_SkipsBotAuthor(t *testing.T) {
	tests := []struct {
		name   string
		author string
		users  []string
		skip   bool
	}{
		{"bot suffix", "dependabot[bot]", nil, true},
		{"github actions", "github-actions", nil, true},
		{"configured bot user", "triage-bot", []string{"triage-bot"}, true},
		{"configured bot user case-insensitive", "Triage-Bot", []string{"triage-bot"}, true},
		{"regular user", "alice", []string{"triage-bot"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t, &pipeline.Issue{
				Org: "glideinwms", Repo: "glideinwms", Number: 2,
				State: "open", Author: tt.author,
			}, &config.Config{BotUsers: tt.users})

			err := NewGatekeeper(&pipeline.Dependencies{}).Run(ctx)
			if tt.skip {
				if !errors.Is(err, pipeline.ErrSkipPipeline) {
					t.Errorf("Expected ErrSkipPipeline for author %q, got %v", tt.author, err)
				}
				if !ctx.Result.Skipped {
					t.Error("Expected Result.Skipped to be set")
				}
			} else if err != nil {
				t.Errorf("Expected author %q to pass, got %v", tt.author, err)
			}
		})
	}
}

func TestGatekeeper_SkipsClosedIssue(t *testing.T) {
	ctx := newTestContext(t, &pipeline.Issue{
		Org: "glideinwms", Repo: "glideinwms", Number: 3,
		State: "closed", Author: "alice",
	}, nil)

	err := NewGatekeeper(&pipeline.Dependencies{}).Run(ctx)
	if !errors.Is(err, pipeline.ErrSkipPipeline) {
		t.Fatalf("Expected ErrSkipPipeline, got %v", err)
	}
}

func TestGatekeeper_RepositoryAllowlist(t *testing.T) {
	cfg := &config.Config{
		Repositories: []config.RepositoryConfig{
			{Org: "glideinwms", Repo: "glideinwms", Enabled: true},
			{Org: "glideinwms", Repo: "archived", Enabled: false},
		},
	}

	tests := []struct {
		name       string
		org, repo  string
		skip       bool
		skipReason string
	}{
		{"enabled repo", "glideinwms", "glideinwms", false, ""},
		{"disabled repo", "glideinwms", "archived", true, "repository processing disabled"},
		{"unknown repo", "other-org", "other-repo", true, "repository not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(t, &pipeline.Issue{
				Org: tt.org, Repo: tt.repo, Number: 4,
				State: "open", Author: "alice",
			}, cfg)

			err := NewGatekeeper(&pipeline.Dependencies{}).Run(ctx)
			if tt.skip {
				if !errors.Is(err, pipeline.ErrSkipPipeline) {
					t.Fatalf("Expected ErrSkipPipeline, got %v", err)
				}
				if ctx.Result.SkipReason != tt.skipReason {
					t.Errorf("Expected skip reason %q, got %q", tt.skipReason, ctx.Result.SkipReason)
				}
			} else if err != nil {
				t.Errorf("Expected repo to pass, got %v", err)
			}
		})
	}
}
