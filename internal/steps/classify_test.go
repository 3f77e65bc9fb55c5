package steps

import (
	"context"
	"testing"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
	"github.com/glideinwms/issue-labeler/internal/core/rules"
)

func classifyContext(t *testing.T, issue *pipeline.Issue, cfg *config.Config) *pipeline.Context {
	t.Helper()
	if cfg == nil {
		cfg = &config.Config{}
	}
	rs := rules.Default()
	return pipeline.NewContext(context.Background(), issue, cfg, rs)
}

func TestClassify_TemplateBody(t *testing.T) {
	ctx := classifyContext(t, &pipeline.Issue{
		Number: 10,
		Body:   "Priority: [High]\nComponent: [Glidein]\nbug",
	}, nil)

	if err := NewClassify(&pipeline.Dependencies{}).Run(ctx); err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	want := map[string]bool{"High": true, "glidein": true, "BUG": true}
	if len(ctx.Result.MatchedLabels) != len(want) {
		t.Fatalf("Expected %d labels, got %v", len(want), ctx.Result.MatchedLabels)
	}
	for _, l := range ctx.Result.MatchedLabels {
		if !want[l] {
			t.Errorf("Unexpected label %q", l)
		}
	}
	if ctx.Result.MatchDetails["BUG"] == "" {
		t.Error("Expected MatchDetails to record the matching pattern for BUG")
	}
}

func TestClassify_IgnoresHTMLComments(t *testing.T) {
	// Issue template instructions arrive as HTML comments and must not
	// trigger matches.
	ctx := classifyContext(t, &pipeline.Issue{
		Number: 11,
		Body:   "<!-- Set Priority: [Critical] if production is down -->\nSomething looks off.",
	}, nil)

	if err := NewClassify(&pipeline.Dependencies{}).Run(ctx); err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	for _, l := range ctx.Result.MatchedLabels {
		if l == "Critical" {
			t.Error("Comment-only priority mention should not match")
		}
	}
}

func TestClassify_IncludeTitle(t *testing.T) {
	cfg := &config.Config{}
	cfg.Labeling.IncludeTitle = true

	ctx := classifyContext(t, &pipeline.Issue{
		Number: 12,
		Title:  "bug: glidein startup fails",
		Body:   "No template fields filled in.",
	}, cfg)

	if err := NewClassify(&pipeline.Dependencies{}).Run(ctx); err != nil {
		t.Fatalf("classify failed: %v", err)
	}

	found := false
	for _, l := range ctx.Result.MatchedLabels {
		if l == "BUG" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected BUG from the title, got %v", ctx.Result.MatchedLabels)
	}
}

func TestClassify_TruncatesBody(t *testing.T) {
	cfg := &config.Config{}
	cfg.Labeling.MaxBodyBytes = 64

	long := "Some filler text that pushes the marker past the size limit. "
	for len(long) < 200 {
		long += long
	}
	ctx := classifyContext(t, &pipeline.Issue{
		Number: 13,
		Body:   long + "\nbug",
	}, cfg)

	if err := NewClassify(&pipeline.Dependencies{}).Run(ctx); err != nil {
		t.Fatalf("classify failed: %v", err)
	}
	for _, l := range ctx.Result.MatchedLabels {
		if l == "BUG" {
			t.Error("Marker past the truncation bound should not match")
		}
	}
}

func TestClassify_NoRuleSet(t *testing.T) {
	ctx := pipeline.NewContext(context.Background(), &pipeline.Issue{Number: 14}, &config.Config{}, nil)
	if err := NewClassify(&pipeline.Dependencies{}).Run(ctx); err == nil {
		t.Error("Expected an error with no rule set loaded")
	}
}
