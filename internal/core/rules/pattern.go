package rules

import (
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// Pattern is a compiled rule pattern. Patterns accepted by the standard
// library's RE2 engine run there (linear time, no timeout needed).
// Patterns using constructs RE2 rejects, such as the negative-lookahead
// catch-alls, compile on regexp2 with a match timeout so a
// pathological pattern/input pair cannot hang classification.
type Pattern struct {
	Source string

	std   *regexp.Regexp
	fancy *regexp2.Regexp
}

// CompilePattern compiles a single pattern string. The timeout applies
// only to patterns that end up on the backtracking engine.
func CompilePattern(src string, timeout time.Duration) (*Pattern, error) {
	if re, err := regexp.Compile(src); err == nil {
		return &Pattern{Source: src, std: re}, nil
	}

	fancy, err := regexp2.Compile(src, regexp2.None)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression: %w", err)
	}
	if timeout > 0 {
		fancy.MatchTimeout = timeout
	}
	return &Pattern{Source: src, fancy: fancy}, nil
}

// Match reports whether the pattern matches anywhere in text. Search
// semantics: a pattern only anchors if it says so itself. The error is
// non-nil only for a match timeout on the backtracking engine.
func (p *Pattern) Match(text string) (bool, error) {
	if p.std != nil {
		return p.std.MatchString(text), nil
	}
	ok, err := p.fancy.MatchString(text)
	if err != nil {
		return false, fmt.Errorf("pattern %q: %w", p.Source, err)
	}
	return ok, nil
}
