package rules

import (
	_ "embed"
	"fmt"
	"time"
)

//go:embed default_rules.yaml
var defaultRules []byte

// Default returns the rule set shipped with the labeler: the glideinwms
// issue-template rules. A parse failure here is a build defect, so it
// panics rather than returning an error.
func Default() *RuleSet {
	rs, err := Parse(defaultRules)
	if err != nil {
		panic(fmt.Sprintf("embedded rule set is invalid: %v", err))
	}
	return rs
}

// DefaultWithTimeout is Default with an explicit match timeout.
func DefaultWithTimeout(timeout time.Duration) (*RuleSet, error) {
	return ParseWithTimeout(defaultRules, timeout)
}
