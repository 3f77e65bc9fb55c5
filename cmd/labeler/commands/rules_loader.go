package commands

import (
	"fmt"

	"github.com/glideinwms/issue-labeler/internal/core/config"
	"github.com/glideinwms/issue-labeler/internal/core/rules"
)

// loadRuleSet resolves the label rule set: the --rules flag wins, then
// the config's rules path, then the built-in glideinwms rule set.
func loadRuleSet(cfg *config.Config) (*rules.RuleSet, error) {
	path := rulesFile
	if path == "" && cfg != nil {
		path = cfg.Rules.Path
	}

	timeout := rules.DefaultMatchTimeout
	if cfg != nil {
		timeout = cfg.MatchTimeout()
	}

	if path == "" {
		if verbose {
			fmt.Println("Using built-in label rules")
		}
		return rules.DefaultWithTimeout(timeout)
	}

	rs, err := rules.LoadWithTimeout(path, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", path, err)
	}
	if verbose {
		fmt.Printf("Loaded %d label rules from %s\n", rs.Len(), path)
	}
	return rs, nil
}
