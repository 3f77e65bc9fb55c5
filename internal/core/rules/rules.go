// Package rules implements the label rule set: an ordered mapping from
// label names to regular-expression patterns, loaded from YAML and used
// to classify free-text issue bodies.
package rules

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultMatchTimeout bounds a single pattern evaluation for patterns
// that run on the backtracking engine. Patterns handled by the standard
// library's linear-time engine never hit this.
const DefaultMatchTimeout = 2 * time.Second

// ConfigError describes an invalid rule file. It names the offending
// label and pattern so a broken rule set fails loudly at load time.
type ConfigError struct {
	Label   string
	Pattern string
	Err     error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Label != "" && e.Pattern != "":
		return fmt.Sprintf("rule file: label %q: pattern %q: %v", e.Label, e.Pattern, e.Err)
	case e.Label != "":
		return fmt.Sprintf("rule file: label %q: %v", e.Label, e.Err)
	default:
		return fmt.Sprintf("rule file: %v", e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LabelRule is a single label entry: either a list of patterns, or a
// fallback declaration (exactly one of the two).
type LabelRule struct {
	Name     string
	Patterns []*Pattern
	Fallback *FallbackRule
}

// FallbackRule assigns its label when the When pattern matches and none
// of the Of sibling labels matched. It is the preferred encoding of
// "default bucket" entries; it replaces catch-all patterns that keep a
// negative-lookahead exclusion list in sync with sibling rules by hand.
type FallbackRule struct {
	Of   []string
	When *Pattern
}

// RuleSet is an ordered, immutable set of label rules. It is read-only
// after Load/Parse, so concurrent Classify calls need no locking.
type RuleSet struct {
	rules []*LabelRule
	index map[string]*LabelRule
}

// Labels returns the label names in rule order.
func (rs *RuleSet) Labels() []string {
	names := make([]string, 0, len(rs.rules))
	for _, r := range rs.rules {
		names = append(names, r.Name)
	}
	return names
}

// Len returns the number of label rules.
func (rs *RuleSet) Len() int {
	return len(rs.rules)
}

// Rule returns the rule for a label name, or nil.
func (rs *RuleSet) Rule(name string) *LabelRule {
	return rs.index[name]
}

// Load reads and parses a rule file from the given path.
func Load(path string) (*RuleSet, error) {
	return LoadWithTimeout(path, DefaultMatchTimeout)
}

// LoadWithTimeout is Load with an explicit per-pattern match timeout.
func LoadWithTimeout(path string, timeout time.Duration) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rule file: %w", err)
	}
	rs, err := ParseWithTimeout(data, timeout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse parses rule file content: a YAML mapping from label name to a
// sequence of regular-expression strings. A label may instead declare a
// fallback entry (see FallbackRule). Any violation of the rule set
// invariants yields a ConfigError and no partial rule set.
func Parse(data []byte) (*RuleSet, error) {
	return ParseWithTimeout(data, DefaultMatchTimeout)
}

// ParseWithTimeout is Parse with an explicit per-pattern match timeout.
func ParseWithTimeout(data []byte, timeout time.Duration) (*RuleSet, error) {
	// Decode at the node level to preserve rule order and to catch
	// duplicate label names ourselves.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("invalid YAML: %w", err)}
	}
	if len(doc.Content) == 0 {
		return nil, &ConfigError{Err: errors.New("empty rule file")}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ConfigError{Err: errors.New("top level must be a mapping of label names to pattern lists")}
	}

	rs := &RuleSet{index: make(map[string]*LabelRule)}
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]
		name := keyNode.Value
		if name == "" {
			return nil, &ConfigError{Err: fmt.Errorf("line %d: empty label name", keyNode.Line)}
		}
		if _, dup := rs.index[name]; dup {
			return nil, &ConfigError{Label: name, Err: errors.New("duplicate label name")}
		}

		rule, err := parseRule(name, valNode, timeout)
		if err != nil {
			return nil, err
		}
		rs.rules = append(rs.rules, rule)
		rs.index[name] = rule
	}

	if err := rs.validateFallbacks(); err != nil {
		return nil, err
	}
	return rs, nil
}

func parseRule(name string, valNode *yaml.Node, timeout time.Duration) (*LabelRule, error) {
	rule := &LabelRule{Name: name}

	switch valNode.Kind {
	case yaml.SequenceNode:
		var sources []string
		if err := valNode.Decode(&sources); err != nil {
			return nil, &ConfigError{Label: name, Err: fmt.Errorf("patterns must be a sequence of strings: %w", err)}
		}
		if len(sources) == 0 {
			return nil, &ConfigError{Label: name, Err: errors.New("label has no patterns")}
		}
		for _, src := range sources {
			p, err := CompilePattern(src, timeout)
			if err != nil {
				return nil, &ConfigError{Label: name, Pattern: src, Err: err}
			}
			rule.Patterns = append(rule.Patterns, p)
		}

	case yaml.MappingNode:
		var entry struct {
			Fallback *struct {
				Of   []string `yaml:"of"`
				When string   `yaml:"when"`
			} `yaml:"fallback"`
		}
		if err := valNode.Decode(&entry); err != nil {
			return nil, &ConfigError{Label: name, Err: fmt.Errorf("invalid entry: %w", err)}
		}
		if entry.Fallback == nil {
			return nil, &ConfigError{Label: name, Err: errors.New("mapping entry must declare 'fallback'")}
		}
		if len(entry.Fallback.Of) == 0 {
			return nil, &ConfigError{Label: name, Err: errors.New("fallback requires a non-empty 'of' list")}
		}
		if entry.Fallback.When == "" {
			return nil, &ConfigError{Label: name, Err: errors.New("fallback requires a 'when' pattern")}
		}
		when, err := CompilePattern(entry.Fallback.When, timeout)
		if err != nil {
			return nil, &ConfigError{Label: name, Pattern: entry.Fallback.When, Err: err}
		}
		rule.Fallback = &FallbackRule{Of: entry.Fallback.Of, When: when}

	default:
		return nil, &ConfigError{Label: name, Err: errors.New("entry must be a pattern sequence or a fallback mapping")}
	}

	return rule, nil
}

// validateFallbacks checks that every fallback references existing,
// non-fallback sibling labels.
func (rs *RuleSet) validateFallbacks() error {
	for _, r := range rs.rules {
		if r.Fallback == nil {
			continue
		}
		for _, sibling := range r.Fallback.Of {
			target, ok := rs.index[sibling]
			if !ok {
				return &ConfigError{Label: r.Name, Err: fmt.Errorf("fallback references unknown label %q", sibling)}
			}
			if target.Fallback != nil {
				return &ConfigError{Label: r.Name, Err: fmt.Errorf("fallback references fallback label %q", sibling)}
			}
		}
	}
	return nil
}
