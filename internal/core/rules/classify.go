package rules

import "fmt"

// MatchResult reports which labels matched and, for each, the pattern
// that fired first.
type MatchResult struct {
	// Labels in rule order. Never nil.
	Labels []string `json:"labels"`

	// Patterns maps each matched label to the source of the pattern
	// that matched it. Fallback labels map to their trigger pattern.
	Patterns map[string]string `json:"patterns"`
}

// Classify returns the set of labels whose patterns match anywhere in
// text. Matching is independent per label: zero, one, or many labels
// may result. Pure function of its inputs; safe for concurrent use.
func (rs *RuleSet) Classify(text string) ([]string, error) {
	res, err := rs.Match(text)
	if err != nil {
		return nil, err
	}
	return res.Labels, nil
}

// Match is Classify with per-label pattern attribution. Plain rules are
// evaluated first; fallback rules run after them so each fallback can
// see whether any of its siblings matched.
func (rs *RuleSet) Match(text string) (*MatchResult, error) {
	res := &MatchResult{
		Labels:   []string{},
		Patterns: make(map[string]string),
	}
	matched := make(map[string]bool, len(rs.rules))

	for _, r := range rs.rules {
		if r.Fallback != nil {
			continue
		}
		for _, p := range r.Patterns {
			ok, err := p.Match(text)
			if err != nil {
				return nil, fmt.Errorf("label %q: %w", r.Name, err)
			}
			if ok {
				matched[r.Name] = true
				res.Labels = append(res.Labels, r.Name)
				res.Patterns[r.Name] = p.Source
				break
			}
		}
	}

	for _, r := range rs.rules {
		if r.Fallback == nil {
			continue
		}
		ok, err := r.Fallback.When.Match(text)
		if err != nil {
			return nil, fmt.Errorf("label %q: %w", r.Name, err)
		}
		if !ok {
			continue
		}
		siblingHit := false
		for _, sibling := range r.Fallback.Of {
			if matched[sibling] {
				siblingHit = true
				break
			}
		}
		if !siblingHit {
			matched[r.Name] = true
			res.Labels = append(res.Labels, r.Name)
			res.Patterns[r.Name] = r.Fallback.When.Source
		}
	}

	return res, nil
}
