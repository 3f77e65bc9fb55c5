package rules

import (
	"fmt"
	"strings"
)

// Warning flags a catch-all entry whose exclusions drifted out of sync
// with its sibling rules. The correctness of "default bucket" entries
// depends on keeping that list aligned whenever a sibling is added,
// removed, or renamed; the engine cannot guarantee it, so lint does.
type Warning struct {
	Label   string // the catch-all / fallback label
	Sibling string // the sibling label not covered by its exclusions
	Pattern string // the offending pattern source
}

func (w Warning) String() string {
	return fmt.Sprintf("label %q is not excluded by the catch-all entry %q (pattern %q)",
		w.Sibling, w.Label, w.Pattern)
}

// CheckExclusions verifies the exclusion lists of catch-all entries.
// Two forms are checked:
//
//   - fallback entries: every sibling rule keyed on the same line (the
//     same literal stem, e.g. "component") must appear in the 'of' list;
//   - negative-lookahead catch-all patterns: every such sibling must be
//     covered by one of the lookahead's alternatives.
//
// The check is a heuristic over pattern text, meant to catch the common
// drift (a component added without updating the catch-all), not to
// prove equivalence.
func (rs *RuleSet) CheckExclusions() []Warning {
	var warnings []Warning
	for _, r := range rs.rules {
		if r.Fallback != nil {
			warnings = append(warnings, rs.checkFallback(r)...)
			continue
		}
		for _, p := range r.Patterns {
			warnings = append(warnings, rs.checkLookahead(r, p)...)
		}
	}
	return warnings
}

func (rs *RuleSet) checkFallback(r *LabelRule) []Warning {
	stem := literalStem(r.Fallback.When.Source)
	if stem == "" {
		return nil
	}
	of := make(map[string]bool, len(r.Fallback.Of))
	for _, name := range r.Fallback.Of {
		of[name] = true
	}

	var warnings []Warning
	for _, sibling := range rs.rules {
		if sibling == r || sibling.Fallback != nil {
			continue
		}
		if !sharesStem(sibling, stem) || of[sibling.Name] {
			continue
		}
		warnings = append(warnings, Warning{
			Label:   r.Name,
			Sibling: sibling.Name,
			Pattern: r.Fallback.When.Source,
		})
	}
	return warnings
}

func (rs *RuleSet) checkLookahead(r *LabelRule, p *Pattern) []Warning {
	alts := lookaheadAlternatives(p.Source)
	if len(alts) == 0 {
		return nil
	}
	stem := literalStem(p.Source)

	var warnings []Warning
	for _, sibling := range rs.rules {
		if sibling == r || sibling.Fallback != nil {
			continue
		}
		if stem != "" && !sharesStem(sibling, stem) {
			continue
		}
		if !coveredByAlternatives(sibling, alts) {
			warnings = append(warnings, Warning{
				Label:   r.Name,
				Sibling: sibling.Name,
				Pattern: p.Source,
			})
		}
	}
	return warnings
}

// sharesStem reports whether any of the rule's patterns key on the same
// literal word as the catch-all (e.g. "component").
func sharesStem(r *LabelRule, stem string) bool {
	for _, p := range r.Patterns {
		if strings.Contains(strings.ToLower(p.Source), stem) {
			return true
		}
	}
	return false
}

// coveredByAlternatives reports whether one of the lookahead
// alternatives accounts for the sibling label.
func coveredByAlternatives(sibling *LabelRule, alts []string) bool {
	name := strings.ToLower(sibling.Name)
	for _, alt := range alts {
		if strings.Contains(name, alt) || strings.Contains(alt, name) {
			return true
		}
		for _, p := range sibling.Patterns {
			if strings.Contains(strings.ToLower(p.Source), alt) {
				return true
			}
		}
	}
	return false
}

// lookaheadAlternatives extracts the top-level alternatives of the
// first negative-lookahead group in src, reduced to their literal
// characters and lowercased. Returns nil if src has no lookahead.
func lookaheadAlternatives(src string) []string {
	i := strings.Index(src, "(?!")
	if i < 0 {
		return nil
	}
	var alts []string
	depth := 1
	start := i + 3
	for j := i + 3; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				if a := literalChars(src[start:j]); a != "" {
					alts = append(alts, a)
				}
				return alts
			}
		case '|':
			if depth == 1 {
				if a := literalChars(src[start:j]); a != "" {
					alts = append(alts, a)
				}
				start = j + 1
			}
		}
	}
	return alts
}

// literalChars keeps the letters, digits, '-' and '/' of a regex
// fragment, dropping escapes and metacharacters.
func literalChars(frag string) string {
	var b strings.Builder
	for k := 0; k < len(frag); k++ {
		c := frag[k]
		switch {
		case c == '\\':
			k++
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z',
			c >= '0' && c <= '9', c == '-', c == '/':
			b.WriteByte(c)
		}
	}
	return strings.ToLower(b.String())
}

// literalStem returns the longest literal word of src outside its
// lookahead group; that word names the template line the pattern keys
// on ("component", "priority", ...).
func literalStem(src string) string {
	if i := strings.Index(src, "(?!"); i >= 0 {
		depth := 1
		j := i + 3
		for ; j < len(src) && depth > 0; j++ {
			switch src[j] {
			case '\\':
				j++
			case '(':
				depth++
			case ')':
				depth--
			}
		}
		src = src[:i] + src[j:]
	}

	best := ""
	run := 0
	for k := 0; k <= len(src); k++ {
		letter := false
		if k < len(src) {
			c := src[k]
			letter = (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
			if letter && k > 0 && src[k-1] == '\\' {
				letter = false // escape sequence, not a literal
			}
		}
		if letter {
			run++
			continue
		}
		if run > len(best) {
			best = src[k-run : k]
		}
		run = 0
	}
	return strings.ToLower(best)
}
