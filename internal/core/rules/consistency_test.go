package rules

import "testing"

func TestCheckExclusions_LookaheadInSync(t *testing.T) {
	rs := mustParse(t, `
frontend:
  - '(?i)component\s*:?\s*\[?\s*frontend\s*\]'
factory:
  - '(?i)component\s*:?\s*\[?\s*factory\s*\]'
documentation:
  - '(?i)component\s*:?\s*\[?\s*doc(umentation|s)?\s*\]'
other:
  - '(?i)component\s*:?\s*\[?\s*(?!frontend|factory|doc)[^\s\[\]]'
`)

	if warnings := rs.CheckExclusions(); len(warnings) != 0 {
		t.Errorf("Expected no warnings for a synchronized exclusion list, got %v", warnings)
	}
}

func TestCheckExclusions_LookaheadMissingSibling(t *testing.T) {
	// "glidein" was added without updating the catch-all's exclusions.
	rs := mustParse(t, `
frontend:
  - '(?i)component\s*:?\s*\[?\s*frontend\s*\]'
glidein:
  - '(?i)component\s*:?\s*\[?\s*glidein\s*\]'
other:
  - '(?i)component\s*:?\s*\[?\s*(?!frontend)[^\s\[\]]'
`)

	warnings := rs.CheckExclusions()
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].Label != "other" || warnings[0].Sibling != "glidein" {
		t.Errorf("Expected warning about 'glidein' missing from 'other', got %+v", warnings[0])
	}
}

func TestCheckExclusions_LookaheadIgnoresOtherGroups(t *testing.T) {
	// Priority rules key on a different template line; the component
	// catch-all must not be expected to exclude them.
	rs := mustParse(t, `
Critical:
  - '(?i)priority\s*:?\s*\[?\s*critical'
frontend:
  - '(?i)component\s*:?\s*\[?\s*frontend\s*\]'
other:
  - '(?i)component\s*:?\s*\[?\s*(?!frontend)[^\s\[\]]'
`)

	if warnings := rs.CheckExclusions(); len(warnings) != 0 {
		t.Errorf("Expected no cross-group warnings, got %v", warnings)
	}
}

func TestCheckExclusions_FallbackMissingSibling(t *testing.T) {
	rs := mustParse(t, `
frontend:
  - '(?i)component\s*:?\s*\[?\s*frontend\s*\]'
factory:
  - '(?i)component\s*:?\s*\[?\s*factory\s*\]'
other:
  fallback:
    of: [frontend]
    when: '(?i)component\s*:?\s*\[?\s*[^\s\[\]]'
`)

	warnings := rs.CheckExclusions()
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d: %v", len(warnings), warnings)
	}
	if warnings[0].Label != "other" || warnings[0].Sibling != "factory" {
		t.Errorf("Expected warning about 'factory' missing from 'other', got %+v", warnings[0])
	}
}

func TestCheckExclusions_FallbackInSync(t *testing.T) {
	rs := mustParse(t, `
frontend:
  - '(?i)component\s*:?\s*\[?\s*frontend\s*\]'
other:
  fallback:
    of: [frontend]
    when: '(?i)component\s*:?\s*\[?\s*[^\s\[\]]'
`)

	if warnings := rs.CheckExclusions(); len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
}

func TestLookaheadAlternatives(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"no lookahead", `(?i)frontend`, nil},
		{"single alternative", `(?!frontend)`, []string{"frontend"}},
		{"multiple alternatives", `(?!frontend|factory|glidein)`, []string{"frontend", "factory", "glidein"}},
		{"escapes dropped", `(?!docs?\b|ci/testing)`, []string{"docs", "ci/testing"}},
		{"nested group", `(?!front(end)?|factory)`, []string{"frontend", "factory"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lookaheadAlternatives(tt.src)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Expected alternative %d to be %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestLiteralStem(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`(?i)component\s*:?\s*\[?\s*frontend\s*\]`, "component"},
		{`(?i)component\s*:\s*(?!frontend|factory)[^\s\[\]]`, "component"},
		{`(?i)priority\s*:?\s*\[?\s*critical`, "priority"},
		{`\s*\d+`, ""},
	}

	for _, tt := range tests {
		if got := literalStem(tt.src); got != tt.want {
			t.Errorf("literalStem(%q): expected %q, got %q", tt.src, tt.want, got)
		}
	}
}
