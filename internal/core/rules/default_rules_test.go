package rules

import (
	"reflect"
	"sort"
	"testing"
)

func classifyDefault(t *testing.T, text string) []string {
	t.Helper()
	labels, err := Default().Classify(text)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	return labels
}

func TestDefault_Loads(t *testing.T) {
	rs := Default()
	if rs.Len() == 0 {
		t.Fatal("Expected the embedded rule set to have labels")
	}
	for _, name := range []string{"Critical", "High", "Medium", "Low", "BUG", "osg", "fife", "frontend", "factory", "glidein", "other"} {
		if rs.Rule(name) == nil {
			t.Errorf("Expected embedded rule set to define label %q", name)
		}
	}
}

func TestDefault_ExclusionsInSync(t *testing.T) {
	if warnings := Default().CheckExclusions(); len(warnings) != 0 {
		t.Errorf("Expected no consistency warnings for the embedded rule set, got %v", warnings)
	}
}

func TestDefault_PriorityMutuallyExclusive(t *testing.T) {
	priorities := []string{"Critical", "High", "Medium", "Low"}

	for _, p := range priorities {
		t.Run(p, func(t *testing.T) {
			labels := classifyDefault(t, "Priority: ["+p+"]")

			var hit []string
			for _, l := range labels {
				for _, q := range priorities {
					if l == q {
						hit = append(hit, l)
					}
				}
			}
			if len(hit) != 1 || hit[0] != p {
				t.Errorf("Expected exactly [%s] among priority labels, got %v", p, hit)
			}
		})
	}
}

func TestDefault_CaseInsensitive(t *testing.T) {
	for _, body := range []string{"Priority: [critical]", "Priority: [Critical]", "Priority: [CRITICAL]"} {
		t.Run(body, func(t *testing.T) {
			labels := classifyDefault(t, body)
			if len(labels) != 1 || labels[0] != "Critical" {
				t.Errorf("Expected [Critical], got %v", labels)
			}
		})
	}
}

func TestDefault_ComponentFallback(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"known component, no other", "Component: [Frontend]", []string{"frontend"}},
		{"frontend-mon is not frontend", "Component: [Frontend-Mon]", []string{"frontend-mon"}},
		{"factory-mon is not factory", "Component: [Factory-Mon]", []string{"factory-mon"}},
		{"glidein", "Component: [Glidein]", []string{"glidein"}},
		{"docs alias", "Component: [Docs]", []string{"documentation"}},
		{"ci slash testing", "Component: [CI/Testing]", []string{"testing"}},
		{"release", "Component: [Release]", []string{"release"}},
		{"unknown component falls back", "Component: [Something]", []string{"other"}},
		{"glideinwms is not glidein", "Component: [glideinwms]", []string{"other"}},
		{"no component line", "nothing here", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyDefault(t, tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDefault_StakeholderMultiMatch(t *testing.T) {
	labels := classifyDefault(t, "Stakeholder: [OSG]\nStakeholder: [FIFE]")

	want := []string{"osg", "fife"}
	sort.Strings(labels)
	sort.Strings(want)
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Expected %v, got %v", want, labels)
	}
}

func TestDefault_ExampleScenario(t *testing.T) {
	labels := classifyDefault(t, "Priority: [High]\nComponent: [Glidein]\nbug")

	want := []string{"BUG", "High", "glidein"}
	sort.Strings(labels)
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("Expected %v, got %v", want, labels)
	}
}
