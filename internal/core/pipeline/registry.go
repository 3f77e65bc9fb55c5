package pipeline

import (
	"context"
	"fmt"
	"sync"
)

// Registry holds registered step factories.
// Step factories create Step instances, allowing for dependency injection.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]StepFactory
}

// StepFactory is a function that creates a Step.
// It receives dependencies (like clients, config) as parameters.
type StepFactory func(deps *Dependencies) (Step, error)

// LabelService applies labels to issues. Implemented by the GitHub
// integration client; steps depend on this interface so they can be
// tested without the network.
type LabelService interface {
	AddLabels(ctx context.Context, org, repo string, number int, labels []string) error
}

// Suggester proposes labels from the rule set vocabulary for bodies
// that matched nothing. Implemented by the Gemini integration.
type Suggester interface {
	SuggestLabels(ctx context.Context, title, body string, vocabulary []string) ([]string, error)
	Close() error
}

// Dependencies holds the dependencies that can be injected into steps.
type Dependencies struct {
	DryRun    bool
	Labels    LabelService
	Suggester Suggester
}

// Close releases any resources held by the dependencies.
func (d *Dependencies) Close() {
	if d.Suggester != nil {
		_ = d.Suggester.Close()
	}
}

// NewRegistry creates a new step registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]StepFactory),
	}
}

// Register adds a step factory to the registry.
func (r *Registry) Register(name string, factory StepFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a step factory by name.
func (r *Registry) Get(name string) (StepFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.factories[name]
	return factory, ok
}

// BuildFromNames creates a pipeline from a list of step names.
func (r *Registry) BuildFromNames(names []string, deps *Dependencies) (*Pipeline, error) {
	var steps []Step
	for _, name := range names {
		factory, ok := r.Get(name)
		if !ok {
			return nil, fmt.Errorf("unknown step: %s", name)
		}
		step, err := factory(deps)
		if err != nil {
			return nil, fmt.Errorf("failed to create step '%s': %w", name, err)
		}
		steps = append(steps, step)
	}
	return New(steps...), nil
}

// Presets defines the built-in workflow presets.
var Presets = map[string][]string{
	// issue-label: Standard issue labeling workflow
	"issue-label": {
		"gatekeeper",
		"classify",
		"label_apply",
	},

	// classify-only: Just classify, no label writes
	"classify-only": {
		"gatekeeper",
		"classify",
	},

	// label-suggest: Labeling plus LLM suggestions for unmatched issues
	"label-suggest": {
		"gatekeeper",
		"classify",
		"suggest",
		"label_apply",
	},
}

// GetPreset returns the step names for a preset workflow.
func GetPreset(name string) ([]string, bool) {
	steps, ok := Presets[name]
	return steps, ok
}

// ResolveSteps determines the steps to use based on config.
// Priority: explicit steps > workflow preset > default
func ResolveSteps(explicitSteps []string, workflow string) []string {
	if len(explicitSteps) > 0 {
		return explicitSteps
	}
	if workflow != "" {
		if preset, ok := GetPreset(workflow); ok {
			return preset
		}
	}
	// Default to issue-label
	return Presets["issue-label"]
}
