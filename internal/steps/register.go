package steps

import (
	"github.com/glideinwms/issue-labeler/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})

	r.Register("classify", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewClassify(deps), nil
	})

	r.Register("suggest", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewSuggest(deps), nil
	})

	r.Register("label_apply", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewLabelApply(deps), nil
	})
}
