package steps

import (
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
)

// RegisterAll registers all built-in steps with the registry.
func RegisterAll(r *pipeline.Registry) {
	r.Register("gatekeeper", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewGatekeeper(deps), nil
	})

	r.Register("classify", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewClassify(deps), nil
	})

	r.Register("feedback", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewFeedback(deps), nil
	})

	r.Register("reopen", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewReopen(deps), nil
	})

	r.Register("supportlog", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewSupportLog(deps), nil
	})

	r.Register("assignment", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewAssignment(deps), nil
	})

	r.Register("apply", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewApply(deps), nil
	})

	r.Register("boardsync", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewBoardSync(deps), nil
	})

	r.Register("outputs", func(deps *pipeline.Dependencies) (pipeline.Step, error) {
		return NewOutputs(deps), nil
	})
}
