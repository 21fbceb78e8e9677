package steps

import (
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/intent"
)

// Feedback maintains the awaiting-feedback label: maintainer activity
// marks an open managed issue as blocked on the reporter; reporter
// activity clears the mark. A maintainer close clears both the awaiting
// and log-required labels.
type Feedback struct {
	deps *pipeline.Dependencies
}

// NewFeedback creates a new feedback step.
func NewFeedback(deps *pipeline.Dependencies) *Feedback {
	return &Feedback{deps: deps}
}

// Name returns the step name.
func (s *Feedback) Name() string {
	return "feedback"
}

// Run applies the awaiting-feedback rules. Exempt issues receive no
// awaiting mutations at all. Edits do not count as maintainer activity.
func (s *Feedback) Run(ctx *pipeline.Context) error {
	labels := ctx.Config.Labels
	if labels.Awaiting == "" || ctx.Issue.HasLabel(labels.Exempt) {
		return nil
	}

	facts := ctx.Facts

	if facts.SenderPrivileged {
		if ctx.Event.Action == "edited" {
			return nil
		}
		if ctx.Issue.Open() && facts.Managed && !ctx.Issue.HasLabel(labels.Awaiting) {
			ctx.Add(intent.Intent{Kind: intent.AddLabel, Label: labels.Awaiting})
		}
		if !ctx.Issue.Open() {
			// A maintainer close resolves the issue; neither tracking
			// label survives it.
			if ctx.Issue.HasLabel(labels.Awaiting) {
				ctx.Add(intent.Intent{Kind: intent.RemoveLabel, Label: labels.Awaiting})
			}
			if ctx.Issue.HasLabel(labels.LogRequired) {
				ctx.Add(intent.Intent{Kind: intent.RemoveLabel, Label: labels.LogRequired})
			}
		}
		return nil
	}

	// Non-privileged activity always clears the awaiting mark. Sweep
	// triggers carry no sender and leave it alone.
	if ctx.Event.Name != event.NameSweep && ctx.Event.Sender != "" && ctx.Issue.HasLabel(labels.Awaiting) {
		ctx.Add(intent.Intent{Kind: intent.RemoveLabel, Label: labels.Awaiting})
	}

	return nil
}
