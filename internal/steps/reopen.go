package steps

import (
	"log"

	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/intent"
	"github.com/shepherdly/shepherd-bot/internal/utils/text"
)

// Reopen handles non-privileged closes and comments on closed issues.
//
// Default policy "reopen": a managed issue closed by a non-privileged user
// is reopened immediately with the configured explanatory comment and the
// reopened label. Issues already carrying that label were reopened this
// way before and may be closed by anyone. Policy "flag" only labels the
// issue for maintainer attention.
type Reopen struct {
	deps *pipeline.Dependencies
}

// NewReopen creates a new reopen step.
func NewReopen(deps *pipeline.Dependencies) *Reopen {
	return &Reopen{deps: deps}
}

// Name returns the step name.
func (s *Reopen) Name() string {
	return "reopen"
}

// Run applies the reopen rules. Privileged senders and sweep triggers
// never reopen anything.
func (s *Reopen) Run(ctx *pipeline.Context) error {
	facts := ctx.Facts
	if facts.SenderPrivileged || !facts.Managed || ctx.Event.Name == event.NameSweep || ctx.Event.Sender == "" {
		return nil
	}

	labels := ctx.Config.Labels

	switch {
	case ctx.Event.Name == event.NameIssues && ctx.Event.Action == "closed":
		if ctx.Issue.HasLabel(labels.Reopened) {
			// Reopened issues may be closed by anyone.
			return nil
		}
		ctx.Add(intent.Intent{Kind: intent.AddLabel, Label: labels.Reopened})
		if ctx.Config.Close.Policy == config.ClosePolicyReopen {
			ctx.Add(intent.Intent{Kind: intent.SetState, State: "open"})
			if msg := ctx.Config.Close.Message; msg != "" {
				ctx.Add(intent.Intent{Kind: intent.CreateComment, Body: text.Render(msg, ctx.Event.Sender)})
			}
		} else if s.deps.Verbose {
			log.Printf("[reopen] issue #%d flagged for maintainer attention", ctx.Issue.Number)
		}

	case ctx.Event.Name == event.NameIssueComment && ctx.Event.Action == "created" && !ctx.Issue.Open():
		if ctx.Issue.HasLabel(labels.Reopened) {
			return nil
		}
		ctx.Add(intent.Intent{Kind: intent.SetState, State: "open"})
		ctx.Add(intent.Intent{Kind: intent.AddLabel, Label: labels.Reopened})
	}

	return nil
}
