// Package steps contains the ordered rule steps the pipeline evaluates
// against each trigger. Each step implements the pipeline.Step interface;
// transition rules emit intents which the apply step executes.
package steps

import (
	"fmt"
	"log"

	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
)

// Gatekeeper validates the trigger and filters out bot-generated events
// before any external call is made.
type Gatekeeper struct {
	deps *pipeline.Dependencies
}

// NewGatekeeper creates a new gatekeeper step.
func NewGatekeeper(deps *pipeline.Dependencies) *Gatekeeper {
	return &Gatekeeper{deps: deps}
}

// Name returns the step name.
func (s *Gatekeeper) Name() string {
	return "gatekeeper"
}

// Run validates the trigger. An unexpected event type or a payload without
// an issue is fatal; the evaluator has no defined behavior for either. An
// event sent by a bot ends the pipeline gracefully to prevent the bot's
// own mutations from triggering another evaluation.
func (s *Gatekeeper) Run(ctx *pipeline.Context) error {
	ev := ctx.Event

	switch ev.Name {
	case event.NameIssues, event.NameIssueComment, event.NameSweep:
	default:
		return fmt.Errorf("unexpected event type %q", ev.Name)
	}

	if ctx.Issue == nil {
		return fmt.Errorf("%s event has no resolvable issue", ev.Name)
	}

	if s.deps.Verbose {
		log.Printf("[gatekeeper] issue #%d, event=%q action=%q sender=%q repo=%s/%s",
			ctx.Issue.Number, ev.Name, ev.Action, ev.Sender, ev.Org, ev.Repo)
	}

	if ev.Sender != "" && s.deps.Actors.IsBot(ev.Sender) {
		log.Printf("[gatekeeper] skipping event from bot %q", ev.Sender)
		ctx.Result.Skipped = true
		ctx.Result.SkipReason = "event triggered by bot"
		return pipeline.ErrSkipPipeline
	}

	return nil
}
