package steps

import (
	"fmt"
	"log"

	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/intent"
)

// Apply executes the accumulated intents against the tracker in the fixed
// order: state, labels, assignees, then comment writes. Intents whose
// target state already holds are skipped without a network call, and the
// local snapshot is updated optimistically after each mutation so later
// steps see the resulting state without a re-fetch.
type Apply struct {
	deps *pipeline.Dependencies
}

// NewApply creates a new apply step.
func NewApply(deps *pipeline.Dependencies) *Apply {
	return &Apply{deps: deps}
}

// Name returns the step name.
func (s *Apply) Name() string {
	return "apply"
}

// Run applies each intent idempotently. Dry-run mode logs the mutations
// it would make and still updates the snapshot, so derived outputs match
// a real run.
func (s *Apply) Run(ctx *pipeline.Context) error {
	for _, it := range intent.Order(ctx.Intents()) {
		if skip, reason := s.isNoop(ctx.Issue, it); skip {
			if s.deps.Verbose {
				log.Printf("[apply] skipping %s: %s", it, reason)
			}
			continue
		}

		if s.deps.DryRun {
			log.Printf("[apply] DRY RUN: would apply %s to issue #%d", it, ctx.Issue.Number)
		} else if err := s.execute(ctx, it); err != nil {
			return err
		}

		s.updateSnapshot(ctx.Issue, it)
		ctx.Result.Applied = append(ctx.Result.Applied, it.String())
	}
	return nil
}

// isNoop reports whether the intent's target state already holds on the
// snapshot. An empty or unconfigured label name is never a valid target.
func (s *Apply) isNoop(issue *event.Issue, it intent.Intent) (bool, string) {
	switch it.Kind {
	case intent.SetState:
		if issue.State == it.State {
			return true, "state already " + it.State
		}
	case intent.AddLabel:
		if it.Label == "" {
			return true, "label not configured"
		}
		if issue.HasLabel(it.Label) {
			return true, "label already present"
		}
	case intent.RemoveLabel:
		if it.Label == "" {
			return true, "label not configured"
		}
		if !issue.HasLabel(it.Label) {
			return true, "label already absent"
		}
	case intent.AddAssignee:
		if it.User == "" {
			return true, "no assignee"
		}
		for _, a := range issue.Assignees {
			if a == it.User {
				return true, "already assigned"
			}
		}
	case intent.RemoveAssignees:
		if len(it.Users) == 0 || !issue.Assigned() {
			return true, "no assignees"
		}
	case intent.CreateComment, intent.UpdateComment, intent.UpdateBody:
		if it.Body == "" {
			return true, "empty body"
		}
	}
	return false, ""
}

func (s *Apply) execute(ctx *pipeline.Context, it intent.Intent) error {
	t := s.deps.Tracker
	org, repo, number := ctx.Event.Org, ctx.Event.Repo, ctx.Issue.Number

	var err error
	switch it.Kind {
	case intent.SetState:
		err = t.SetState(ctx.Ctx, org, repo, number, it.State)
	case intent.AddLabel:
		err = t.AddLabels(ctx.Ctx, org, repo, number, []string{it.Label})
	case intent.RemoveLabel:
		err = t.RemoveLabel(ctx.Ctx, org, repo, number, it.Label)
	case intent.AddAssignee:
		err = t.AddAssignees(ctx.Ctx, org, repo, number, []string{it.User})
	case intent.RemoveAssignees:
		err = t.RemoveAssignees(ctx.Ctx, org, repo, number, it.Users)
	case intent.CreateComment:
		err = t.CreateComment(ctx.Ctx, org, repo, number, it.Body)
	case intent.UpdateComment:
		err = t.UpdateComment(ctx.Ctx, org, repo, it.CommentID, it.Body)
	case intent.UpdateBody:
		err = t.UpdateIssueBody(ctx.Ctx, org, repo, number, it.Body)
	default:
		return fmt.Errorf("unknown intent kind %q", it.Kind)
	}
	if err != nil {
		return fmt.Errorf("failed to apply %s: %w", it, err)
	}

	log.Printf("[apply] applied %s to issue #%d", it, number)
	return nil
}

// updateSnapshot mutates the local issue copy to reflect an applied
// intent.
func (s *Apply) updateSnapshot(issue *event.Issue, it intent.Intent) {
	switch it.Kind {
	case intent.SetState:
		issue.State = it.State
	case intent.AddLabel:
		issue.AddLabel(it.Label)
	case intent.RemoveLabel:
		issue.RemoveLabel(it.Label)
	case intent.AddAssignee:
		issue.Assignees = append(issue.Assignees, it.User)
	case intent.RemoveAssignees:
		issue.Assignees = nil
	case intent.UpdateBody:
		issue.Body = it.Body
	}
}
