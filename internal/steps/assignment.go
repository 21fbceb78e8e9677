package steps

import (
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/intent"
)

// Assignment keeps active issues assigned: an open, unassigned issue with
// maintainer activity is assigned to the privileged sender (or to the
// configured default), and a closed issue is unassigned.
type Assignment struct {
	deps *pipeline.Dependencies
}

// NewAssignment creates a new assignment step.
func NewAssignment(deps *pipeline.Dependencies) *Assignment {
	return &Assignment{deps: deps}
}

// Name returns the step name.
func (s *Assignment) Name() string {
	return "assignment"
}

// Run applies the assignment rules. The step is inert unless a default
// assignee is configured.
func (s *Assignment) Run(ctx *pipeline.Context) error {
	assign := ctx.Config.User.Assign
	if assign == "" {
		return nil
	}

	facts := ctx.Facts

	if ctx.Issue.Open() {
		if ctx.Issue.Assigned() || !facts.HasPrivileged {
			return nil
		}

		assignee := assign
		if facts.SenderPrivileged {
			assignee = ctx.Event.Sender
		}

		// The configured assignee may be the bot's own identity; the
		// allow-bot override lets it self-assign, provided it actually is
		// a collaborator.
		if s.deps.Actors.IsBot(assignee) {
			priv, err := s.deps.Actors.IsPrivilegedAllowBot(ctx.Ctx, assignee)
			if err != nil {
				return err
			}
			if !priv {
				return nil
			}
		}

		ctx.Add(intent.Intent{Kind: intent.AddAssignee, User: assignee})
		return nil
	}

	if ctx.Issue.Assigned() {
		users := make([]string, len(ctx.Issue.Assignees))
		copy(users, ctx.Issue.Assignees)
		ctx.Add(intent.Intent{Kind: intent.RemoveAssignees, Users: users})
	}

	return nil
}
