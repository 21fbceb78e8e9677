package steps

import (
	"log"

	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
)

// Classify resolves the sender's privilege, scans the participant list,
// and derives the Managed fact that gates every transition rule.
type Classify struct {
	deps *pipeline.Dependencies
}

// NewClassify creates a new classify step.
func NewClassify(deps *pipeline.Dependencies) *Classify {
	return &Classify{deps: deps}
}

// Name returns the step name.
func (s *Classify) Name() string {
	return "classify"
}

// Run classifies the sender and the issue's participants. The participant
// scan walks the author and comment authors in order and stops as soon as
// both a privileged and a non-privileged participant have been seen, so
// permission lookups cover only the smallest prefix that establishes both
// facts.
func (s *Classify) Run(ctx *pipeline.Context) error {
	actors := s.deps.Actors
	facts := &ctx.Facts

	if ctx.Event.Sender != "" {
		facts.SenderBot = actors.IsBot(ctx.Event.Sender)
		priv, err := actors.IsPrivileged(ctx.Ctx, ctx.Event.Sender)
		if err != nil {
			return err
		}
		facts.SenderPrivileged = priv
	}

	if ctx.Comments == nil && s.deps.Tracker != nil {
		comments, err := s.deps.Tracker.ListComments(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Issue.Number)
		if err != nil {
			return err
		}
		ctx.Comments = comments
	}

	participants := []string{ctx.Issue.Author}
	for _, c := range ctx.Comments {
		participants = append(participants, c.Author)
	}
	if ctx.Event.Sender != "" {
		participants = append(participants, ctx.Event.Sender)
	}

	for _, login := range participants {
		if facts.HasPrivileged && facts.HasNonPrivileged {
			break
		}
		if login == "" || actors.IsBot(login) {
			continue
		}
		priv, err := actors.IsPrivileged(ctx.Ctx, login)
		if err != nil {
			return err
		}
		if priv {
			facts.HasPrivileged = true
		} else {
			facts.HasNonPrivileged = true
		}
	}

	labels := ctx.Config.Labels
	facts.Managed = facts.HasNonPrivileged &&
		!ctx.Issue.HasLabel(labels.Exempt) &&
		(labels.Active == "" || ctx.Issue.HasLabel(labels.Active))

	if s.deps.Verbose {
		log.Printf("[classify] sender privileged=%t, participants privileged=%t external=%t, managed=%t",
			facts.SenderPrivileged, facts.HasPrivileged, facts.HasNonPrivileged, facts.Managed)
	}

	ctx.Result.Managed = facts.Managed
	return nil
}
