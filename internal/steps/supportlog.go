package steps

import (
	"log"
	"strings"

	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/intent"
	"github.com/shepherdly/shepherd-bot/internal/utils/text"
)

// SupportLog detects the support-log identifier reporters are expected to
// supply and maintains the log-required label. Webhook triggers search the
// trigger body; sweep triggers search the issue body plus the whole
// comment thread.
type SupportLog struct {
	deps *pipeline.Dependencies
}

// NewSupportLog creates a new support-log step.
func NewSupportLog(deps *pipeline.Dependencies) *SupportLog {
	return &SupportLog{deps: deps}
}

// Name returns the step name.
func (s *SupportLog) Name() string {
	return "supportlog"
}

// Run applies the support-log rules. An absent pattern disables the step
// entirely; unmanaged issues and privileged senders are never checked.
func (s *SupportLog) Run(ctx *pipeline.Context) error {
	re := ctx.Config.LogRegex()
	if re == nil || !ctx.Facts.Managed {
		return nil
	}

	// Privileged activity never counts as supplying the log: a maintainer
	// quoting an identifier must not clear the label. Sweep triggers carry
	// no sender and still scan the full thread.
	if ctx.Facts.SenderPrivileged {
		return nil
	}

	labels := ctx.Config.Labels
	cfg := ctx.Config.Log

	var corpus string
	if ctx.Event.Name == event.NameSweep {
		corpus = text.ThreadCorpus(ctx.Issue.Body, ctx.Comments)
	} else {
		corpus = ctx.Event.TriggerBody()
	}

	if re.MatchString(corpus) {
		ctx.Facts.LogFound = true
		if ctx.Issue.HasLabel(labels.LogRequired) {
			ctx.Add(intent.Intent{Kind: intent.RemoveLabel, Label: labels.LogRequired})
		}
		if s.deps.Verbose {
			log.Printf("[supportlog] issue #%d: log identifier found", ctx.Issue.Number)
		}
		return nil
	}

	// A freshly opened issue without a log identifier gets the label and
	// the explanatory comment, once.
	if ctx.Event.Action == "opened" && !ctx.Issue.HasLabel(labels.LogRequired) {
		ctx.Add(intent.Intent{Kind: intent.AddLabel, Label: labels.LogRequired})
		if cfg.Message != "" {
			ctx.Add(intent.Intent{Kind: intent.CreateComment, Body: text.Render(cfg.Message, ctx.Event.Sender)})
		}
		return nil
	}

	// Later activity that still lacks the identifier gets the prompt line
	// appended to whatever body the reporter just wrote, at most once.
	if cfg.Prompt == "" || !ctx.Issue.HasLabel(labels.LogRequired) {
		return nil
	}

	switch {
	case ctx.Event.Name == event.NameIssues && ctx.Event.Action == "edited":
		if !strings.Contains(ctx.Issue.Body, cfg.Prompt) {
			ctx.Add(intent.Intent{Kind: intent.UpdateBody, Body: ctx.Issue.Body + "\n\n" + cfg.Prompt})
		}
	case ctx.Event.Name == event.NameIssueComment && ctx.Event.Comment != nil:
		if !strings.Contains(ctx.Event.Comment.Body, cfg.Prompt) {
			ctx.Add(intent.Intent{
				Kind:      intent.UpdateComment,
				CommentID: ctx.Event.Comment.ID,
				Body:      ctx.Event.Comment.Body + "\n\n" + cfg.Prompt,
			})
		}
	}

	return nil
}
