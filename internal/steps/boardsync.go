package steps

import (
	"log"

	"github.com/shepherdly/shepherd-bot/internal/board"
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
)

// BoardSync derives the issue's board status from the post-transition
// snapshot and pushes it to the configured project board. The status key
// is derived even when no board is configured, so it is always available
// as an output.
type BoardSync struct {
	deps *pipeline.Dependencies
}

// NewBoardSync creates a new board sync step.
func NewBoardSync(deps *pipeline.Dependencies) *BoardSync {
	return &BoardSync{deps: deps}
}

// Name returns the step name.
func (s *BoardSync) Name() string {
	return "boardsync"
}

// Run derives and syncs the board status. Board errors (including a
// configured field or status name missing from the board) propagate and
// fail the run.
func (s *BoardSync) Run(ctx *pipeline.Context) error {
	status := board.StatusFor(ctx.Issue, ctx.Config.Labels, ctx.Facts.HasPrivileged)
	ctx.Facts.Status = status
	ctx.Result.Status = status

	if s.deps.Board == nil || !ctx.Config.Project.Enabled() || status == "" {
		return nil
	}

	if s.deps.DryRun {
		log.Printf("[boardsync] DRY RUN: would set issue #%d to %q", ctx.Issue.Number, status)
		return nil
	}

	return s.deps.Board.Sync(ctx.Ctx, ctx.Event.Org, ctx.Event.Repo, ctx.Issue, status)
}
