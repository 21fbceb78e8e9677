package steps

import (
	"fmt"
	"log"
	"os"

	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
)

// Outputs finalizes the result and exposes it to downstream workflow
// steps via the GITHUB_OUTPUT file when the runner provides one.
type Outputs struct {
	deps *pipeline.Dependencies
}

// NewOutputs creates a new outputs step.
func NewOutputs(deps *pipeline.Dependencies) *Outputs {
	return &Outputs{deps: deps}
}

// Name returns the step name.
func (s *Outputs) Name() string {
	return "outputs"
}

// Run records the derived values and writes the output file.
func (s *Outputs) Run(ctx *pipeline.Context) error {
	ctx.Facts.NeedsSupportLog = ctx.Issue.HasLabel(ctx.Config.Labels.LogRequired)
	ctx.Result.NeedsSupportLog = ctx.Facts.NeedsSupportLog

	log.Printf("[outputs] issue #%d: status=%q needs_support_log=%t applied=%d",
		ctx.Issue.Number, ctx.Result.Status, ctx.Result.NeedsSupportLog, len(ctx.Result.Applied))

	path := os.Getenv("GITHUB_OUTPUT")
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open output file: %w", err)
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "issue=%d\nstatus=%s\nneeds_support_log=%t\nrun_id=%s\n",
		ctx.Result.IssueNumber, ctx.Result.Status, ctx.Result.NeedsSupportLog, ctx.Result.RunID)
	if err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}
	return nil
}
