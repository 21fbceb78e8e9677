package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/steps"
	"github.com/shepherdly/shepherd-bot/internal/tui"
)

// Wrapper step to send status updates
type statusReportingStep struct {
	inner      pipeline.Step
	statusChan chan<- tui.PipelineStatusMsg
	animate    bool
}

func (s *statusReportingStep) Name() string {
	return s.inner.Name()
}

func (s *statusReportingStep) Run(ctx *pipeline.Context) error {
	s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "started", Message: "Starting..."}
	if s.animate {
		time.Sleep(100 * time.Millisecond) // Artificial delay for visual effect
	}

	err := s.inner.Run(ctx)

	if err != nil {
		if errors.Is(err, pipeline.ErrSkipPipeline) {
			s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "skipped", Message: ctx.Result.SkipReason}
			return err
		}
		s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "error", Message: err.Error()}
		return err
	}

	s.statusChan <- tui.PipelineStatusMsg{Step: s.Name(), Status: "success", Message: "Completed"}
	return nil
}

// send forwards a message to the TUI program when one is attached.
// Headless CI runs pass a nil program.
func send(p *tea.Program, msg tea.Msg) {
	if p != nil {
		p.Send(msg)
	}
}

// runPipeline evaluates one trigger through the named steps. Returns the
// pipeline result so callers can aggregate across a sweep.
func runPipeline(ctx context.Context, p *tea.Program, deps *pipeline.Dependencies, stepNames []string, ev *event.Event, cfg *config.Config, statusChan chan tui.PipelineStatusMsg) (*pipeline.Result, error) {
	defer close(statusChan)

	pCtx := pipeline.NewContext(ctx, ev, cfg, deps)

	registry := pipeline.NewRegistry()
	steps.RegisterAll(registry)

	builtSteps, err := registry.BuildFromNames(stepNames, deps)
	if err != nil {
		statusChan <- tui.PipelineStatusMsg{Step: "init", Status: "error", Message: err.Error()}
		send(p, tui.ResultMsg{Success: false, Output: err.Error()})
		return nil, err
	}

	// Wrap steps with status reporting
	var wrappedSteps []pipeline.Step
	for _, step := range builtSteps.Steps() {
		wrappedSteps = append(wrappedSteps, &statusReportingStep{inner: step, statusChan: statusChan, animate: p != nil})
	}

	finalPipeline := pipeline.New(wrappedSteps...)

	if err := finalPipeline.Run(pCtx); err != nil {
		send(p, tui.ResultMsg{Success: false, Output: err.Error()})
		return pCtx.Result, fmt.Errorf("issue #%d: %w", pCtx.Result.IssueNumber, err)
	}

	resultBytes, _ := json.MarshalIndent(pCtx.Result, "", "  ")
	send(p, tui.ResultMsg{Success: true, Output: string(resultBytes)})
	return pCtx.Result, nil
}

// drainStatus consumes status updates when no TUI is rendering them,
// echoing them as plain log lines.
func drainStatus(statusChan <-chan tui.PipelineStatusMsg, verbose bool) {
	for msg := range statusChan {
		if msg.Status == "error" {
			fmt.Printf("[shepherd] step %s: %s\n", msg.Step, msg.Message)
			continue
		}
		if verbose {
			fmt.Printf("[shepherd] step %s: %s\n", msg.Step, msg.Status)
		}
	}
}
