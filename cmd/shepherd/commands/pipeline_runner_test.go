package commands

import (
	"context"
	"testing"
	"time"

	"github.com/shepherdly/shepherd-bot/internal/actor"
	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/tui"
)

// noopTracker satisfies pipeline.Tracker with inert responses.
type noopTracker struct{}

func (noopTracker) ListComments(ctx context.Context, org, repo string, number int) ([]event.Comment, error) {
	return nil, nil
}
func (noopTracker) AddLabels(ctx context.Context, org, repo string, number int, labels []string) error {
	return nil
}
func (noopTracker) RemoveLabel(ctx context.Context, org, repo string, number int, name string) error {
	return nil
}
func (noopTracker) SetState(ctx context.Context, org, repo string, number int, state string) error {
	return nil
}
func (noopTracker) AddAssignees(ctx context.Context, org, repo string, number int, users []string) error {
	return nil
}
func (noopTracker) RemoveAssignees(ctx context.Context, org, repo string, number int, users []string) error {
	return nil
}
func (noopTracker) CreateComment(ctx context.Context, org, repo string, number int, body string) error {
	return nil
}
func (noopTracker) UpdateComment(ctx context.Context, org, repo string, commentID int64, body string) error {
	return nil
}
func (noopTracker) UpdateIssueBody(ctx context.Context, org, repo string, number int, body string) error {
	return nil
}
func (noopTracker) PermissionLevel(ctx context.Context, org, repo, username string) (string, error) {
	return "none", nil
}

func runnerDeps() *pipeline.Dependencies {
	tr := noopTracker{}
	return &pipeline.Dependencies{
		Tracker: tr,
		Actors:  actor.New(tr, "acme", "widgets", "write", nil, false),
	}
}

func runnerEvent() *event.Event {
	return &event.Event{
		Name:   event.NameIssues,
		Action: "opened",
		Org:    "acme",
		Repo:   "widgets",
		Sender: "alice",
		Issue:  &event.Issue{Number: 1, State: "open", Author: "alice"},
	}
}

func TestHeadlessRunSkipsAnimationDelay(t *testing.T) {
	t.Setenv("GITHUB_OUTPUT", "")

	statusChan := make(chan tui.PipelineStatusMsg)
	go drainStatus(statusChan, false)

	start := time.Now()
	result, err := runPipeline(context.Background(), nil, runnerDeps(),
		pipeline.Presets["triage"], runnerEvent(), &config.Config{}, statusChan)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("runPipeline error: %v", err)
	}
	if result == nil || result.IssueNumber != 1 {
		t.Fatalf("result = %+v", result)
	}
	// Nine steps with the interactive per-step delay would take ~900ms.
	if elapsed > 500*time.Millisecond {
		t.Errorf("headless run took %v; the per-step delay must only apply when a TUI is attached", elapsed)
	}
}

func TestRunPipelineReturnsBuildError(t *testing.T) {
	statusChan := make(chan tui.PipelineStatusMsg, 4)
	go drainStatus(statusChan, false)

	_, err := runPipeline(context.Background(), nil, runnerDeps(),
		[]string{"no-such-step"}, runnerEvent(), &config.Config{}, statusChan)
	if err == nil {
		t.Errorf("unknown step name must surface as an error")
	}
}
