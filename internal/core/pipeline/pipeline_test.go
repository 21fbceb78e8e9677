package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/event"
)

type recordingStep struct {
	name string
	err  error
	ran  *[]string
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Run(ctx *Context) error {
	*s.ran = append(*s.ran, s.name)
	return s.err
}

func testEvent() *event.Event {
	return &event.Event{
		Name:   event.NameIssues,
		Action: "opened",
		Org:    "acme",
		Repo:   "widgets",
		Sender: "alice",
		Issue:  &event.Issue{Number: 42, State: "open", Author: "alice"},
	}
}

func TestPipelineRunsInOrder(t *testing.T) {
	var ran []string
	p := New(
		&recordingStep{name: "a", ran: &ran},
		&recordingStep{name: "b", ran: &ran},
		&recordingStep{name: "c", ran: &ran},
	)

	ctx := NewContext(context.Background(), testEvent(), &config.Config{}, &Dependencies{})
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []string{"a", "b", "c"}
	if len(ran) != len(want) {
		t.Fatalf("ran %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Errorf("ran %v, want %v", ran, want)
			break
		}
	}
}

func TestPipelineStopsOnError(t *testing.T) {
	var ran []string
	boom := errors.New("boom")
	p := New(
		&recordingStep{name: "a", ran: &ran},
		&recordingStep{name: "b", err: boom, ran: &ran},
		&recordingStep{name: "c", ran: &ran},
	)

	ctx := NewContext(context.Background(), testEvent(), &config.Config{}, &Dependencies{})
	err := p.Run(ctx)
	if err == nil || !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom, got %v", err)
	}
	if len(ran) != 2 {
		t.Errorf("steps after the failure must not run: %v", ran)
	}
}

func TestPipelineSkipIsGraceful(t *testing.T) {
	var ran []string
	p := New(
		&recordingStep{name: "a", err: ErrSkipPipeline, ran: &ran},
		&recordingStep{name: "b", ran: &ran},
	)

	ctx := NewContext(context.Background(), testEvent(), &config.Config{}, &Dependencies{})
	if err := p.Run(ctx); err != nil {
		t.Fatalf("skip must not surface as an error, got %v", err)
	}
	if len(ran) != 1 {
		t.Errorf("steps after the skip must not run: %v", ran)
	}
}

func TestNewContext(t *testing.T) {
	ev := testEvent()
	ctx := NewContext(context.Background(), ev, &config.Config{}, &Dependencies{})

	if ctx.Result.RunID == "" {
		t.Errorf("run ID not assigned")
	}
	if ctx.Result.IssueNumber != 42 {
		t.Errorf("issue number = %d", ctx.Result.IssueNumber)
	}
	if ctx.Issue != ev.Issue {
		t.Errorf("context must evaluate the trigger's issue snapshot")
	}
}

func TestRegistryBuildFromNames(t *testing.T) {
	r := NewRegistry()
	var ran []string
	r.Register("one", func(deps *Dependencies) (Step, error) {
		return &recordingStep{name: "one", ran: &ran}, nil
	})

	p, err := r.BuildFromNames([]string{"one"}, &Dependencies{})
	if err != nil {
		t.Fatalf("BuildFromNames error: %v", err)
	}
	if len(p.Steps()) != 1 {
		t.Errorf("got %d steps", len(p.Steps()))
	}

	if _, err := r.BuildFromNames([]string{"missing"}, &Dependencies{}); err == nil {
		t.Errorf("unknown step name must be an error")
	}
}

func TestResolveSteps(t *testing.T) {
	if got := ResolveSteps([]string{"gatekeeper", "apply"}, "triage"); len(got) != 2 {
		t.Errorf("explicit steps must win, got %v", got)
	}

	got := ResolveSteps(nil, "labels-only")
	if len(got) == 0 || got[len(got)-1] != "outputs" {
		t.Errorf("labels-only preset = %v", got)
	}
	for _, name := range got {
		if name == "assignment" || name == "boardsync" {
			t.Errorf("labels-only must not include %q", name)
		}
	}

	def := ResolveSteps(nil, "")
	if len(def) != len(Presets["triage"]) {
		t.Errorf("default preset = %v", def)
	}

	if got := ResolveSteps(nil, "no-such-preset"); len(got) != len(Presets["triage"]) {
		t.Errorf("unknown preset must fall back to the default, got %v", got)
	}
}
