// Package pipeline provides the rule engine the bot runs on every trigger.
// It defines the Step interface and the Context that carries the fact
// snapshot and accumulated intents through the ordered rule steps. The rule
// table is static; there is no runtime rule registration beyond the named
// step registry.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/shepherdly/shepherd-bot/internal/actor"
	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/intent"
)

// ErrSkipPipeline indicates that the pipeline should stop gracefully.
// This is not an error condition, just an early exit (e.g., bot sender).
var ErrSkipPipeline = errors.New("skip remaining pipeline steps")

// Step defines the interface that all pipeline steps must implement.
type Step interface {
	// Name returns the unique identifier for this step.
	Name() string

	// Run executes the step's logic. It should return ErrSkipPipeline to
	// stop the pipeline gracefully, or any other error to indicate
	// failure.
	Run(ctx *Context) error
}

// Tracker is the issue-tracker surface the rules consume. The GitHub
// client implements it; tests use fakes.
type Tracker interface {
	ListComments(ctx context.Context, org, repo string, number int) ([]event.Comment, error)
	AddLabels(ctx context.Context, org, repo string, number int, labels []string) error
	RemoveLabel(ctx context.Context, org, repo string, number int, name string) error
	SetState(ctx context.Context, org, repo string, number int, state string) error
	AddAssignees(ctx context.Context, org, repo string, number int, users []string) error
	RemoveAssignees(ctx context.Context, org, repo string, number int, users []string) error
	CreateComment(ctx context.Context, org, repo string, number int, body string) error
	UpdateComment(ctx context.Context, org, repo string, commentID int64, body string) error
	UpdateIssueBody(ctx context.Context, org, repo string, number int, body string) error
	PermissionLevel(ctx context.Context, org, repo, username string) (string, error)
}

// BoardSync is the project-board surface consumed by the boardsync step.
type BoardSync interface {
	Sync(ctx context.Context, org, repo string, issue *event.Issue, statusKey string) error
}

// Dependencies holds what steps need injected: external clients, the
// per-run actor classifier, and run flags.
type Dependencies struct {
	Tracker Tracker
	Board   BoardSync
	Actors  *actor.Classifier
	DryRun  bool
	Verbose bool
}

// Facts is the shared fact object the rules evaluate and extend. It is
// derived fresh for every trigger.
type Facts struct {
	SenderBot        bool
	SenderPrivileged bool

	// HasPrivileged / HasNonPrivileged record whether any participant of
	// each class has touched the issue.
	HasPrivileged    bool
	HasNonPrivileged bool

	// Managed is true iff a non-privileged participant exists, the issue
	// lacks the exempt label, and it carries the active label when one is
	// configured.
	Managed bool

	// LogFound records whether the support-log pattern matched.
	LogFound bool

	// NeedsSupportLog mirrors the log-required label after evaluation.
	NeedsSupportLog bool

	// Status is the derived board status key (new, backlog, assigned,
	// awaiting, merged).
	Status string
}

// Result holds the accumulated results from pipeline execution.
type Result struct {
	RunID           string   `json:"run_id"`
	IssueNumber     int      `json:"issue"`
	Skipped         bool     `json:"skipped,omitempty"`
	SkipReason      string   `json:"skip_reason,omitempty"`
	Managed         bool     `json:"managed"`
	Status          string   `json:"status,omitempty"`
	NeedsSupportLog bool     `json:"needs_support_log"`
	Applied         []string `json:"applied,omitempty"`
}

// Context carries data through the pipeline steps.
type Context struct {
	// Ctx is the Go context for cancellation and timeouts.
	Ctx context.Context

	// Event is the trigger being processed.
	Event *event.Event

	// Issue is the issue snapshot, updated optimistically by the applier.
	Issue *event.Issue

	// Comments is the issue's comment history. Nil until a step fetches
	// it; empty-but-non-nil means fetched and empty.
	Comments []event.Comment

	// Config is the loaded configuration.
	Config *config.Config

	// Deps holds injected clients and run flags.
	Deps *Dependencies

	// Facts is the shared fact object rules evaluate against.
	Facts Facts

	// Result accumulates the processing results.
	Result *Result

	intents []intent.Intent
}

// NewContext creates a new pipeline context for a trigger.
func NewContext(ctx context.Context, ev *event.Event, cfg *config.Config, deps *Dependencies) *Context {
	pc := &Context{
		Ctx:    ctx,
		Event:  ev,
		Issue:  ev.Issue,
		Config: cfg,
		Deps:   deps,
		Result: &Result{RunID: uuid.New().String()},
	}
	if ev.Issue != nil {
		pc.Result.IssueNumber = ev.Issue.Number
	}
	return pc
}

// Add appends an intent for the applier.
func (c *Context) Add(i intent.Intent) {
	c.intents = append(c.intents, i)
}

// Intents returns the accumulated intents.
func (c *Context) Intents() []intent.Intent {
	return c.intents
}

// Pipeline executes a sequence of steps.
type Pipeline struct {
	steps []Step
}

// New creates a new pipeline with the given steps.
func New(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Run executes all steps in order. Stops on the first error (unless it's
// ErrSkipPipeline, which is graceful).
func (p *Pipeline) Run(ctx *Context) error {
	for _, step := range p.steps {
		if err := step.Run(ctx); err != nil {
			if errors.Is(err, ErrSkipPipeline) {
				return nil
			}
			return fmt.Errorf("step '%s' failed: %w", step.Name(), err)
		}
	}
	return nil
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// Steps returns the list of steps (for introspection).
func (p *Pipeline) Steps() []Step {
	return p.steps
}
