package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/tui"
)

var (
	eventFile string
	eventName string
	workflow  string
	timeout   time.Duration
)

// runCmd processes a single webhook trigger, the way a CI job invokes
// the bot from an Actions workflow.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process one issue or comment event through the pipeline",
	Long: `Run evaluates a single webhook payload through the triage pipeline.
The event file and name default to GITHUB_EVENT_PATH and GITHUB_EVENT_NAME,
so inside a workflow job no flags are needed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRun()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&eventFile, "event", "", "Path to event payload JSON (default $GITHUB_EVENT_PATH)")
	runCmd.Flags().StringVar(&eventName, "event-name", "", "Webhook event name (default $GITHUB_EVENT_NAME)")
	runCmd.Flags().StringVar(&workflow, "workflow", "", "Workflow preset to run")
	runCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "Overall run timeout")
}

func runRun() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := eventFile
	if path == "" {
		path = os.Getenv("GITHUB_EVENT_PATH")
	}
	if path == "" {
		return fmt.Errorf("no event payload: pass --event or set GITHUB_EVENT_PATH")
	}

	name := eventName
	if name == "" {
		name = os.Getenv("GITHUB_EVENT_NAME")
	}
	if name == "" {
		return fmt.Errorf("no event name: pass --event-name or set GITHUB_EVENT_NAME")
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read event payload: %w", err)
	}

	ev, err := event.Parse(name, payload)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	deps, _, err := buildDeps(ctx, cfg, ev.Org, ev.Repo)
	if err != nil {
		return err
	}

	stepNames := pipeline.ResolveSteps(cfg.Steps, resolveWorkflow(cfg))
	statusChan := make(chan tui.PipelineStatusMsg)

	if isCI() {
		fmt.Println("[shepherd] running in CI mode (no TUI)")
		go drainStatus(statusChan, cfg.Verbose)
		if _, err := runPipeline(ctx, nil, deps, stepNames, ev, cfg, statusChan); err != nil {
			return err
		}
		fmt.Println("[shepherd] pipeline completed")
		return nil
	}

	model := tui.NewModel(stepNames, statusChan)
	p := tea.NewProgram(model)

	errCh := make(chan error, 1)
	go func() {
		_, runErr := runPipeline(ctx, p, deps, stepNames, ev, cfg, statusChan)
		errCh <- runErr
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return <-errCh
}

func resolveWorkflow(cfg *config.Config) string {
	if workflow != "" {
		return workflow
	}
	return cfg.Workflow
}
