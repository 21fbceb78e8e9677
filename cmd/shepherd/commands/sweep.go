package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/tui"
)

var (
	sweepOrg      string
	sweepRepo     string
	sweepState    string
	sweepWorkflow string
	sweepOutFile  string
	sweepTimeout  time.Duration
)

// SweepOutput is the JSON summary printed after a repository sweep.
type SweepOutput struct {
	ProcessedAt time.Time          `json:"processed_at"`
	Repository  string             `json:"repository"`
	TotalIssues int                `json:"total_issues"`
	Successful  int                `json:"successful"`
	Failed      int                `json:"failed"`
	Results     []SweepResultEntry `json:"results"`
}

// SweepResultEntry is one issue's outcome within the sweep summary.
type SweepResultEntry struct {
	Issue  int              `json:"issue"`
	Result *pipeline.Result `json:"result,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// sweepCmd walks the repository's issues and runs the convergence rules
// against each, with no sender activity attributed to any of them.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-evaluate all issues in a repository",
	Long: `Sweep fetches the repository's issues and runs each one through the
triage pipeline as a synthetic trigger with no sender. Rules that react to
actor activity (reopen, feedback withdrawal) stay inert; label hygiene and
board synchronization converge any state that drifted while the bot was not
listening. Pull requests are excluded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSweep()
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVar(&sweepOrg, "org", "", "Repository owner (default from $GITHUB_REPOSITORY)")
	sweepCmd.Flags().StringVar(&sweepRepo, "repo", "", "Repository name (default from $GITHUB_REPOSITORY)")
	sweepCmd.Flags().StringVar(&sweepState, "state", "", "Issue state filter: open, closed or all (default from config)")
	sweepCmd.Flags().StringVar(&sweepWorkflow, "workflow", "", "Workflow preset to run")
	sweepCmd.Flags().StringVar(&sweepOutFile, "out-file", "", "Write the JSON summary to a file instead of stdout")
	sweepCmd.Flags().DurationVar(&sweepTimeout, "timeout", 30*time.Minute, "Overall sweep timeout")
}

func runSweep() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	org, repo, err := resolveRepository()
	if err != nil {
		return err
	}

	state := sweepState
	if state == "" {
		state = cfg.Issue.State
	}

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	// One dependency set for the whole sweep so permission lookups are
	// shared across issues.
	deps, gh, err := buildDeps(ctx, cfg, org, repo)
	if err != nil {
		return err
	}

	issues, err := gh.ListIssuesByState(ctx, org, repo, state)
	if err != nil {
		return fmt.Errorf("failed to list issues: %w", err)
	}

	wf := sweepWorkflow
	if wf == "" {
		wf = cfg.Workflow
	}
	stepNames := pipeline.ResolveSteps(cfg.Steps, wf)

	fmt.Printf("[shepherd] sweeping %d issues in %s/%s\n", len(issues), org, repo)

	output := SweepOutput{
		ProcessedAt: time.Now(),
		Repository:  org + "/" + repo,
		TotalIssues: len(issues),
	}

	for _, is := range issues {
		ev := event.Sweep(org, repo, is)

		statusChan := make(chan tui.PipelineStatusMsg)
		go drainStatus(statusChan, cfg.Verbose)

		result, runErr := runPipeline(ctx, nil, deps, stepNames, ev, cfg, statusChan)

		entry := SweepResultEntry{Issue: ev.Issue.Number, Result: result}
		if runErr != nil {
			entry.Error = runErr.Error()
			output.Failed++
			fmt.Printf("[shepherd] issue #%d failed: %v\n", ev.Issue.Number, runErr)
		} else {
			output.Successful++
		}
		output.Results = append(output.Results, entry)

		if ctx.Err() != nil {
			return fmt.Errorf("sweep aborted: %w", ctx.Err())
		}
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to format summary: %w", err)
	}
	if sweepOutFile != "" {
		if err := os.WriteFile(sweepOutFile, data, 0o644); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	} else {
		fmt.Println(string(data))
	}

	if output.Failed > 0 {
		return fmt.Errorf("sweep completed with %d of %d issues failing", output.Failed, output.TotalIssues)
	}
	fmt.Printf("[shepherd] sweep completed: %d issues converged\n", output.Successful)
	return nil
}

// resolveRepository prefers explicit flags, falling back to the
// GITHUB_REPOSITORY "owner/name" form set by Actions runners.
func resolveRepository() (string, string, error) {
	if sweepOrg != "" && sweepRepo != "" {
		return sweepOrg, sweepRepo, nil
	}
	if env := os.Getenv("GITHUB_REPOSITORY"); env != "" {
		parts := strings.SplitN(env, "/", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
		return "", "", fmt.Errorf("malformed GITHUB_REPOSITORY %q", env)
	}
	return "", "", fmt.Errorf("no repository: pass --org and --repo or set GITHUB_REPOSITORY")
}
