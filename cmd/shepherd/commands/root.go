package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shepherdly/shepherd-bot/internal/actor"
	"github.com/shepherdly/shepherd-bot/internal/board"
	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/core/pipeline"
	"github.com/shepherdly/shepherd-bot/internal/integrations/github"
)

var (
	cfgFile string
	verbose bool
	dryRun  bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "shepherd",
	Short: "Issue-triage bot for GitHub repositories",
	Long: `Shepherd watches issue and comment events, classifies the actor
(maintainer, reporter or bot), and applies idempotent triage transitions:
labeling, assigning, reopening, commenting and project-board updates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI. Any unhandled failure is logged and terminates
// the process with a failing exit code.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Log mutations instead of applying them")
}

// loadConfig resolves the configuration: a config file when one exists,
// INPUT_* environment inputs otherwise. Configuration errors are fatal
// before any mutation.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)

	if path := config.FindConfigPath(cfgFile); path != "" {
		cfg, err = config.Load(path)
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file %q not found", cfgFile)
	} else {
		cfg, err = config.FromEnvironment()
	}
	if err != nil {
		return nil, err
	}

	if cfg.Token == "" {
		cfg.Token = os.Getenv("GITHUB_TOKEN")
	}
	if cfg.Project.Token == "" {
		cfg.Project.Token = cfg.Token
	}
	if verbose {
		cfg.Verbose = true
	}

	return cfg, nil
}

// buildDeps wires the external clients and the per-run actor classifier
// for one repository. The concrete GitHub client is returned alongside
// the dependency set for callers that need listing operations.
func buildDeps(ctx context.Context, cfg *config.Config, org, repo string) (*pipeline.Dependencies, *github.Client, error) {
	var (
		gh  *github.Client
		err error
	)

	switch {
	case cfg.App.Configured():
		gh, err = github.NewAppClient(cfg.App.ID, cfg.App.InstallationID, cfg.App.PrivateKey)
		if err != nil {
			return nil, nil, err
		}
	case cfg.Token != "":
		gh = github.NewClient(ctx, cfg.Token)
	default:
		return nil, nil, fmt.Errorf("a token or app credentials are required")
	}

	deps := &pipeline.Dependencies{
		Tracker: gh,
		Actors:  actor.New(gh, org, repo, cfg.Permission.Threshold, cfg.User.Bots, cfg.Verbose),
		DryRun:  dryRun,
		Verbose: cfg.Verbose,
	}

	if cfg.Project.Enabled() {
		gql := github.NewGraphQLClient(nil, cfg.Project.Token)
		deps.Board = board.New(gql, cfg.Project, cfg.Verbose)
	}

	return deps, gh, nil
}

// isCI reports whether we are running headless inside a CI job.
func isCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}
