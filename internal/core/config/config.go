// Package config handles loading and validating shepherd-bot configuration.
//
// Settings come from two layers: an optional YAML file (with environment
// variable expansion) and GitHub-Action-style INPUT_* environment variables,
// which win over the file. Invalid enum or boolean values are a fatal
// configuration error; the bot must not start mutating issues with a
// half-understood configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	// Token is the API token used for issue mutations.
	Token string `yaml:"token"`

	// App configures GitHub App installation credentials as an
	// alternative to Token.
	App AppConfig `yaml:"app"`

	// Labels names the labels the bot manages. An empty name disables
	// the corresponding behavior; it is never a mutation target.
	Labels LabelsConfig `yaml:"labels"`

	// Log configures support-log detection.
	Log LogConfig `yaml:"log"`

	// Close configures what happens when a non-privileged user closes a
	// managed issue.
	Close CloseConfig `yaml:"close"`

	// User configures assignment and the bot identity list.
	User UserConfig `yaml:"user"`

	// Permission holds the privilege threshold settings.
	Permission PermissionConfig `yaml:"permission"`

	// Issue holds sweep filtering.
	Issue IssueConfig `yaml:"issue"`

	// Project configures the optional project board sync.
	Project ProjectConfig `yaml:"project"`

	// Steps is a custom list of pipeline steps (overrides workflow).
	Steps []string `yaml:"steps,omitempty"`

	// Workflow is a preset workflow name (e.g., "triage").
	Workflow string `yaml:"workflow,omitempty"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`

	logRegex *regexp.Regexp
}

// AppConfig holds GitHub App installation credentials.
type AppConfig struct {
	ID             int64  `yaml:"id"`
	InstallationID int64  `yaml:"installation_id"`
	PrivateKey     string `yaml:"private_key"`
}

// Configured reports whether App credentials are usable.
func (a AppConfig) Configured() bool {
	return a.ID != 0 && a.InstallationID != 0 && a.PrivateKey != ""
}

// LabelsConfig names the managed labels.
type LabelsConfig struct {
	// Awaiting marks issues blocked on reporter feedback.
	Awaiting string `yaml:"awaiting"`

	// Active, when set, restricts the bot to issues carrying it.
	Active string `yaml:"active"`

	// Exempt excludes an issue from all managed transitions.
	Exempt string `yaml:"exempt"`

	// Reopened marks issues the bot reopened after a non-privileged
	// close. Issues carrying it may be closed by anyone.
	Reopened string `yaml:"reopened"`

	// LogRequired marks issues missing a support log.
	LogRequired string `yaml:"log_required"`
}

// LogConfig configures support-log detection.
type LogConfig struct {
	// Regex detects a support-log identifier. Empty disables all
	// support-log checks.
	Regex string `yaml:"regex"`

	// Message is posted when a log identifier is missing. Supports the
	// {{username}} placeholder.
	Message string `yaml:"message"`

	// Prompt is appended to edited bodies that still lack a log
	// identifier, at most once.
	Prompt string `yaml:"prompt"`
}

// CloseConfig configures the non-privileged close policy.
type CloseConfig struct {
	// Policy is "reopen" (reopen immediately with Message) or "flag"
	// (apply the reopened label only).
	Policy string `yaml:"policy"`

	// Message explains the reopen to the closer. Supports {{username}}.
	Message string `yaml:"message"`
}

// UserConfig configures assignment and bot identities.
type UserConfig struct {
	// Assign is the default assignee for active issues.
	Assign string `yaml:"assign"`

	// Bots lists logins that are actually bots.
	Bots []string `yaml:"bots"`
}

// PermissionConfig holds the privilege threshold.
type PermissionConfig struct {
	// Threshold is the minimum permission level that counts as
	// privileged: read, triage, write, maintain or admin.
	Threshold string `yaml:"threshold"`
}

// IssueConfig holds sweep filtering.
type IssueConfig struct {
	// State filters issues during sweeps: all, open or closed.
	State string `yaml:"state"`
}

// ProjectConfig configures the optional project board sync.
type ProjectConfig struct {
	// URL of the project board, e.g. https://github.com/orgs/acme/projects/3.
	// Empty disables board sync.
	URL string `yaml:"url"`

	// Token for board mutations. Falls back to the general token, but
	// the default Actions token lacks project permissions.
	Token string `yaml:"token"`

	// Status maps canonical status keys to board option names.
	Status StatusNames `yaml:"status"`

	// Fields names the board fields to update.
	Fields FieldNames `yaml:"fields"`
}

// StatusNames maps canonical status keys to single-select option names.
type StatusNames struct {
	New      string `yaml:"new"`
	Backlog  string `yaml:"backlog"`
	Assigned string `yaml:"assigned"`
	Awaiting string `yaml:"awaiting"`
	Merged   string `yaml:"merged"`
}

// FieldNames names the board fields the bot updates.
type FieldNames struct {
	Status    string `yaml:"status"`
	StartDate string `yaml:"start_date"`
	EndDate   string `yaml:"end_date"`
}

// Enabled reports whether board sync is configured.
func (p ProjectConfig) Enabled() bool {
	return p.URL != ""
}

// Accepted close policies.
const (
	ClosePolicyReopen = "reopen"
	ClosePolicyFlag   = "flag"
)

// Load reads a config file from the given path, expands environment
// variables, layers INPUT_* overrides on top, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.applyInputs(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FromEnvironment builds a config from INPUT_* variables alone, for runs
// without a config file (the usual CI action setup).
func FromEnvironment() (*Config, error) {
	var cfg Config
	if err := cfg.applyInputs(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfigPath searches for a config file in standard locations.
func FindConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	candidates := []string{
		".github/shepherd.yaml",
		".github/shepherd.yml",
		".shepherd.yaml",
		".shepherd.yml",
	}

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			abs, _ := filepath.Abs(c)
			return abs
		}
	}

	return ""
}

// input reads a GitHub-Action-style named input from the environment.
// "label.awaiting" becomes INPUT_LABEL.AWAITING, matching how the Actions
// runner exposes inputs.
func input(name string) string {
	key := "INPUT_" + strings.ToUpper(strings.ReplaceAll(name, " ", "_"))
	return strings.TrimSpace(os.Getenv(key))
}

// applyInputs layers INPUT_* environment overrides onto the config.
func (c *Config) applyInputs() error {
	setString := func(dst *string, name string) {
		if v := input(name); v != "" {
			*dst = v
		}
	}

	setString(&c.Token, "token")
	setString(&c.Labels.Awaiting, "label.awaiting")
	setString(&c.Labels.Active, "label.active")
	setString(&c.Labels.Exempt, "label.exempt")
	setString(&c.Labels.Reopened, "label.reopened")
	setString(&c.Labels.LogRequired, "log.label")
	setString(&c.Log.Regex, "log.regex")
	setString(&c.Log.Message, "log.message")
	setString(&c.Log.Prompt, "log.prompt")
	setString(&c.Close.Policy, "close.policy")
	setString(&c.Close.Message, "close.message")
	setString(&c.User.Assign, "user.assign")
	setString(&c.Permission.Threshold, "permission.threshold")
	setString(&c.Issue.State, "issue.state")
	setString(&c.Project.URL, "project.url")
	setString(&c.Project.Token, "project.token")
	setString(&c.Project.Status.New, "project.card.status.new")
	setString(&c.Project.Status.Backlog, "project.card.status.backlog")
	setString(&c.Project.Status.Assigned, "project.card.status.assigned")
	setString(&c.Project.Status.Awaiting, "project.card.status.awaiting")
	setString(&c.Project.Status.Merged, "project.card.status.merged")
	setString(&c.Project.Fields.Status, "project.card.field.status")
	setString(&c.Project.Fields.StartDate, "project.card.field.start-date")
	setString(&c.Project.Fields.EndDate, "project.card.field.end-date")

	if v := input("user.bots"); v != "" {
		var bots []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				bots = append(bots, b)
			}
		}
		c.User.Bots = bots
	}

	if v := input("verbose"); v != "" {
		b, err := parseBool("verbose", v)
		if err != nil {
			return err
		}
		c.Verbose = b
	}

	return nil
}

// parseBool accepts only "true" or "false" (case-insensitive). Anything
// else is a configuration error, never a silent default.
func parseBool(name, value string) (bool, error) {
	switch strings.ToLower(value) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("input %q must be \"true\" or \"false\", got %q", name, value)
}

// applyDefaults sets default values for unset fields.
func (c *Config) applyDefaults() {
	if c.Labels.Awaiting == "" {
		c.Labels.Awaiting = "awaiting-user-feedback"
	}
	if c.Close.Policy == "" {
		c.Close.Policy = ClosePolicyReopen
	}
	if c.Permission.Threshold == "" {
		c.Permission.Threshold = "write"
	}
	if c.Issue.State == "" {
		c.Issue.State = "all"
	}
	if c.Project.Token == "" {
		c.Project.Token = c.Token
	}
	if c.Project.Status.New == "" {
		c.Project.Status.New = "New"
	}
	if c.Project.Status.Backlog == "" {
		c.Project.Status.Backlog = "Backlog"
	}
	if c.Project.Status.Assigned == "" {
		c.Project.Status.Assigned = "In progress"
	}
	if c.Project.Status.Awaiting == "" {
		c.Project.Status.Awaiting = "Awaiting user input"
	}
	if c.Project.Status.Merged == "" {
		c.Project.Status.Merged = "Merge pending"
	}
	if c.Project.Fields.Status == "" {
		c.Project.Fields.Status = "Status"
	}
	if c.Project.Fields.StartDate == "" {
		c.Project.Fields.StartDate = "Start date"
	}
	if c.Project.Fields.EndDate == "" {
		c.Project.Fields.EndDate = "End date"
	}
}

// Validate checks enum fields and compiles the log regex. Load and
// FromEnvironment call it before any component consumes the config.
func (c *Config) Validate() error {
	if err := checkEnum("close.policy", c.Close.Policy, ClosePolicyReopen, ClosePolicyFlag); err != nil {
		return err
	}
	if err := checkEnum("permission.threshold", c.Permission.Threshold,
		"read", "triage", "write", "maintain", "admin"); err != nil {
		return err
	}
	if err := checkEnum("issue.state", c.Issue.State, "all", "open", "closed"); err != nil {
		return err
	}

	if c.Log.Regex != "" {
		re, err := regexp.Compile(c.Log.Regex)
		if err != nil {
			return fmt.Errorf("log.regex is not a valid regular expression: %w", err)
		}
		c.logRegex = re
	} else {
		c.logRegex = nil
	}

	return nil
}

func checkEnum(name, value string, options ...string) error {
	for _, o := range options {
		if strings.EqualFold(value, o) {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %v, got %q", name, options, value)
}

// LogRegex returns the compiled support-log pattern, or nil when
// support-log checks are disabled. Present/absent is explicit; there is no
// empty-regex sentinel.
func (c *Config) LogRegex() *regexp.Regexp {
	return c.logRegex
}
