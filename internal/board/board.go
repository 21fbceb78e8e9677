// Package board synchronizes an issue's derived status to a GitHub
// Projects-v2 board: a single-select status field plus start/end date
// fields. Board metadata (field and option IDs) is resolved once per run;
// a configured field or status name that does not exist on the board is a
// fatal configuration error.
package board

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"time"

	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/event"
	"github.com/shepherdly/shepherd-bot/internal/integrations/github"
)

// Canonical status keys.
const (
	StatusNew      = "new"
	StatusBacklog  = "backlog"
	StatusAssigned = "assigned"
	StatusAwaiting = "awaiting"
	StatusMerged   = "merged"
)

var projectURLRe = regexp.MustCompile(`^https://github\.com/(orgs|users)/([^/]+)/projects/(\d+)/?$`)

// ParseProjectURL resolves a project board URL into owner type ("orgs" or
// "users"), owner login and project number.
func ParseProjectURL(url string) (ownerType, owner string, number int, err error) {
	m := projectURLRe.FindStringSubmatch(url)
	if m == nil {
		return "", "", 0, fmt.Errorf("malformed project URL %q (expected https://github.com/orgs/<owner>/projects/<number>)", url)
	}
	number, err = strconv.Atoi(m[3])
	if err != nil {
		return "", "", 0, fmt.Errorf("malformed project number in %q: %w", url, err)
	}
	return m[1], m[2], number, nil
}

// StatusFor derives the canonical board status for an issue. A closed
// issue without the merge-tracking label has no managed status; the empty
// key tells the caller to leave the board untouched.
//
//	closed + merge-tracking label       -> merged
//	open, assigned, awaiting label      -> awaiting
//	open, assigned                      -> assigned
//	open, unassigned, maintainer active -> backlog
//	open, unassigned otherwise          -> new
func StatusFor(issue *event.Issue, labels config.LabelsConfig, hasPrivileged bool) string {
	if !issue.Open() {
		if issue.HasLabel(labels.Reopened) {
			return StatusMerged
		}
		return ""
	}
	if issue.Assigned() {
		if issue.HasLabel(labels.Awaiting) {
			return StatusAwaiting
		}
		return StatusAssigned
	}
	if hasPrivileged {
		return StatusBacklog
	}
	return StatusNew
}

// Synchronizer updates one project board. Metadata is loaded lazily on the
// first Sync and cached for the run.
type Synchronizer struct {
	gql     *github.GraphQLClient
	cfg     config.ProjectConfig
	verbose bool

	loaded      bool
	projectID   string
	statusID    string
	startDateID string
	endDateID   string
	optionIDs   map[string]string // canonical status key -> option ID
}

// New creates a synchronizer for the configured project.
func New(gql *github.GraphQLClient, cfg config.ProjectConfig, verbose bool) *Synchronizer {
	return &Synchronizer{gql: gql, cfg: cfg, verbose: verbose}
}

// load resolves the project, its fields and its status options once per run.
func (s *Synchronizer) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	ownerType, owner, number, err := ParseProjectURL(s.cfg.URL)
	if err != nil {
		return err
	}

	s.projectID, err = s.gql.GetProjectID(ctx, ownerType, owner, number)
	if err != nil {
		return fmt.Errorf("failed to resolve project: %w", err)
	}

	fields, err := s.gql.GetProjectFields(ctx, s.projectID)
	if err != nil {
		return fmt.Errorf("failed to load project fields: %w", err)
	}

	byName := make(map[string]github.ProjectField, len(fields))
	for _, f := range fields {
		byName[f.Name] = f
	}

	statusField, ok := byName[s.cfg.Fields.Status]
	if !ok {
		return fmt.Errorf("project field %q not found on board", s.cfg.Fields.Status)
	}
	s.statusID = statusField.ID

	s.optionIDs = make(map[string]string, 5)
	for key, name := range map[string]string{
		StatusNew:      s.cfg.Status.New,
		StatusBacklog:  s.cfg.Status.Backlog,
		StatusAssigned: s.cfg.Status.Assigned,
		StatusAwaiting: s.cfg.Status.Awaiting,
		StatusMerged:   s.cfg.Status.Merged,
	} {
		optionID := ""
		for _, o := range statusField.Options {
			if o.Name == name {
				optionID = o.ID
				break
			}
		}
		if optionID == "" {
			return fmt.Errorf("status option %q not found on field %q", name, s.cfg.Fields.Status)
		}
		s.optionIDs[key] = optionID
	}

	startField, ok := byName[s.cfg.Fields.StartDate]
	if !ok {
		return fmt.Errorf("project field %q not found on board", s.cfg.Fields.StartDate)
	}
	s.startDateID = startField.ID

	endField, ok := byName[s.cfg.Fields.EndDate]
	if !ok {
		return fmt.Errorf("project field %q not found on board", s.cfg.Fields.EndDate)
	}
	s.endDateID = endField.ID

	s.loaded = true
	return nil
}

// Sync locates or creates the issue's board item and updates its status
// and activity dates.
func (s *Synchronizer) Sync(ctx context.Context, org, repo string, issue *event.Issue, statusKey string) error {
	if err := s.load(ctx); err != nil {
		return err
	}

	optionID, ok := s.optionIDs[statusKey]
	if !ok {
		return fmt.Errorf("no status option mapped for %q", statusKey)
	}

	itemID, err := s.gql.GetItemForIssue(ctx, s.projectID, org, repo, issue.Number)
	if err != nil {
		return fmt.Errorf("failed to locate board item: %w", err)
	}

	today := time.Now().Format("2006-01-02")

	created := false
	if itemID == "" {
		nodeID, err := s.gql.GetIssueNodeID(ctx, org, repo, issue.Number)
		if err != nil {
			return err
		}
		itemID, err = s.gql.AddItem(ctx, s.projectID, nodeID)
		if err != nil {
			return fmt.Errorf("failed to add issue to board: %w", err)
		}
		created = true
	}

	if err := s.gql.SetItemSingleSelect(ctx, s.projectID, itemID, s.statusID, optionID); err != nil {
		return fmt.Errorf("failed to set board status: %w", err)
	}

	if created {
		if err := s.gql.SetItemDate(ctx, s.projectID, itemID, s.startDateID, today); err != nil {
			return fmt.Errorf("failed to set start date: %w", err)
		}
	}
	if err := s.gql.SetItemDate(ctx, s.projectID, itemID, s.endDateID, today); err != nil {
		return fmt.Errorf("failed to set end date: %w", err)
	}

	if s.verbose {
		log.Printf("[board] issue #%d -> %s", issue.Number, statusKey)
	}
	return nil
}
