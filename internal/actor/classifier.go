// Package actor classifies usernames as bots and as privileged
// (maintainer-level) actors. Permission lookups are the most expensive
// external call the bot makes, so results are memoized for the lifetime of
// one run; the cache is owned by the run, never process-wide.
package actor

import (
	"context"
	"log"
	"strings"
)

// PermissionLookup resolves a collaborator permission level. It returns
// "none" (and no error) for users who are not collaborators.
type PermissionLookup interface {
	PermissionLevel(ctx context.Context, org, repo, username string) (string, error)
}

// permissionRank orders GitHub permission levels for threshold comparison.
var permissionRank = map[string]int{
	"none":     0,
	"read":     1,
	"triage":   2,
	"write":    3,
	"maintain": 4,
	"admin":    5,
}

// Classifier resolves bot-ness and privilege for one run.
type Classifier struct {
	lookup    PermissionLookup
	org       string
	repo      string
	bots      []string
	threshold int
	verbose   bool

	levels map[string]string // login -> permission level, memoized
}

// New creates a classifier scoped to one run against one repository.
// threshold is the minimum permission level that counts as privileged.
func New(lookup PermissionLookup, org, repo, threshold string, bots []string, verbose bool) *Classifier {
	rank, ok := permissionRank[strings.ToLower(threshold)]
	if !ok {
		rank = permissionRank["write"]
	}
	return &Classifier{
		lookup:    lookup,
		org:       org,
		repo:      repo,
		bots:      bots,
		threshold: rank,
		verbose:   verbose,
		levels:    make(map[string]string),
	}
}

// IsBot reports whether the login is a bot: either it carries the platform
// bot suffix or it is in the configured bots list.
func (c *Classifier) IsBot(login string) bool {
	if strings.HasSuffix(login, "[bot]") {
		return true
	}
	for _, b := range c.bots {
		if strings.EqualFold(login, b) {
			return true
		}
	}
	return false
}

// IsPrivileged reports whether the login has at least the threshold
// permission level. Bots are never privileged here; use
// IsPrivilegedAllowBot for the bot's own identity when it must
// self-assign.
func (c *Classifier) IsPrivileged(ctx context.Context, login string) (bool, error) {
	return c.classify(ctx, login, false)
}

// IsPrivilegedAllowBot is IsPrivileged without the bot exclusion.
func (c *Classifier) IsPrivilegedAllowBot(ctx context.Context, login string) (bool, error) {
	return c.classify(ctx, login, true)
}

func (c *Classifier) classify(ctx context.Context, login string, allowBot bool) (bool, error) {
	if login == "" {
		return false, nil
	}
	if !allowBot && c.IsBot(login) {
		return false, nil
	}

	level, ok := c.levels[login]
	if !ok {
		var err error
		level, err = c.lookup.PermissionLevel(ctx, c.org, c.repo, login)
		if err != nil {
			return false, err
		}
		c.levels[login] = level
		if c.verbose {
			log.Printf("[actor] %s has %q permission on %s/%s", login, level, c.org, c.repo)
		}
	}

	return permissionRank[strings.ToLower(level)] >= c.threshold, nil
}

// Lookups returns how many distinct logins have been resolved, for
// verification that the run stays within one lookup per username.
func (c *Classifier) Lookups() int {
	return len(c.levels)
}
