// Package event decodes trigger payloads into the snapshots the pipeline
// evaluates. A trigger is either a webhook delivery ("issues" or
// "issue_comment") or a synthesized sweep trigger for one issue during a
// repository-wide sweep.
package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/go-github/v60/github"
)

// Trigger names understood by the pipeline.
const (
	NameIssues       = "issues"
	NameIssueComment = "issue_comment"
	NameSweep        = "sweep"
)

// Event is one trigger: who did what to which issue.
type Event struct {
	Name    string
	Action  string
	Org     string
	Repo    string
	Sender  string
	Issue   *Issue
	Comment *Comment
}

// Issue is a read snapshot of an issue for the duration of one evaluation.
// The applier mutates it optimistically after each applied transition so
// later rules see the current state without re-fetching.
type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"` // "open" or "closed"
	Author    string    `json:"author"`
	Labels    []string  `json:"labels"`
	Assignees []string  `json:"assignees"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a read-only snapshot of one issue comment.
type Comment struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Parse decodes a webhook payload for the named event. A payload without a
// resolvable issue is an error, not a silent skip; the caller treats it as
// fatal.
func Parse(name string, payload []byte) (*Event, error) {
	switch name {
	case NameIssues:
		var ev github.IssuesEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse issues payload: %w", err)
		}
		if ev.Issue == nil {
			return nil, fmt.Errorf("issues payload has no issue")
		}
		return &Event{
			Name:   NameIssues,
			Action: ev.GetAction(),
			Org:    ev.GetRepo().GetOwner().GetLogin(),
			Repo:   ev.GetRepo().GetName(),
			Sender: ev.GetSender().GetLogin(),
			Issue:  FromIssue(ev.Issue),
		}, nil

	case NameIssueComment:
		var ev github.IssueCommentEvent
		if err := json.Unmarshal(payload, &ev); err != nil {
			return nil, fmt.Errorf("failed to parse issue_comment payload: %w", err)
		}
		if ev.Issue == nil {
			return nil, fmt.Errorf("issue_comment payload has no issue")
		}
		if ev.Comment == nil {
			return nil, fmt.Errorf("issue_comment payload has no comment")
		}
		return &Event{
			Name:    NameIssueComment,
			Action:  ev.GetAction(),
			Org:     ev.GetRepo().GetOwner().GetLogin(),
			Repo:    ev.GetRepo().GetName(),
			Sender:  ev.GetSender().GetLogin(),
			Issue:   FromIssue(ev.Issue),
			Comment: FromComment(ev.Comment),
		}, nil
	}

	return nil, fmt.Errorf("unexpected event type %q", name)
}

// Sweep synthesizes a trigger for one issue during a repository sweep.
// Sweep triggers carry no sender activity.
func Sweep(org, repo string, issue *github.Issue) *Event {
	return &Event{
		Name:   NameSweep,
		Action: NameSweep,
		Org:    org,
		Repo:   repo,
		Issue:  FromIssue(issue),
	}
}

// FromIssue converts a go-github issue into a snapshot.
func FromIssue(is *github.Issue) *Issue {
	snap := &Issue{
		Number:    is.GetNumber(),
		Title:     is.GetTitle(),
		Body:      is.GetBody(),
		State:     is.GetState(),
		Author:    is.GetUser().GetLogin(),
		URL:       is.GetHTMLURL(),
		CreatedAt: is.GetCreatedAt().Time,
		UpdatedAt: is.GetUpdatedAt().Time,
	}
	for _, l := range is.Labels {
		if name := l.GetName(); name != "" {
			snap.Labels = append(snap.Labels, name)
		}
	}
	for _, a := range is.Assignees {
		if login := a.GetLogin(); login != "" {
			snap.Assignees = append(snap.Assignees, login)
		}
	}
	return snap
}

// FromComment converts a go-github comment into a snapshot.
func FromComment(c *github.IssueComment) *Comment {
	return &Comment{
		ID:        c.GetID(),
		Author:    c.GetUser().GetLogin(),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
	}
}

// TriggerBody returns the text the trigger carries: the comment body for
// comment events, the issue body otherwise.
func (e *Event) TriggerBody() string {
	if e.Comment != nil {
		return e.Comment.Body
	}
	if e.Issue != nil {
		return e.Issue.Body
	}
	return ""
}

// HasLabel reports whether the snapshot carries the named label. An empty
// name never matches.
func (i *Issue) HasLabel(name string) bool {
	if name == "" {
		return false
	}
	for _, l := range i.Labels {
		if l == name {
			return true
		}
	}
	return false
}

// AddLabel records a label on the snapshot, keeping the label set ordered
// and duplicate-free.
func (i *Issue) AddLabel(name string) {
	if name == "" || i.HasLabel(name) {
		return
	}
	i.Labels = append(i.Labels, name)
}

// RemoveLabel drops a label from the snapshot.
func (i *Issue) RemoveLabel(name string) {
	for idx, l := range i.Labels {
		if l == name {
			i.Labels = append(i.Labels[:idx], i.Labels[idx+1:]...)
			return
		}
	}
}

// Assigned reports whether the issue has any assignees.
func (i *Issue) Assigned() bool {
	return len(i.Assignees) > 0
}

// Open reports whether the issue is open.
func (i *Issue) Open() bool {
	return i.State == "open"
}
