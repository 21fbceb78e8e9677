package board

import (
	"testing"

	"github.com/shepherdly/shepherd-bot/internal/core/config"
	"github.com/shepherdly/shepherd-bot/internal/event"
)

func TestParseProjectURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		ownerType string
		owner     string
		number    int
		wantErr   bool
	}{
		{"org project", "https://github.com/orgs/acme/projects/3", "orgs", "acme", 3, false},
		{"user project", "https://github.com/users/alice/projects/12", "users", "alice", 12, false},
		{"trailing slash", "https://github.com/orgs/acme/projects/3/", "orgs", "acme", 3, false},
		{"repo project url", "https://github.com/acme/widgets/projects/1", "", "", 0, true},
		{"no number", "https://github.com/orgs/acme/projects/", "", "", 0, true},
		{"plain text", "not a url", "", "", 0, true},
		{"empty", "", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ownerType, owner, number, err := ParseProjectURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProjectURL(%q) error: %v", tt.url, err)
			}
			if ownerType != tt.ownerType || owner != tt.owner || number != tt.number {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					ownerType, owner, number, tt.ownerType, tt.owner, tt.number)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	labels := config.LabelsConfig{
		Awaiting: "awaiting-user-feedback",
		Reopened: "auto-reopened",
	}

	tests := []struct {
		name          string
		issue         *event.Issue
		hasPrivileged bool
		want          string
	}{
		{
			name:  "fresh open issue",
			issue: &event.Issue{State: "open"},
			want:  StatusNew,
		},
		{
			name:          "open unassigned with maintainer activity",
			issue:         &event.Issue{State: "open"},
			hasPrivileged: true,
			want:          StatusBacklog,
		},
		{
			name:  "open and assigned",
			issue: &event.Issue{State: "open", Assignees: []string{"alice"}},
			want:  StatusAssigned,
		},
		{
			name: "assigned and awaiting feedback",
			issue: &event.Issue{
				State:     "open",
				Assignees: []string{"alice"},
				Labels:    []string{"awaiting-user-feedback"},
			},
			want: StatusAwaiting,
		},
		{
			name: "awaiting label without assignee stays new",
			issue: &event.Issue{
				State:  "open",
				Labels: []string{"awaiting-user-feedback"},
			},
			want: StatusNew,
		},
		{
			name:  "closed after bot reopen cycle",
			issue: &event.Issue{State: "closed", Labels: []string{"auto-reopened"}},
			want:  StatusMerged,
		},
		{
			name:  "closed without tracking label leaves board untouched",
			issue: &event.Issue{State: "closed"},
			want:  "",
		},
		{
			name:          "closed ignores maintainer activity",
			issue:         &event.Issue{State: "closed"},
			hasPrivileged: true,
			want:          "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatusFor(tt.issue, labels, tt.hasPrivileged)
			if got != tt.want {
				t.Errorf("StatusFor() = %q, want %q", got, tt.want)
			}
		})
	}
}
