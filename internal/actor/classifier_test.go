package actor

import (
	"context"
	"fmt"
	"testing"
)

// fakeLookup returns canned permission levels and counts API calls.
type fakeLookup struct {
	levels map[string]string
	err    error
	calls  int
}

func (f *fakeLookup) PermissionLevel(ctx context.Context, org, repo, username string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	level, ok := f.levels[username]
	if !ok {
		return "none", nil
	}
	return level, nil
}

func TestIsBot(t *testing.T) {
	tests := []struct {
		name  string
		login string
		bots  []string
		want  bool
	}{
		{"bot suffix", "dependabot[bot]", nil, true},
		{"normal user", "alice", nil, false},
		{"configured bot", "ci-runner", []string{"ci-runner"}, true},
		{"configured bot case insensitive", "CI-Runner", []string{"ci-runner"}, true},
		{"not in configured list", "bob", []string{"ci-runner"}, false},
		{"empty login", "", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(&fakeLookup{}, "acme", "widgets", "write", tt.bots, false)
			if got := c.IsBot(tt.login); got != tt.want {
				t.Errorf("IsBot(%q) = %v, want %v", tt.login, got, tt.want)
			}
		})
	}
}

func TestIsPrivilegedThreshold(t *testing.T) {
	levels := map[string]string{
		"reader":     "read",
		"triager":    "triage",
		"writer":     "write",
		"maintainer": "maintain",
		"owner":      "admin",
		"external":   "none",
	}

	tests := []struct {
		threshold string
		login     string
		want      bool
	}{
		{"write", "writer", true},
		{"write", "maintainer", true},
		{"write", "owner", true},
		{"write", "triager", false},
		{"write", "reader", false},
		{"write", "external", false},
		{"triage", "triager", true},
		{"triage", "reader", false},
		{"admin", "maintainer", false},
		{"admin", "owner", true},
		{"read", "reader", true},
	}

	for _, tt := range tests {
		t.Run(tt.threshold+"/"+tt.login, func(t *testing.T) {
			c := New(&fakeLookup{levels: levels}, "acme", "widgets", tt.threshold, nil, false)
			got, err := c.IsPrivileged(context.Background(), tt.login)
			if err != nil {
				t.Fatalf("IsPrivileged(%q) error: %v", tt.login, err)
			}
			if got != tt.want {
				t.Errorf("IsPrivileged(%q) with threshold %q = %v, want %v", tt.login, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestUnknownThresholdFallsBackToWrite(t *testing.T) {
	levels := map[string]string{"triager": "triage", "writer": "write"}
	c := New(&fakeLookup{levels: levels}, "acme", "widgets", "bogus", nil, false)

	if got, _ := c.IsPrivileged(context.Background(), "writer"); !got {
		t.Errorf("writer should be privileged under the fallback threshold")
	}
	if got, _ := c.IsPrivileged(context.Background(), "triager"); got {
		t.Errorf("triager should not be privileged under the fallback threshold")
	}
}

func TestMemoizedLookups(t *testing.T) {
	lookup := &fakeLookup{levels: map[string]string{"alice": "write"}}
	c := New(lookup, "acme", "widgets", "write", nil, false)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := c.IsPrivileged(ctx, "alice"); err != nil {
			t.Fatalf("IsPrivileged error: %v", err)
		}
	}
	if _, err := c.IsPrivileged(ctx, "bob"); err != nil {
		t.Fatalf("IsPrivileged error: %v", err)
	}

	if lookup.calls != 2 {
		t.Errorf("lookup called %d times, want 2 (one per distinct login)", lookup.calls)
	}
	if c.Lookups() != 2 {
		t.Errorf("Lookups() = %d, want 2", c.Lookups())
	}
}

func TestBotsNeverPrivileged(t *testing.T) {
	lookup := &fakeLookup{levels: map[string]string{"shepherd[bot]": "admin"}}
	c := New(lookup, "acme", "widgets", "write", nil, false)
	ctx := context.Background()

	got, err := c.IsPrivileged(ctx, "shepherd[bot]")
	if err != nil {
		t.Fatalf("IsPrivileged error: %v", err)
	}
	if got {
		t.Errorf("bot login must not be privileged through IsPrivileged")
	}
	if lookup.calls != 0 {
		t.Errorf("bot check must not reach the API, got %d calls", lookup.calls)
	}

	allowed, err := c.IsPrivilegedAllowBot(ctx, "shepherd[bot]")
	if err != nil {
		t.Fatalf("IsPrivilegedAllowBot error: %v", err)
	}
	if !allowed {
		t.Errorf("IsPrivilegedAllowBot should honor the bot's actual permission")
	}
}

func TestEmptyLoginNotPrivileged(t *testing.T) {
	lookup := &fakeLookup{}
	c := New(lookup, "acme", "widgets", "write", nil, false)

	got, err := c.IsPrivileged(context.Background(), "")
	if err != nil {
		t.Fatalf("IsPrivileged error: %v", err)
	}
	if got {
		t.Errorf("empty login must never be privileged")
	}
	if lookup.calls != 0 {
		t.Errorf("empty login must not reach the API")
	}
}

func TestLookupErrorPropagates(t *testing.T) {
	lookup := &fakeLookup{err: fmt.Errorf("boom")}
	c := New(lookup, "acme", "widgets", "write", nil, false)

	if _, err := c.IsPrivileged(context.Background(), "alice"); err == nil {
		t.Errorf("expected lookup error to propagate")
	}
}
