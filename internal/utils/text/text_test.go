package text

import (
	"strings"
	"testing"

	"github.com/shepherdly/shepherd-bot/internal/event"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		template string
		username string
		want     string
	}{
		{"single placeholder", "Hi @{{username}}!", "alice", "Hi @alice!"},
		{"repeated placeholder", "{{username}} and {{username}}", "bob", "bob and bob"},
		{"no placeholder", "plain text", "alice", "plain text"},
		{"empty template", "", "alice", ""},
		{"empty username", "Hi @{{username}}", "", "Hi @"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, tt.username); got != tt.want {
				t.Errorf("Render(%q, %q) = %q, want %q", tt.template, tt.username, got, tt.want)
			}
		})
	}
}

func TestThreadCorpus(t *testing.T) {
	comments := []event.Comment{
		{Author: "alice", Body: "first comment"},
		{Author: "bob", Body: ""},
		{Author: "carol", Body: "LOGID-123 attached"},
	}

	got := ThreadCorpus("issue body", comments)

	for _, want := range []string{"issue body", "first comment", "LOGID-123 attached"} {
		if !strings.Contains(got, want) {
			t.Errorf("corpus missing %q:\n%s", want, got)
		}
	}
}

func TestThreadCorpusEmptyBody(t *testing.T) {
	got := ThreadCorpus("   ", []event.Comment{{Body: "only comment"}})
	if strings.HasPrefix(got, "\n") || strings.HasPrefix(got, " ") {
		t.Errorf("blank issue body should be skipped, got %q", got)
	}
	if !strings.Contains(got, "only comment") {
		t.Errorf("corpus missing comment body: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short string untouched", "hello", 10, "hello"},
		{"exact length untouched", "hello", 5, "hello"},
		{"truncated", "hello world", 5, "hello..."},
		{"zero max", "hello", 0, ""},
		{"multibyte runes", "héllo wörld", 5, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}
