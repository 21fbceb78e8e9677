// Package text provides the small text helpers the rules share: message
// template rendering and building the searchable corpus for a full-thread
// support-log scan.
package text

import (
	"fmt"
	"strings"

	"github.com/shepherdly/shepherd-bot/internal/event"
)

// Render substitutes {{username}} in an operator-supplied message
// template. Only this one placeholder is supported; templates are free
// text, not Go templates.
func Render(template, username string) string {
	return strings.ReplaceAll(template, "{{username}}", username)
}

// ThreadCorpus combines the issue body and every comment body into a
// single searchable string. Empty bodies are skipped.
func ThreadCorpus(body string, comments []event.Comment) string {
	var sb strings.Builder

	if b := strings.TrimSpace(body); b != "" {
		sb.WriteString(b)
		sb.WriteString("\n\n")
	}

	for _, c := range comments {
		if c.Body == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s\n\n", c.Body)
	}

	return sb.String()
}

// Truncate caps s at max runes for log output.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
