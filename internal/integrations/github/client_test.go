package github

import (
	"context"
	"testing"
)

func TestCreateCommentValidation(t *testing.T) {
	client := &Client{client: nil} // nil client for validation testing

	err := client.CreateComment(context.Background(), "org", "repo", 1, "")
	if err == nil {
		t.Error("Expected error for empty comment body")
	}

	err = client.CreateComment(context.Background(), "org", "repo", 1, "   ")
	if err == nil {
		t.Error("Expected error for whitespace-only comment body")
	}
}

func TestUpdateCommentValidation(t *testing.T) {
	client := &Client{client: nil}

	if err := client.UpdateComment(context.Background(), "org", "repo", 1, ""); err == nil {
		t.Error("Expected error for empty comment body")
	}
}

func TestAddLabelsValidation(t *testing.T) {
	client := &Client{client: nil}

	err := client.AddLabels(context.Background(), "org", "repo", 1, []string{})
	if err == nil {
		t.Error("Expected error for empty labels slice")
	}

	err = client.AddLabels(context.Background(), "org", "repo", 1, nil)
	if err == nil {
		t.Error("Expected error for nil labels slice")
	}
}

func TestSetStateValidation(t *testing.T) {
	client := &Client{client: nil}

	for _, state := range []string{"", "reopened", "OPEN", "all"} {
		if err := client.SetState(context.Background(), "org", "repo", 1, state); err == nil {
			t.Errorf("Expected error for state %q", state)
		}
	}
}

func TestAssigneeValidation(t *testing.T) {
	client := &Client{client: nil}

	if err := client.AddAssignees(context.Background(), "org", "repo", 1, nil); err == nil {
		t.Error("Expected error for empty assignees slice")
	}
	if err := client.RemoveAssignees(context.Background(), "org", "repo", 1, nil); err == nil {
		t.Error("Expected error for empty assignees slice")
	}
}
