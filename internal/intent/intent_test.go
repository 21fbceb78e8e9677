package intent

import (
	"testing"
)

func TestOrder(t *testing.T) {
	in := []Intent{
		{Kind: CreateComment, Body: "hello"},
		{Kind: AddLabel, Label: "reopened"},
		{Kind: SetState, State: "open"},
		{Kind: AddAssignee, User: "alice"},
	}

	got := Order(in)

	wantKinds := []Kind{SetState, AddLabel, AddAssignee, CreateComment}
	for i, k := range wantKinds {
		if got[i].Kind != k {
			t.Errorf("position %d: got %s, want %s", i, got[i].Kind, k)
		}
	}
}

func TestOrderStableWithinRank(t *testing.T) {
	in := []Intent{
		{Kind: AddLabel, Label: "first"},
		{Kind: RemoveLabel, Label: "second"},
		{Kind: AddLabel, Label: "third"},
	}

	got := Order(in)

	labels := []string{got[0].Label, got[1].Label, got[2].Label}
	want := []string{"first", "second", "third"}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("same-rank order changed: got %v, want %v", labels, want)
			break
		}
	}
}

func TestOrderDoesNotMutateInput(t *testing.T) {
	in := []Intent{
		{Kind: CreateComment, Body: "x"},
		{Kind: SetState, State: "open"},
	}

	Order(in)

	if in[0].Kind != CreateComment {
		t.Errorf("input slice was reordered in place")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		in   Intent
		want string
	}{
		{"set state", Intent{Kind: SetState, State: "open"}, "set-state(open)"},
		{"add label", Intent{Kind: AddLabel, Label: "needs-log"}, "add-label(needs-log)"},
		{"remove label", Intent{Kind: RemoveLabel, Label: "awaiting"}, "remove-label(awaiting)"},
		{"add assignee", Intent{Kind: AddAssignee, User: "alice"}, "add-assignee(alice)"},
		{"update comment", Intent{Kind: UpdateComment, CommentID: 7}, "update-comment(#7)"},
		{"create comment", Intent{Kind: CreateComment, Body: "hi"}, "create-comment"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
