// Package intent defines the mutations the evaluator proposes and the
// fixed order in which they are applied. Applying state changes before
// label changes before comments keeps intermediate states consistent for a
// racing concurrent run.
package intent

import (
	"fmt"
	"sort"
)

// Kind identifies a mutation type.
type Kind string

const (
	SetState        Kind = "set-state"
	AddLabel        Kind = "add-label"
	RemoveLabel     Kind = "remove-label"
	AddAssignee     Kind = "add-assignee"
	RemoveAssignees Kind = "remove-assignees"
	CreateComment   Kind = "create-comment"
	UpdateComment   Kind = "update-comment"
	UpdateBody      Kind = "update-body"
	SetBoardStatus  Kind = "set-board-status"
)

// applyRank orders kinds for application: state first, then labels, then
// assignees, then comment/body writes, board sync last.
var applyRank = map[Kind]int{
	SetState:        0,
	AddLabel:        1,
	RemoveLabel:     1,
	AddAssignee:     2,
	RemoveAssignees: 2,
	CreateComment:   3,
	UpdateComment:   3,
	UpdateBody:      3,
	SetBoardStatus:  4,
}

// Intent is one proposed mutation. Only the fields relevant to its Kind
// are set.
type Intent struct {
	Kind      Kind
	Label     string   // AddLabel, RemoveLabel
	State     string   // SetState: "open" or "closed"
	User      string   // AddAssignee
	Users     []string // RemoveAssignees
	Body      string   // CreateComment, UpdateComment, UpdateBody
	CommentID int64    // UpdateComment
	Status    string   // SetBoardStatus: canonical status key
}

// String renders the intent for logs.
func (i Intent) String() string {
	switch i.Kind {
	case SetState:
		return fmt.Sprintf("%s(%s)", i.Kind, i.State)
	case AddLabel, RemoveLabel:
		return fmt.Sprintf("%s(%s)", i.Kind, i.Label)
	case AddAssignee:
		return fmt.Sprintf("%s(%s)", i.Kind, i.User)
	case RemoveAssignees:
		return fmt.Sprintf("%s(%v)", i.Kind, i.Users)
	case UpdateComment:
		return fmt.Sprintf("%s(#%d)", i.Kind, i.CommentID)
	case SetBoardStatus:
		return fmt.Sprintf("%s(%s)", i.Kind, i.Status)
	}
	return string(i.Kind)
}

// Order sorts intents into the fixed apply order. The sort is stable, so
// intents of the same rank keep the order the rules emitted them in.
func Order(intents []Intent) []Intent {
	ordered := make([]Intent, len(intents))
	copy(ordered, intents)
	sort.SliceStable(ordered, func(a, b int) bool {
		return applyRank[ordered[a].Kind] < applyRank[ordered[b].Kind]
	})
	return ordered
}
