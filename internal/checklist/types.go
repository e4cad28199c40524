package checklist

import "errors"

// Session errors returned by the store. Expired and never-created sessions
// are indistinguishable on purpose: the store purges expired sessions, so
// both surface as not found.
var (
	ErrEmptyChecklist  = errors.New("checklist has no items")
	ErrSessionNotFound = errors.New("checklist session expired or unknown")
	ErrNotSessionOwner = errors.New("checklist session belongs to another user")
	ErrUnknownItem     = errors.New("item is not the session's current question")
)

// Item is one checklist question. Blocking items gate the upgrade of a HOLD
// decision into a conditional bid.
type Item struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Blocking bool   `json:"blocking"`
	Clause   string `json:"clause,omitempty"`
	Category string `json:"category,omitempty"`
}

// Outcome is the terminal artifact of a resolved session. Exactly one of
// the two item lists is populated: SatisfiedBlocking when the decision was
// upgraded, FailedBlocking when the HOLD was confirmed.
type Outcome struct {
	Decision          string          `json:"decision"`
	Upgraded          bool            `json:"upgraded"`
	Summary           string          `json:"summary"`
	SatisfiedBlocking []Item          `json:"satisfied_blocking,omitempty"`
	FailedBlocking    []Item          `json:"failed_blocking,omitempty"`
	Responses         map[string]bool `json:"checklist_responses"`
}

// Step is the result of one answer submission: either the next question or
// the final outcome, never both.
type Step struct {
	Next     *Item    `json:"next,omitempty"`
	Position int      `json:"position"`
	Total    int      `json:"total"`
	Outcome  *Outcome `json:"outcome,omitempty"`
}

// View is a read-only snapshot of a live session.
type View struct {
	ID       string `json:"id"`
	Document string `json:"document"`
	Summary  string `json:"summary"`
	Current  *Item  `json:"current"`
	Position int    `json:"position"`
	Total    int    `json:"total"`
}
