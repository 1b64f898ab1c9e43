package classifier

import (
	"strings"
	"time"

	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/pending"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Input carries the three forms of one message every classifier sees
type Input struct {
	Raw    string
	Folded string // NFKC width fold, trimmed, single-spaced; original case
	Norm   string // Folded, case-folded
}

// Normalize folds full-width forms (１４：００ → 14:00), trims and collapses
// whitespace, then case-folds
func Normalize(raw string) Input {
	folded := strings.Join(strings.Fields(norm.NFKC.String(raw)), " ")
	return Input{
		Raw:    raw,
		Folded: folded,
		// a Caser keeps state, so one per call
		Norm: cases.Fold().String(folded),
	}
}

// Turn is one line of recent conversation, used only by the AI path
type Turn struct {
	Role    string `json:"role"` // user | assistant
	Content string `json:"content"`
}

// Context is everything classification may depend on besides the text.
// It is a value snapshot: classifiers read it and never mutate it.
type Context struct {
	ThreadID      string
	UserID        string
	ThreadPending *pending.State
	GlobalPending *pending.State
	Now           time.Time
	Contacts      []extract.Contact
	History       []Turn
}

// PendingKey is where a new pending record for this context belongs: the
// selected thread, or the user's global slot when no thread is selected
func (c Context) PendingKey() string {
	if c.ThreadID != "" {
		return c.ThreadID
	}
	return pending.GlobalThreadID(c.UserID)
}

// Active resolves the pending record classification is gated on
func (c Context) Active() *pending.State {
	return pending.Effective(c.ThreadPending, c.GlobalPending, c.Now)
}

// fragments runs the extractors on the folded text
func (i Input) fragments(now time.Time) extract.Fragments {
	return extract.All(i.Folded, now)
}

func (i Input) has(words ...string) bool {
	for _, w := range words {
		if strings.Contains(i.Norm, w) {
			return true
		}
	}
	return false
}
