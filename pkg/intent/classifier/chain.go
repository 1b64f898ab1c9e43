// Package classifier maps a normalized message plus its pending context to
// an intent.Result. Classifiers are pure and run in one fixed order.
package classifier

import (
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/pending"
)

// Classifier owns one topic. Classify returns nil when the input is not its
// business, which hands the message to the next classifier.
type Classifier interface {
	Name() string
	Classify(in Input, ctx Context, active *pending.State) *intent.Result
}

// Default is the evaluation order. Earlier classifiers win when two match
// the same input, so any change here is a behaviour change.
func Default() []Classifier {
	return []Classifier{
		pendingDecision{},      // 1
		contactImportPending{}, // 2
		personSelection{},      // 3
		emailRequest{},         // 4
		confirmCancel{},        // 5
		threadOps{},            // 6
		lists{},                // 7
		calendarRead{},         // 8
		contactImport{},        // 9
		poolBooking{},          // 10
		reminder{},             // 11
		relationship{},         // 12
		preferences{},          // 13
		scheduleOps{},          // 14
		oneOnOne{},             // 15
		help{},                 // 16
	}
}

type Chain struct {
	classifiers []Classifier
}

func New(classifiers ...Classifier) *Chain {
	return &Chain{classifiers: classifiers}
}

func NewDefault() *Chain {
	return New(Default()...)
}

// Names lists the classifiers in evaluation order
func (c *Chain) Names() []string {
	names := make([]string, len(c.classifiers))
	for i, cl := range c.classifiers {
		names[i] = cl.Name()
	}
	return names
}

// Classify returns the first classifier's result, or unknown carrying raw
func (c *Chain) Classify(raw string, ctx Context) *intent.Result {
	res, _ := c.ClassifyTrace(raw, ctx)
	return res
}

// ClassifyTrace also reports which classifier matched ("" for unknown)
func (c *Chain) ClassifyTrace(raw string, ctx Context) (*intent.Result, string) {
	in := Normalize(raw)
	active := ctx.Active()
	if in.Norm == "" && active == nil {
		return intent.NewUnknown(raw), ""
	}
	for _, cl := range c.classifiers {
		if res := cl.Classify(in, ctx, active); res != nil {
			return res, cl.Name()
		}
	}
	return intent.NewUnknown(raw), ""
}
