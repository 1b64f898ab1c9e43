package intent

import (
	"encoding/json"

	"ai-scheduler-be/pkg/pending"
)

// Source identifies which layer produced a result
type Source string

const (
	SourceRule     Source = "rule"
	SourceAI       Source = "ai"
	SourceFallback Source = "fallback"
)

// Clarification signals that a result cannot be executed as-is.
// The executor must re-prompt the user with Message instead of acting.
type Clarification struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the unit handed from the classifier chain to executors
type Result struct {
	Intent             Name           `json:"intent"`
	Confidence         float64        `json:"confidence"`
	Params             Params         `json:"params,omitempty"`
	DynamicParams      map[string]any `json:"dynamic_params,omitempty"` // AI-suggested values only
	NeedsClarification *Clarification `json:"needs_clarification,omitempty"`
	RequiresConfirm    bool           `json:"requires_confirm,omitempty"`
	Source             Source         `json:"source"`

	// Pending directives. Classifiers never touch the store; the caller
	// applies at most one of these after classification.
	NextPending  *pending.State `json:"next_pending,omitempty"`
	ConsumeToken string         `json:"consume_token,omitempty"`
	ClearPending bool           `json:"clear_pending,omitempty"`

	// PendingThread is the key ConsumeToken/ClearPending apply to. It differs
	// from the request thread when the decision was on the global slot.
	PendingThread string `json:"pending_thread,omitempty"`
}

// Executable reports whether a side-effecting executor may run for r
func (r *Result) Executable() bool {
	return r != nil && r.NeedsClarification == nil && r.Intent != Unknown
}

// IsUnknown reports whether nothing recognised the input
func (r *Result) IsUnknown() bool {
	return r == nil || r.Intent == Unknown
}

// Encode returns the canonical JSON form of r. Equal results encode to equal bytes.
func (r *Result) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// NewClarify builds a result that asks the user for field
func NewClarify(name Name, confidence float64, params Params, field, message string) *Result {
	return &Result{
		Intent:             name,
		Confidence:         confidence,
		Params:             params,
		NeedsClarification: &Clarification{Field: field, Message: message},
		Source:             SourceRule,
	}
}

// NewUnknown is the chain's terminal result when no classifier matched
func NewUnknown(raw string) *Result {
	return &Result{
		Intent:     Unknown,
		Confidence: 0,
		Params:     UnknownParams{Input: raw},
		Source:     SourceRule,
	}
}
