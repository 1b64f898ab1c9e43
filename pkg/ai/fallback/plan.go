package fallback

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	ErrTransport     = errors.New("fallback: model call failed")
	ErrSchemaInvalid = errors.New("fallback: response does not match the action plan schema")
	ErrNotAllowed    = errors.New("fallback: intent is not on the allow-list")
	ErrRejected      = errors.New("fallback: rejected by policy")
)

// Meta carries structural hints about the proposed action
type Meta struct {
	PartyCount    string `json:"party_count,omitempty" validate:"omitempty,oneof=one_on_one group pool"`
	Participation string `json:"participation,omitempty" validate:"omitempty,oneof=all any quorum"`
	Confirmation  string `json:"confirmation,omitempty" validate:"omitempty,oneof=always never auto"`
}

type PlanClarification struct {
	Field    string `json:"field" validate:"required,max=64"`
	Question string `json:"question" validate:"required,max=500"`
}

// ActionPlan is the model's structured proposal. It is never executed; the
// router narrows it into an intent.Result after the policy gate.
type ActionPlan struct {
	Intent               string              `json:"intent" validate:"required,max=64"`
	Confidence           float64             `json:"confidence" validate:"gte=0,lte=1"`
	Params               map[string]any      `json:"params,omitempty"`
	Meta                 *Meta               `json:"meta,omitempty"`
	RequiresConfirm      bool                `json:"requires_confirm"`
	Clarifications       []PlanClarification `json:"clarifications,omitempty" validate:"max=5,dive"`
	SuggestedNextActions []string            `json:"suggested_next_actions,omitempty" validate:"max=5,dive,max=200"`
	Message              string              `json:"message,omitempty" validate:"max=2000"`
}

var reFenced = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// candidates lists the JSON texts to try: fenced block, the bare response,
// then the outermost brace substring
func candidates(response string) []string {
	var out []string
	for _, m := range reFenced.FindAllStringSubmatch(response, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if trimmed := strings.TrimSpace(response); strings.HasPrefix(trimmed, "{") {
		out = append(out, trimmed)
	}
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start >= 0 && end > start {
		out = append(out, response[start:end+1])
	}
	return out
}

// ParsePlan decodes the first candidate that is a JSON object
func ParsePlan(response string) (*ActionPlan, error) {
	var lastErr error = errors.New("no JSON object found")
	for _, c := range candidates(response) {
		var plan ActionPlan
		if err := json.Unmarshal([]byte(c), &plan); err != nil {
			lastErr = err
			continue
		}
		plan.Intent = strings.TrimSpace(strings.ToLower(plan.Intent))
		return &plan, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrSchemaInvalid, lastErr)
}

// Validate checks the plan against its struct tags
func Validate(v *validator.Validate, plan *ActionPlan) error {
	if err := v.Struct(plan); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}
