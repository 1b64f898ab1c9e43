package fallback

import (
	"encoding/json"

	"ai-scheduler-be/pkg/ai/policy"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/pending"
)

const msgNotUnderstood = "すみません、よく分かりませんでした。もう少し詳しく教えてください(例: 「明日の予定」「佐藤さんと1/28 14:00で打ち合わせ」)。"

// variants maps an intent family to the params type the model's values decode into
var variants = map[string]func() intent.Params{
	"calendar":   func() intent.Params { return &intent.CalendarParams{} },
	"schedule":   func() intent.Params { return &intent.ScheduleParams{} },
	"invite":     func() intent.Params { return &intent.ScheduleParams{} },
	"thread":     func() intent.Params { return &intent.ThreadParams{} },
	"remind":     func() intent.Params { return &intent.ReminderParams{} },
	"pool":       func() intent.Params { return &intent.PoolParams{} },
	"relation":   func() intent.Params { return &intent.RelationParams{} },
	"preference": func() intent.Params { return &intent.PreferenceParams{} },
}

// typedParams decodes the model's params into the family variant. Values the
// variant has no field for stay only in DynamicParams.
func typedParams(name intent.Name, values map[string]any) intent.Params {
	mk, ok := variants[name.Family()]
	if !ok || len(values) == 0 {
		return nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	p := mk()
	if err := json.Unmarshal(raw, p); err != nil {
		return nil
	}
	return deref(p)
}

func deref(p intent.Params) intent.Params {
	switch v := p.(type) {
	case *intent.CalendarParams:
		return *v
	case *intent.ScheduleParams:
		return *v
	case *intent.ThreadParams:
		return *v
	case *intent.ReminderParams:
		return *v
	case *intent.PoolParams:
		return *v
	case *intent.RelationParams:
		return *v
	case *intent.PreferenceParams:
		return *v
	}
	return p
}

func clamp(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// narrow turns an allowed plan into the result handed to executors. The model
// never creates pending records, so NextPending stays nil.
func narrow(raw string, plan *ActionPlan, active *pending.State, d policy.Decision) *intent.Result {
	name := intent.Name(plan.Intent)
	res := &intent.Result{
		Intent:          name,
		Confidence:      clamp(plan.Confidence),
		Params:          typedParams(name, plan.Params),
		DynamicParams:   plan.Params,
		RequiresConfirm: d.RequiresConfirm,
		Source:          intent.SourceAI,
	}
	if len(plan.Clarifications) > 0 {
		c := plan.Clarifications[0]
		res.NeedsClarification = &intent.Clarification{Field: c.Field, Message: c.Question}
	}

	switch name {
	case intent.Unknown:
		res.Params = intent.UnknownParams{Input: raw}
		if res.NeedsClarification == nil {
			msg := plan.Message
			if msg == "" {
				msg = msgNotUnderstood
			}
			res.NeedsClarification = &intent.Clarification{Field: "input", Message: msg}
		}
	case intent.PendingReprompt:
		if active != nil {
			res.Params = intent.DecisionParams{PendingKind: string(active.Kind()), ThreadID: active.ThreadID, Summary: active.Summary}
			msg := active.Summary
			if msg == "" {
				msg = "保留中の確認に答えてください。"
			}
			res.NeedsClarification = &intent.Clarification{Field: "decision", Message: msg}
		}
	}
	return res
}

// rejected rewrites a blocked plan into unknown carrying the gate's question
func rejected(raw string, d policy.Decision) *intent.Result {
	return &intent.Result{
		Intent:             intent.Unknown,
		Params:             intent.UnknownParams{Input: raw},
		NeedsClarification: &intent.Clarification{Field: d.BlockReason, Message: d.FallbackQuestion},
		Source:             intent.SourceAI,
	}
}

// safeFallback re-offers the rule result, or asks the user to rephrase
func safeFallback(raw string, rule *intent.Result) *intent.Result {
	if rule != nil && !rule.IsUnknown() {
		return rule
	}
	return &intent.Result{
		Intent:             intent.Unknown,
		Params:             intent.UnknownParams{Input: raw},
		NeedsClarification: &intent.Clarification{Field: "input", Message: msgNotUnderstood},
		Source:             intent.SourceFallback,
	}
}
