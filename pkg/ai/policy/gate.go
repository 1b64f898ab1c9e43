// Package policy decides whether an intent proposed by the generative model
// may reach the caller. It is a pure decision table over the intent name, the
// active pending record and the intent's side-effect class.
package policy

import (
	"fmt"
	"strings"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/pending"
)

// Block reasons
const (
	ReasonConfirmStep    = "confirm_step"
	ReasonExternalEffect = "external_effect"
	ReasonPendingActive  = "pending_active"
)

// Decision is the gate outcome for one proposed intent
type Decision struct {
	Allowed          bool   `json:"allowed"`
	RequiresConfirm  bool   `json:"requires_confirm"`
	BlockReason      string `json:"block_reason,omitempty"`
	FallbackQuestion string `json:"fallback_question,omitempty"`
}

// whilePending is what the model may still author while a record awaits a decision
var whilePending = map[intent.Name]bool{
	intent.PendingReprompt:  true,
	intent.PendingStatus:    true,
	intent.CalendarToday:    true,
	intent.CalendarWeek:     true,
	intent.CalendarDate:     true,
	intent.CalendarFreebusy: true,
	intent.ThreadStatus:     true,
	intent.RemindStatus:     true,
	intent.Unknown:          true,
}

// AllowedWhilePending reports whether name passes rule 3
func AllowedWhilePending(name intent.Name) bool {
	return whilePending[name]
}

// forcesConfirm lists the families that are always confirmed, whatever the model said
func forcesConfirm(name intent.Name) bool {
	return name.Family() == "invite" || strings.Contains(string(name), "reschedule")
}

// Contained reports whether rules 1 or 2 always reject name: confirm steps
// and intents with an external effect
func Contained(name intent.Name) bool {
	return name.IsConfirmStep() || intent.EffectOf(name) == intent.EffectExternal
}

// Evaluate applies the rules in order; the first rejection wins
func Evaluate(name intent.Name, active *pending.State, requiresConfirm bool) Decision {
	if name.IsConfirmStep() {
		return Decision{
			BlockReason:      ReasonConfirmStep,
			FallbackQuestion: "確定の操作はこちらからは実行できません。もう一度、何をしたいか教えてください。",
		}
	}
	if intent.EffectOf(name) == intent.EffectExternal {
		desc := string(name)
		if e, ok := intent.Lookup(name); ok {
			desc = e.Description
		}
		return Decision{
			BlockReason:      ReasonExternalEffect,
			FallbackQuestion: fmt.Sprintf("「%s」を行いますか? 「はい」か「いいえ」で答えてください。", desc),
		}
	}
	if active != nil && !AllowedWhilePending(name) {
		q := "先に保留中の確認に答えてください。"
		if active.Summary != "" {
			q += " " + active.Summary
		}
		return Decision{BlockReason: ReasonPendingActive, FallbackQuestion: q}
	}
	return Decision{
		Allowed:         true,
		RequiresConfirm: requiresConfirm || forcesConfirm(name),
	}
}
