package classifier

import (
	"regexp"
	"strconv"
	"time"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/pending"
)

func rule(name intent.Name, confidence float64, params intent.Params) *intent.Result {
	return &intent.Result{Intent: name, Confidence: confidence, Params: params, Source: intent.SourceRule}
}

// gated is a rule result that must be confirmed before anything runs; the
// caller stores next and the following message decides
func gated(name intent.Name, confidence float64, params intent.Params, next *pending.State) *intent.Result {
	res := rule(name, confidence, params)
	res.RequiresConfirm = true
	res.NextPending = next
	return res
}

func clarify(name intent.Name, confidence float64, params intent.Params, field, message string) *intent.Result {
	return intent.NewClarify(name, confidence, params, field, message)
}

func decisionParams(active *pending.State, decision string) intent.DecisionParams {
	return intent.DecisionParams{
		PendingKind: string(active.Kind()),
		Decision:    decision,
		Token:       active.Token,
		ThreadID:    active.ThreadID,
		Summary:     active.Summary,
	}
}

// confirmed consumes the active record; the executor runs only if the
// token still matches when the caller consumes it
func confirmed(name intent.Name, active *pending.State, decision string) *intent.Result {
	res := rule(name, 1, decisionParams(active, decision))
	res.ConsumeToken = active.Token
	res.PendingThread = active.ThreadID
	return res
}

func dismissed(name intent.Name, active *pending.State, decision string) *intent.Result {
	res := rule(name, 1, decisionParams(active, decision))
	res.ClearPending = true
	res.PendingThread = active.ThreadID
	return res
}

func reprompt(active *pending.State, message string) *intent.Result {
	return clarify(intent.PendingReprompt, 1, decisionParams(active, ""), "decision", message)
}

func toSlots(slots []extract.Slot) []intent.Slot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]intent.Slot, len(slots))
	for i, s := range slots {
		out[i] = intent.Slot{Date: intent.DateString(s.Date), Start: s.Start, End: s.To}
	}
	return out
}

func pendingSlot(s intent.Slot) pending.Slot {
	return pending.Slot{Date: s.Date, Start: s.Start, End: s.End}
}

func pendingSlots(slots []intent.Slot) []pending.Slot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]pending.Slot, len(slots))
	for i, s := range slots {
		out[i] = pendingSlot(s)
	}
	return out
}

func fromPendingSlots(slots []pending.Slot) []intent.Slot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]intent.Slot, len(slots))
	for i, s := range slots {
		out[i] = intent.Slot{Date: s.Date, Start: s.Start, End: s.End}
	}
	return out
}

var (
	reThreadRef = regexp.MustCompile(`(?:スレッド|thread)\s*(?:#|no\.?)?\s*([0-9]+)|#([0-9]+)`)
	reQuoted    = regexp.MustCompile(`「([^」]+)」|"([^"]+)"`)
)

// threadRef returns an explicit thread number, else the selected thread
func threadRef(in Input, ctx Context) (string, bool) {
	if m := reThreadRef.FindStringSubmatch(in.Norm); m != nil {
		if m[1] != "" {
			return m[1], true
		}
		return m[2], true
	}
	return ctx.ThreadID, ctx.ThreadID != ""
}

func quoted(in Input) string {
	if m := reQuoted.FindStringSubmatch(in.Folded); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	return ""
}

func weekRange(start time.Time) (string, string) {
	return intent.DateString(start), intent.DateString(start.AddDate(0, 0, 6))
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
