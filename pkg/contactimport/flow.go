package contactimport

import (
	"fmt"
	"strings"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/lexicon"
	"ai-scheduler-be/pkg/pending"
)

const (
	msgPreviewOptions = "「はい」で登録、「キャンセル」で中止します。要確認の連絡先をまとめて新規登録する場合は「あいまいをスキップ」と送ってください。"
	msgSelectOptions  = "番号で既存の連絡先を更新、「0」または「新規」で新規登録、「スキップ」で除外します。"
	msgNothingToWrite = "登録する連絡先がないため、取り込みを終了しました。"
)

// Decide handles a reply while an import preview or per-entry selection is
// pending. It never falls through: unrecognised replies re-prompt. Returns nil
// when state is not an import record.
func Decide(norm string, state *pending.State) *intent.Result {
	switch p := state.Payload.(type) {
	case pending.ContactImportPreview:
		return decidePreview(norm, state, p)
	case pending.ContactImportSelection:
		return decideSelection(norm, state, p)
	}
	return nil
}

func decidePreview(norm string, state *pending.State, p pending.ContactImportPreview) *intent.Result {
	unresolved := p.Unresolved()
	switch {
	case lexicon.SkipAmbiguous.Contains(norm):
		return commitResult(intent.ContactImportSkipAmbiguous, state, p.Entries, true)
	case lexicon.IsNo(norm):
		return cancelResult(state)
	case lexicon.IsYes(norm) && len(unresolved) == 0:
		return commitResult(intent.ContactImportConfirm, state, p.Entries, false)
	case lexicon.IsYes(norm):
		// plain yes with ambiguity left walks the user through each entry
		next := unresolved[0]
		res := intent.NewClarify(intent.ContactImportConfirm, 1, Params(p.Entries, false), "ambiguous",
			fmt.Sprintf("要確認の連絡先が%d件あります。%s", len(unresolved), selectionPrompt(p.Entries[next])))
		res.NextPending = selectionState(state.ThreadID, p.Entries, next)
		return res
	}
	if len(unresolved) > 0 {
		if res := applyChoice(norm, state, p.Entries, unresolved[0]); res != nil {
			return res
		}
	}
	return reprompt(state, p.Entries, msgPreviewOptions)
}

func decideSelection(norm string, state *pending.State, s pending.ContactImportSelection) *intent.Result {
	switch {
	case lexicon.SkipAmbiguous.Contains(norm):
		return commitResult(intent.ContactImportSkipAmbiguous, state, s.Entries, true)
	case lexicon.IsNo(norm):
		return cancelResult(state)
	}
	if res := applyChoice(norm, state, s.Entries, s.EntryIndex); res != nil {
		return res
	}
	if s.EntryIndex >= 0 && s.EntryIndex < len(s.Entries) {
		return reprompt(state, s.Entries, selectionPrompt(s.Entries[s.EntryIndex]))
	}
	return reprompt(state, s.Entries, msgSelectOptions)
}

// applyChoice resolves entries[idx] from a reply, or returns nil when the
// reply is not a choice
func applyChoice(norm string, state *pending.State, entries []pending.ImportEntry, idx int) *intent.Result {
	if idx < 0 || idx >= len(entries) {
		return nil
	}
	entry := entries[idx]

	var choice string
	switch k, ok := lexicon.Index(norm); {
	case lexicon.NewEntry.Exact(norm) || (ok && k == 0):
		entry.Resolution, entry.ResolvedID, choice = pending.ResolutionCreate, "", "new"
	case lexicon.Skip.Exact(norm):
		entry.Resolution, entry.ResolvedID, choice = pending.ResolutionSkip, "", "skip"
	case ok && k >= 1 && k <= len(entry.Candidates):
		entry.Resolution, entry.ResolvedID, choice = pending.ResolutionUpdate, entry.Candidates[k-1].ID, fmt.Sprint(k)
	case ok:
		return reprompt(state, entries, fmt.Sprintf("1〜%dの番号を選んでください。%s", len(entry.Candidates), msgSelectOptions))
	default:
		return nil
	}

	updated := make([]pending.ImportEntry, len(entries))
	copy(updated, entries)
	updated[idx] = entry

	params := Params(updated, false)
	params.EntryIndex = idx + 1
	params.Choice = choice
	res := &intent.Result{
		Intent:     intent.ContactImportSelect,
		Confidence: 1,
		Params:     params,
		Source:     intent.SourceRule,
	}
	if left := (pending.ContactImportPreview{Entries: updated}).Unresolved(); len(left) > 0 {
		res.NextPending = selectionState(state.ThreadID, updated, left[0])
	} else {
		res.NextPending = &pending.State{
			ThreadID: state.ThreadID,
			Summary:  Summary(updated) + " この内容で登録しますか?",
			Payload:  pending.ContactImportPreview{Entries: updated},
		}
		res.RequiresConfirm = true
	}
	return res
}

func selectionState(thread string, entries []pending.ImportEntry, idx int) *pending.State {
	return &pending.State{
		ThreadID: thread,
		Summary:  selectionPrompt(entries[idx]),
		Payload:  pending.ContactImportSelection{Entries: entries, EntryIndex: idx},
	}
}

func selectionPrompt(e pending.ImportEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "「%s <%s>」は既存の連絡先と重複しています。", e.Name, e.Email)
	for i, c := range e.Candidates {
		fmt.Fprintf(&b, " %d) %s", i+1, c.Name)
		if c.Email != "" {
			fmt.Fprintf(&b, " <%s>", c.Email)
		}
	}
	b.WriteString(" ")
	b.WriteString(msgSelectOptions)
	return b.String()
}

// commitResult consumes the record for a write. When the choices leave
// nothing to write the record is cleared instead, so no empty batch is ever
// committed.
func commitResult(name intent.Name, state *pending.State, entries []pending.ImportEntry, skipAmbiguous bool) *intent.Result {
	if len(plan(entries, skipAmbiguous)) == 0 {
		return &intent.Result{
			Intent:     intent.ContactImportCancel,
			Confidence: 1,
			Params: intent.DecisionParams{
				PendingKind: string(state.Kind()),
				Decision:    "nothing_to_import",
				ThreadID:    state.ThreadID,
				Summary:     msgNothingToWrite,
			},
			Source:        intent.SourceRule,
			ClearPending:  true,
			PendingThread: state.ThreadID,
		}
	}
	params := Params(entries, skipAmbiguous)
	params.Token = state.Token
	return &intent.Result{
		Intent:        name,
		Confidence:    1,
		Params:        params,
		Source:        intent.SourceRule,
		ConsumeToken:  state.Token,
		PendingThread: state.ThreadID,
	}
}

func cancelResult(state *pending.State) *intent.Result {
	return &intent.Result{
		Intent:        intent.ContactImportCancel,
		Confidence:    1,
		Params:        intent.DecisionParams{PendingKind: string(state.Kind()), Decision: "cancel", ThreadID: state.ThreadID},
		Source:        intent.SourceRule,
		ClearPending:  true,
		PendingThread: state.ThreadID,
	}
}

func reprompt(state *pending.State, entries []pending.ImportEntry, message string) *intent.Result {
	return intent.NewClarify(intent.PendingReprompt, 1, intent.DecisionParams{
		PendingKind: string(state.Kind()),
		ThreadID:    state.ThreadID,
		Summary:     Summary(entries),
	}, "decision", message)
}
