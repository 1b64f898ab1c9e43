package classifier

import (
	"fmt"
	"strings"

	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/intent/lexicon"
	"ai-scheduler-be/pkg/pending"
)

type decisionPair struct {
	confirm intent.Name
	cancel  intent.Name
	accepts string
}

const yesNo = "「はい」か「いいえ」で答えてください。"

var confirmationDecisions = map[pending.Kind]decisionPair{
	pending.KindInviteConfirm:       {intent.InviteSendConfirm, intent.InviteSendCancel, "「送信」か「キャンセル」で答えてください。"},
	pending.KindFinalizeConfirm:     {intent.FinalizeConfirm, intent.FinalizeCancel, yesNo},
	pending.KindRescheduleConfirm:   {intent.RescheduleConfirm, intent.RescheduleCancel, yesNo},
	pending.KindPreferenceChange:    {intent.PreferenceChangeConfirm, intent.PreferenceChangeCancel, yesNo},
	pending.KindPoolBookingConfirm:  {intent.PoolBookConfirm, intent.PoolBookCancel, yesNo},
	pending.KindRelationshipConfirm: {intent.RelationRequestConfirm, intent.RelationRequestCancel, yesNo},
	pending.KindThreadCloseConfirm:  {intent.ThreadCloseConfirm, intent.ThreadCloseCancel, yesNo},
}

// pendingDecision owns every confirmation kind. While one is active nothing
// else may classify: anything outside the accepted words re-prompts.
type pendingDecision struct{}

func (pendingDecision) Name() string { return "pending_decision" }

func (pendingDecision) Classify(in Input, _ Context, active *pending.State) *intent.Result {
	if active == nil || !active.Kind().IsConfirmation() {
		return nil
	}
	if active.Kind() == pending.KindRemindConfirm {
		switch {
		case lexicon.DifferentThread.Contains(in.Norm):
			return dismissed(intent.RemindSendChangeThread, active, "change_thread")
		case lexicon.IsNo(in.Norm):
			return dismissed(intent.RemindSendCancel, active, "cancel")
		case lexicon.IsSend(in.Norm):
			return confirmed(intent.RemindSendConfirm, active, "send")
		}
		return reprompt(active, "リマインドを送るには「送信」、やめるには「キャンセル」、宛先のスレッドを変えるには「別のスレッド」と送ってください。")
	}

	pair, ok := confirmationDecisions[active.Kind()]
	if !ok {
		return reprompt(active, yesNo)
	}
	switch {
	case lexicon.IsNo(in.Norm):
		return dismissed(pair.cancel, active, "cancel")
	case active.Kind() == pending.KindInviteConfirm && lexicon.IsSend(in.Norm):
		return confirmed(pair.confirm, active, "send")
	case lexicon.IsYes(in.Norm):
		return confirmed(pair.confirm, active, "confirm")
	}
	msg := pair.accepts
	if active.Summary != "" {
		msg = active.Summary + " " + msg
	}
	return reprompt(active, msg)
}

type contactImportPending struct{}

func (contactImportPending) Name() string { return "contact_import_pending" }

func (contactImportPending) Classify(in Input, _ Context, active *pending.State) *intent.Result {
	switch active.Kind() {
	case pending.KindContactImportPreview, pending.KindContactImportSelection:
		return contactimport.Decide(in.Norm, active)
	}
	return nil
}

// personSelection waits for the user to pick one of several directory matches
type personSelection struct{}

func (personSelection) Name() string { return "person_selection" }

func (personSelection) Classify(in Input, ctx Context, active *pending.State) *intent.Result {
	if active == nil {
		return nil
	}
	sel, ok := active.Payload.(pending.PersonSelection)
	if !ok || len(sel.Queries) == 0 {
		return nil
	}
	if lexicon.IsNo(in.Norm) {
		return dismissed(intent.PersonSelectCancel, active, "cancel")
	}

	pick := -1
	if k, ok := lexicon.Index(in.Norm); ok && k >= 1 && k <= len(sel.Candidates) {
		pick = k - 1
	} else if !ok {
		pick = candidateByName(in, sel.Candidates)
	}
	if pick < 0 {
		return reprompt(active, candidatePrompt(sel))
	}
	return advanceSelection(ctx, active, sel, pick)
}

func candidateByName(in Input, candidates []pending.ContactRef) int {
	found := -1
	for i, c := range candidates {
		if strings.Contains(strings.ToLower(c.Name), lexicon.Trim(in.Norm)) || strings.EqualFold(c.Email, lexicon.Trim(in.Norm)) {
			if found >= 0 {
				return -1
			}
			found = i
		}
	}
	return found
}

func candidatePrompt(sel pending.PersonSelection) string {
	var b strings.Builder
	query := ""
	if sel.Index < len(sel.Queries) {
		query = sel.Queries[sel.Index]
	}
	fmt.Fprintf(&b, "「%s」に該当する連絡先が複数あります。番号で選んでください:", query)
	for i, c := range sel.Candidates {
		fmt.Fprintf(&b, " %d) %s", i+1, c.Name)
		if c.Email != "" {
			fmt.Fprintf(&b, " <%s>", c.Email)
		}
	}
	return b.String()
}

// advanceSelection records the pick, resolves any remaining names, and either
// pauses on the next ambiguous one or hands back the resumed flow
func advanceSelection(ctx Context, active *pending.State, sel pending.PersonSelection, pick int) *intent.Result {
	chosen := sel.Candidates[pick]
	resolved := append(append([]pending.ContactRef(nil), sel.Resolved...), chosen)

	params := intent.PersonSelectParams{
		Query:    sel.Queries[min(sel.Index, len(sel.Queries)-1)],
		Selected: &intent.Person{Name: chosen.Name, Email: chosen.Email, Contact: chosen.ID},
		Index:    pick + 1,
	}
	for _, c := range sel.Candidates {
		params.Candidates = append(params.Candidates, intent.Person{Name: c.Name, Email: c.Email, Contact: c.ID})
	}

	for i := sel.Index + 1; i < len(sel.Queries); i++ {
		r := extract.Resolve(sel.Queries[i], ctx.Contacts)
		switch r.Status {
		case extract.ResolvedSingle:
			resolved = append(resolved, pending.ContactRef{ID: r.Match.ID, Name: r.Match.Name, Email: r.Match.Email})
			continue
		case extract.ResolvedMany:
			next := sel
			next.Index = i
			next.Resolved = resolved
			next.Candidates = contactRefs(r.Candidates)
			res := rule(intent.PersonSelect, 1, params)
			res.NextPending = &pending.State{ThreadID: active.ThreadID, Summary: candidatePrompt(next), Payload: next}
			return res
		default:
			res := rule(intent.PersonSelect, 1, params)
			res.NextPending = &pending.State{
				ThreadID: active.ThreadID,
				Summary:  fmt.Sprintf("「%s」のメールアドレスを教えてください。", sel.Queries[i]),
				Payload: pending.EmailRequest{
					Name:            sel.Queries[i],
					ResumeIntent:    sel.ResumeIntent,
					Slots:           sel.Slots,
					DurationMinutes: sel.DurationMinutes,
				},
			}
			return res
		}
	}

	resume := &intent.ScheduleParams{
		Slots:           fromPendingSlots(sel.Slots),
		DurationMinutes: sel.DurationMinutes,
		ResumeIntent:    intent.Name(sel.ResumeIntent),
	}
	first := resolved[0]
	resume.Person = &intent.Person{Name: first.Name, Email: first.Email, Contact: first.ID}
	for _, r := range resolved {
		if r.Email != "" {
			resume.Recipients = append(resume.Recipients, r.Email)
		}
	}
	params.Resume = resume

	res := dismissed(intent.PersonSelect, active, "select")
	res.Params = params
	return res
}

func contactRefs(cs []extract.Contact) []pending.ContactRef {
	out := make([]pending.ContactRef, len(cs))
	for i, c := range cs {
		out[i] = pending.ContactRef{ID: c.ID, Name: c.Name, Email: c.Email}
	}
	return out
}

// emailRequest takes an address for a person missing from the directory.
// Input without an address is left to the other classifiers.
type emailRequest struct{}

func (emailRequest) Name() string { return "email_request" }

func (emailRequest) Classify(in Input, _ Context, active *pending.State) *intent.Result {
	if active == nil {
		return nil
	}
	req, ok := active.Payload.(pending.EmailRequest)
	if !ok {
		return nil
	}
	email := extract.FirstEmail(in.Folded)
	if email == "" {
		return nil
	}
	res := dismissed(intent.ContactEmailProvide, active, "provide")
	res.Params = intent.ScheduleParams{
		Person:          &intent.Person{Name: req.Name, Email: email},
		Recipients:      []string{email},
		Slots:           fromPendingSlots(req.Slots),
		DurationMinutes: req.DurationMinutes,
		ResumeIntent:    intent.Name(req.ResumeIntent),
	}
	return res
}

// Fixed priority when a short yes/no could answer more than one record
var yesNoPriority = []struct {
	kind    pending.Kind
	accept  intent.Name
	decline intent.Name
}{
	{pending.KindSplitVoteProposal, intent.VoteSplitAccept, intent.VoteSplitDecline},
	{pending.KindConfirmedNotification, intent.NotifyConfirmedAccept, intent.NotifyConfirmedDecline},
	{pending.KindReminderFollowup, intent.RemindFollowupAccept, intent.RemindFollowupDecline},
}

// confirmCancel answers the soft proposals (split vote, confirmed notice,
// reminder follow-up) on either the thread or the global slot. The choice
// between them depends on kind priority only, never on the wording.
type confirmCancel struct{}

func (confirmCancel) Name() string { return "confirm_cancel" }

func (confirmCancel) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	yes, no := lexicon.IsYes(in.Norm), lexicon.IsNo(in.Norm)
	if !yes && !no {
		return nil
	}
	var records []*pending.State
	for _, s := range []*pending.State{ctx.ThreadPending, ctx.GlobalPending} {
		if s != nil && s.Payload != nil && !s.Expired(ctx.Now) {
			records = append(records, s)
		}
	}
	for _, p := range yesNoPriority {
		for _, s := range records {
			if s.Kind() != p.kind {
				continue
			}
			if yes {
				return confirmed(p.accept, s, "accept")
			}
			return dismissed(p.decline, s, "decline")
		}
	}
	return nil
}
