package intent

import (
	"sort"
	"strings"
)

// VocabularyVersion changes whenever an intent is added, removed or reclassified.
const VocabularyVersion = "2026.10.1"

// Name is a hierarchical dotted intent identifier
type Name string

func (n Name) String() string { return string(n) }

// IsConfirmStep reports whether n names the confirmation step of a gated flow
func (n Name) IsConfirmStep() bool {
	return strings.HasSuffix(string(n), ".confirm")
}

// Family returns the first segment of the dotted name
func (n Name) Family() string {
	s := string(n)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// SideEffect classifies what executing an intent does to the outside world
type SideEffect string

const (
	EffectNone          SideEffect = "none"
	EffectRead          SideEffect = "read"
	EffectInternalWrite SideEffect = "internal_write"
	EffectExternal      SideEffect = "external" // email, SMS, invites
)

// Decisions on pending records
const (
	RemindSendConfirm      Name = "remind.send.confirm"
	RemindSendCancel       Name = "remind.send.cancel"
	RemindSendChangeThread Name = "remind.send.change_thread"

	InviteSendConfirm Name = "invite.send.confirm"
	InviteSendCancel  Name = "invite.send.cancel"

	FinalizeConfirm Name = "schedule.finalize.confirm"
	FinalizeCancel  Name = "schedule.finalize.cancel"

	RescheduleConfirm Name = "schedule.reschedule.confirm"
	RescheduleCancel  Name = "schedule.reschedule.cancel"

	PreferenceChangeConfirm Name = "preference.change.confirm"
	PreferenceChangeCancel  Name = "preference.change.cancel"

	PoolBookConfirm Name = "pool.book.confirm"
	PoolBookCancel  Name = "pool.book.cancel"

	RelationRequestConfirm Name = "relation.request.confirm"
	RelationRequestCancel  Name = "relation.request.cancel"

	ThreadCloseConfirm Name = "thread.close.confirm"
	ThreadCloseCancel  Name = "thread.close.cancel"

	ContactImportConfirm       Name = "contact.import.confirm"
	ContactImportCancel        Name = "contact.import.cancel"
	ContactImportSelect        Name = "contact.import.select"
	ContactImportSkipAmbiguous Name = "contact.import.skip_ambiguous"

	PersonSelect       Name = "person.select"
	PersonSelectCancel Name = "person.select.cancel"

	ContactEmailProvide Name = "contact.email.provide"

	VoteSplitAccept        Name = "vote.split.accept"
	VoteSplitDecline       Name = "vote.split.decline"
	NotifyConfirmedAccept  Name = "notify.confirmed.accept"
	NotifyConfirmedDecline Name = "notify.confirmed.decline"
	RemindFollowupAccept   Name = "remind.followup.accept"
	RemindFollowupDecline  Name = "remind.followup.decline"

	PendingReprompt Name = "pending.reprompt"
)

// Topic intents
const (
	ThreadList   Name = "thread.list"
	ThreadStatus Name = "thread.status"
	ThreadSelect Name = "thread.select"
	ThreadClose  Name = "thread.close"
	ThreadReopen Name = "thread.reopen"

	ContactList   Name = "contact.list"
	ScheduleList  Name = "schedule.list"
	PendingStatus Name = "pending.status"

	CalendarToday    Name = "calendar.today"
	CalendarWeek     Name = "calendar.week"
	CalendarDate     Name = "calendar.date"
	CalendarFreebusy Name = "calendar.freebusy"

	ContactImportPreview Name = "contact.import.preview"

	OneOnOneCreate Name = "schedule.oneonone.create"

	RemindCreate Name = "remind.create"
	RemindStatus Name = "remind.status"

	PoolCreate Name = "pool.create"
	PoolBook   Name = "pool.book"
	PoolList   Name = "pool.list"

	RelationRequest Name = "relation.request"
	RelationList    Name = "relation.list"

	PreferenceSet  Name = "preference.set"
	PreferenceShow Name = "preference.show"

	ScheduleFinalize   Name = "schedule.finalize"
	ScheduleReschedule Name = "schedule.reschedule"
	InviteSend         Name = "invite.send"
	InviteDraft        Name = "invite.draft"

	Help    Name = "help"
	Unknown Name = "unknown"
)

// Entry describes one vocabulary item
type Entry struct {
	Name        Name       `json:"name"`
	Effect      SideEffect `json:"side_effect"`
	AIAllowed   bool       `json:"ai_allowed"`
	Description string     `json:"description"`
}

var catalog = map[Name]Entry{}

func register(name Name, effect SideEffect, aiAllowed bool, description string) {
	catalog[name] = Entry{Name: name, Effect: effect, AIAllowed: aiAllowed, Description: description}
}

func init() {
	register(RemindSendConfirm, EffectExternal, false, "send the pending reminder")
	register(RemindSendCancel, EffectNone, false, "discard the pending reminder")
	register(RemindSendChangeThread, EffectNone, false, "pick a different thread for the reminder")
	register(InviteSendConfirm, EffectExternal, false, "send the pending invitation")
	register(InviteSendCancel, EffectNone, false, "discard the pending invitation")
	register(FinalizeConfirm, EffectExternal, false, "confirm the selected slot and notify participants")
	register(FinalizeCancel, EffectNone, false, "keep the schedule open")
	register(RescheduleConfirm, EffectExternal, false, "apply the proposed reschedule")
	register(RescheduleCancel, EffectNone, false, "keep the current schedule")
	register(PreferenceChangeConfirm, EffectInternalWrite, false, "apply the preference change")
	register(PreferenceChangeCancel, EffectNone, false, "keep the current preference")
	register(PoolBookConfirm, EffectInternalWrite, false, "book the pool slot")
	register(PoolBookCancel, EffectNone, false, "release the pool slot")
	register(RelationRequestConfirm, EffectExternal, false, "send the relationship request")
	register(RelationRequestCancel, EffectNone, false, "discard the relationship request")
	register(ThreadCloseConfirm, EffectInternalWrite, false, "close the thread")
	register(ThreadCloseCancel, EffectNone, false, "keep the thread open")
	register(ContactImportConfirm, EffectInternalWrite, false, "write the previewed contacts")
	register(ContactImportCancel, EffectNone, false, "discard the contact import")
	register(ContactImportSelect, EffectNone, false, "resolve one ambiguous contact")
	register(ContactImportSkipAmbiguous, EffectInternalWrite, false, "write the import treating ambiguous entries as new")
	register(PersonSelect, EffectNone, false, "pick one of several matching people")
	register(PersonSelectCancel, EffectNone, false, "abandon the person selection")
	register(ContactEmailProvide, EffectNone, false, "supply an email for an unknown person")
	register(VoteSplitAccept, EffectExternal, false, "accept the split-vote proposal")
	register(VoteSplitDecline, EffectNone, false, "decline the split-vote proposal")
	register(NotifyConfirmedAccept, EffectExternal, false, "notify participants of the confirmed schedule")
	register(NotifyConfirmedDecline, EffectNone, false, "skip the confirmation notice")
	register(RemindFollowupAccept, EffectExternal, false, "remind participants who have not answered")
	register(RemindFollowupDecline, EffectNone, false, "skip the follow-up reminder")
	register(PendingReprompt, EffectNone, true, "restate what the thread is waiting for")

	register(ThreadList, EffectRead, true, "list scheduling threads")
	register(ThreadStatus, EffectRead, true, "show the answer status of a thread")
	register(ThreadSelect, EffectNone, true, "switch the selected thread")
	register(ThreadClose, EffectNone, true, "ask to close a thread")
	register(ThreadReopen, EffectInternalWrite, true, "reopen a closed thread")
	register(ContactList, EffectRead, true, "list contacts")
	register(ScheduleList, EffectRead, true, "list confirmed schedules")
	register(PendingStatus, EffectRead, true, "show what is awaiting a decision")
	register(CalendarToday, EffectRead, true, "show today's events")
	register(CalendarWeek, EffectRead, true, "show this week's events")
	register(CalendarDate, EffectRead, true, "show events on a date")
	register(CalendarFreebusy, EffectRead, true, "show free time")
	register(ContactImportPreview, EffectNone, true, "preview a batch of contacts to import")
	register(OneOnOneCreate, EffectNone, true, "start a one-on-one scheduling thread")
	register(RemindCreate, EffectNone, true, "prepare a reminder for a thread")
	register(RemindStatus, EffectRead, true, "show reminder history")
	register(PoolCreate, EffectInternalWrite, true, "create a booking pool")
	register(PoolBook, EffectNone, true, "ask to book a pool slot")
	register(PoolList, EffectRead, true, "list booking pools")
	register(RelationRequest, EffectNone, true, "prepare a relationship request")
	register(RelationList, EffectRead, true, "list relationships")
	register(PreferenceSet, EffectNone, true, "propose a preference change")
	register(PreferenceShow, EffectRead, true, "show preferences")
	register(ScheduleFinalize, EffectNone, true, "ask to confirm one slot")
	register(ScheduleReschedule, EffectNone, true, "propose new slots for a thread")
	register(InviteSend, EffectExternal, false, "send invitations now")
	register(InviteDraft, EffectNone, true, "draft an invitation without sending")
	register(Help, EffectNone, true, "describe available commands")
	register(Unknown, EffectNone, true, "not understood")
}

// Lookup returns the catalog entry for name
func Lookup(name Name) (Entry, bool) {
	e, ok := catalog[name]
	return e, ok
}

// EffectOf returns the side-effect class of name. Unknown names are treated as external.
func EffectOf(name Name) SideEffect {
	if e, ok := catalog[name]; ok {
		return e.Effect
	}
	return EffectExternal
}

// Catalog returns every entry sorted by name
func Catalog() []Entry {
	entries := make([]Entry, 0, len(catalog))
	for _, e := range catalog {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// AIAllowList returns the names the generative model may propose
func AIAllowList() []Name {
	var names []Name
	for _, e := range Catalog() {
		if e.AIAllowed {
			names = append(names, e.Name)
		}
	}
	return names
}
