package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/intent/lexicon"
	"ai-scheduler-be/pkg/pending"
)

type contactImport struct{}

func (contactImport) Name() string { return "contact_import" }

func (contactImport) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	if !contactimport.IsCommand(in.Folded) {
		return nil
	}
	return contactimport.NewPreview(in.Folded, ctx.Contacts, ctx.PendingKey())
}

type poolBooking struct{}

func (poolBooking) Name() string { return "pool_booking" }

func (poolBooking) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	if !in.has("プール", "pool") {
		return nil
	}
	frag := in.fragments(ctx.Now)
	name := quoted(in)
	slots := toSlots(frag.Slots)

	switch {
	case in.has("作成", "作って", "作りたい", "create", "new pool", "make a pool", "set up"):
		return rule(intent.PoolCreate, 0.9, intent.PoolParams{PoolName: name, Slots: slots, DurationMinutes: frag.Minutes()})

	case in.has("予約", "申し込", "book", "reserve"):
		params := intent.PoolParams{PoolName: name, Slots: slots, DurationMinutes: frag.Minutes()}
		switch len(slots) {
		case 0:
			return clarify(intent.PoolBook, 0.8, params, "slot", "予約したい日時を教えてください。")
		case 1:
			return gated(intent.PoolBook, 0.9, params, &pending.State{
				ThreadID: ctx.PendingKey(),
				Summary:  fmt.Sprintf("%s %s の枠を予約しますか?", slots[0].Date, slots[0].Start),
				Payload:  pending.PoolBookingConfirm{PoolName: name, Slot: pendingSlot(slots[0])},
			})
		default:
			return clarify(intent.PoolBook, 0.8, params, "slot", "予約する枠を1つに絞ってください。")
		}
	}
	return nil
}

type reminder struct{}

func (reminder) Name() string { return "reminder" }

func (reminder) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	if !in.has("リマインド", "remind", "催促", "督促", "nudge") {
		return nil
	}
	id, ok := threadRef(in, ctx)
	if in.has("履歴", "状況", "status", "history", "送った") {
		return rule(intent.RemindStatus, 0.9, intent.ReminderParams{ThreadID: id})
	}
	target, label := "unanswered", "未回答者"
	if in.has("全員", "みんな", "everyone", "all participants") {
		target, label = "all", "全員"
	}
	params := intent.ReminderParams{ThreadID: id, Target: target, Message: quoted(in)}
	if !ok {
		return clarify(intent.RemindCreate, 0.8, params, "thread_id", "どのスレッドの参加者にリマインドしますか?")
	}
	return gated(intent.RemindCreate, 0.9, params, &pending.State{
		ThreadID: ctx.PendingKey(),
		Summary:  "スレッド" + id + "の" + label + "にリマインドを送りますか?",
		Payload:  pending.RemindConfirm{TargetThreadID: id, Message: params.Message},
	})
}

var relationKinds = []struct {
	relation string
	words    []string
}{
	{"family", []string{"家族", "family"}},
	{"partner", []string{"パートナー", "恋人", "partner"}},
	{"colleague", []string{"同僚", "仕事仲間", "colleague", "coworker"}},
}

type relationship struct{}

func (relationship) Name() string { return "relationship" }

func (relationship) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	relation := ""
	for _, k := range relationKinds {
		if in.has(k.words...) {
			relation = k.relation
			break
		}
	}
	requested := in.has("関係", "つながり", "relationship", "connect with") ||
		(relation != "" && in.has("申請", "リクエスト", "request", "として登録", "として追加", "add as", "になりたい"))
	if !requested {
		return nil
	}
	if relation == "" {
		relation = "colleague"
	}

	frag := in.fragments(ctx.Now)
	params := intent.RelationParams{Relation: relation}
	if len(frag.Persons) > 0 {
		params.Name = frag.Persons[0].Name
	}
	if len(frag.Emails) == 0 {
		return clarify(intent.RelationRequest, 0.8, params, "email", "関係を申請する相手のメールアドレスを教えてください。")
	}
	params.Email = frag.Emails[0].Address
	return gated(intent.RelationRequest, 0.9, params, &pending.State{
		ThreadID: ctx.PendingKey(),
		Summary:  params.Email + " に関係リクエスト(" + relation + ")を送りますか?",
		Payload:  pending.RelationshipConfirm{Email: params.Email, Name: params.Name, Relation: relation},
	})
}

var reTimezone = regexp.MustCompile(`(?i)\b([a-z]+/[a-z_]+|utc[+-]?[0-9]{0,2}|gmt[+-]?[0-9]{0,2}|jst|pst|est|cet)\b`)

type preferences struct{}

func (preferences) Name() string { return "preferences" }

func (preferences) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	if !in.has("設定", "preference", "settings", "デフォルト", "default", "既定", "タイムゾーン", "timezone", "time zone",
		"勤務時間", "稼働時間", "営業時間", "working hours", "work hours", "バッファ", "buffer") {
		return nil
	}
	frag := in.fragments(ctx.Now)
	key, value := "", ""
	switch {
	case in.has("タイムゾーン", "timezone", "time zone"):
		if m := reTimezone.FindStringSubmatch(in.Folded); m != nil {
			key, value = "timezone", m[1]
		}
	case in.has("勤務時間", "稼働時間", "営業時間", "working hours", "work hours"):
		if len(frag.Times) > 0 && frag.Times[0].To != "" {
			key, value = "working_hours", frag.Times[0].Start+"-"+frag.Times[0].To
		}
	case in.has("バッファ", "buffer", "間隔"):
		if m := frag.Minutes(); m > 0 {
			key, value = "buffer_minutes", strconv.Itoa(m)
		}
	case frag.Minutes() > 0:
		key, value = "default_duration", strconv.Itoa(frag.Minutes())
	}

	if key == "" {
		if in.has("見せて", "確認", "表示", "教えて", "show", "what are", "current") {
			return rule(intent.PreferenceShow, 0.9, intent.PreferenceParams{})
		}
		return clarify(intent.PreferenceSet, 0.7, intent.PreferenceParams{}, "preference",
			"変更したい設定と値を教えてください(例: デフォルトの長さを30分に)。")
	}
	params := intent.PreferenceParams{Key: key, Value: value}
	return gated(intent.PreferenceSet, 0.9, params, &pending.State{
		ThreadID: ctx.PendingKey(),
		Summary:  key + " を " + value + " に変更しますか?",
		Payload:  pending.PreferenceChange{Key: key, Value: value},
	})
}

var reSlotIndex = regexp.MustCompile(`(?:候補|案|option|slot|#)\s*([0-9]{1,2})|([0-9]{1,2})\s*(?:番目|番|つ目)`)

// scheduleOps covers finalize, reschedule and invitations on an existing thread
type scheduleOps struct{}

func (scheduleOps) Name() string { return "schedule_ops" }

func (scheduleOps) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	frag := in.fragments(ctx.Now)
	switch {
	case in.has("確定", "決定", "finalize", "で決まり", "決めて", "lock in", "go with"):
		return finalize(in, ctx, frag)
	case in.has("リスケ", "日程変更", "変更したい", "変更して", "reschedule", "move the meeting", "move it", "ずらし", "延期"):
		return reschedule(ctx, frag)
	case in.has("招待", "invite", "案内を送", "招待状"):
		return invite(in, ctx, frag)
	}
	return nil
}

func finalize(in Input, ctx Context, frag extract.Fragments) *intent.Result {
	params := intent.ScheduleParams{ThreadID: ctx.ThreadID}
	if m := reSlotIndex.FindStringSubmatch(in.Norm); m != nil {
		n := m[1]
		if n == "" {
			n = m[2]
		}
		params.SlotIndex, _ = strconv.Atoi(n)
	} else if k, ok := lexicon.Index(strings.TrimSuffix(strings.TrimSuffix(in.Norm, "で確定"), "に決定")); ok && k > 0 {
		params.SlotIndex = k
	}
	params.Slots = toSlots(frag.Slots)

	if ctx.ThreadID == "" {
		return clarify(intent.ScheduleFinalize, 0.8, params, "thread_id", "どのスレッドの日程を確定しますか?")
	}
	var slot pending.Slot
	switch {
	case params.SlotIndex > 0:
	case len(params.Slots) == 1:
		slot = pendingSlot(params.Slots[0])
	default:
		return clarify(intent.ScheduleFinalize, 0.8, params, "slot_index", "確定する候補の番号を教えてください。")
	}
	summary := fmt.Sprintf("候補%dで確定して参加者に通知しますか?", params.SlotIndex)
	if params.SlotIndex == 0 {
		summary = fmt.Sprintf("%s %s で確定して参加者に通知しますか?", slot.Date, slot.Start)
	}
	return gated(intent.ScheduleFinalize, 0.9, params, &pending.State{
		ThreadID: ctx.PendingKey(),
		Summary:  summary,
		Payload:  pending.FinalizeConfirm{SlotIndex: params.SlotIndex, Slot: slot},
	})
}

func reschedule(ctx Context, frag extract.Fragments) *intent.Result {
	params := intent.ScheduleParams{ThreadID: ctx.ThreadID, Slots: toSlots(frag.Slots), DurationMinutes: frag.Minutes()}
	if ctx.ThreadID == "" {
		return clarify(intent.ScheduleReschedule, 0.8, params, "thread_id", "どのスレッドの日程を変更しますか?")
	}
	if len(params.Slots) == 0 {
		return clarify(intent.ScheduleReschedule, 0.8, params, "slots", slotQuestion(frag))
	}
	return gated(intent.ScheduleReschedule, 0.9, params, &pending.State{
		ThreadID: ctx.PendingKey(),
		Summary:  fmt.Sprintf("新しい候補%d件で日程を変更しますか?", len(params.Slots)),
		Payload:  pending.RescheduleConfirm{Slots: pendingSlots(params.Slots)},
	})
}

func invite(in Input, ctx Context, frag extract.Fragments) *intent.Result {
	params := intent.ScheduleParams{ThreadID: ctx.ThreadID, Slots: toSlots(frag.Slots), Title: quoted(in)}
	for _, e := range frag.Emails {
		params.Recipients = append(params.Recipients, e.Address)
	}
	if in.has("下書き", "draft") {
		return rule(intent.InviteDraft, 0.9, params)
	}
	if len(params.Recipients) == 0 {
		return clarify(intent.InviteSend, 0.8, params, "email", "招待を送る相手のメールアドレスを教えてください。")
	}
	return gated(intent.InviteSend, 0.9, params, &pending.State{
		ThreadID: ctx.PendingKey(),
		Summary:  strings.Join(params.Recipients, ", ") + " に招待を送信しますか?",
		Payload:  pending.InviteConfirm{Recipients: params.Recipients, Slots: pendingSlots(params.Slots)},
	})
}

// slotQuestion explains why no candidate slots came out of the text
func slotQuestion(frag extract.Fragments) string {
	nd, nt := len(frag.Dates), len(frag.Times)
	switch {
	case nd == 0 && nt == 0:
		return "候補の日時を教えてください(例: 1/28 14:00)。"
	case nt == 0:
		return "開始時刻を教えてください。"
	case nd == 0:
		return "日付を教えてください。"
	}
	return fmt.Sprintf("日付%d件と時刻%d件の組み合わせが判断できません。日付ごとに時刻を指定してください。", nd, nt)
}

var meetingWords = []string{
	"打ち合わせ", "打合せ", "ミーティング", "面談", "会議", "1on1", "1 on 1", "one on one", "日程調整",
	"調整して", "meeting", "meet", "sync", "call", "mtg", "ランチ", "lunch", "予定を入れ", "アポ", "schedule",
}

// oneOnOne starts a scheduling thread with a single person
type oneOnOne struct{}

func (oneOnOne) Name() string { return "one_on_one" }

func (oneOnOne) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	frag := in.fragments(ctx.Now)
	hasWho := len(frag.Persons) > 0 || len(frag.Emails) > 0
	trigger := in.has(meetingWords...)
	if !trigger && !(hasWho && len(frag.Slots) > 0) {
		return nil
	}

	confidence := 0.9
	if !trigger {
		confidence = 0.7
	}
	params := intent.ScheduleParams{
		Slots:           toSlots(frag.Slots),
		DurationMinutes: frag.Minutes(),
		ThreadID:        ctx.ThreadID,
		Title:           quoted(in),
	}

	if !hasWho {
		return clarify(intent.OneOnOneCreate, 0.8, params, "person", "誰との予定を調整しますか?")
	}
	if len(frag.Emails) > 0 {
		params.Person = &intent.Person{Email: frag.Emails[0].Address}
		if len(frag.Persons) > 0 {
			params.Person.Name = frag.Persons[0].Name
		}
	} else {
		name := frag.Persons[0].Name
		r := extract.Resolve(name, ctx.Contacts)
		switch r.Status {
		case extract.ResolvedSingle:
			params.Person = &intent.Person{Name: r.Match.Name, Email: r.Match.Email, Contact: r.Match.ID}
		case extract.ResolvedMany:
			sel := pending.PersonSelection{
				Queries:         []string{name},
				Candidates:      contactRefs(r.Candidates),
				ResumeIntent:    string(intent.OneOnOneCreate),
				Slots:           pendingSlots(params.Slots),
				DurationMinutes: params.DurationMinutes,
			}
			params.Person = &intent.Person{Name: name}
			res := clarify(intent.OneOnOneCreate, 0.8, params, "person", candidatePrompt(sel))
			res.NextPending = &pending.State{ThreadID: ctx.PendingKey(), Summary: candidatePrompt(sel), Payload: sel}
			return res
		default:
			params.Person = &intent.Person{Name: name}
			msg := fmt.Sprintf("「%s」さんは連絡先にありません。メールアドレスを教えてください。", name)
			res := clarify(intent.OneOnOneCreate, 0.8, params, "email", msg)
			res.NextPending = &pending.State{
				ThreadID: ctx.PendingKey(),
				Summary:  msg,
				Payload: pending.EmailRequest{
					Name:            name,
					ResumeIntent:    string(intent.OneOnOneCreate),
					Slots:           pendingSlots(params.Slots),
					DurationMinutes: params.DurationMinutes,
				},
			}
			return res
		}
	}

	if len(params.Slots) == 0 {
		return clarify(intent.OneOnOneCreate, 0.8, params, "slots", slotQuestion(frag))
	}
	return rule(intent.OneOnOneCreate, confidence, params)
}

type help struct{}

func (help) Name() string { return "help" }

func (help) Classify(in Input, _ Context, _ *pending.State) *intent.Result {
	// a message of bare punctuation, such as "?", asks for help too
	if (in.Norm != "" && lexicon.Trim(in.Norm) == "") ||
		in.has("help", "ヘルプ", "使い方", "何ができ", "できること", "コマンド", "how do i", "what can you") {
		return rule(intent.Help, 0.9, nil)
	}
	return nil
}
