package classifier

import (
	"time"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/pending"
)

var schedulingVerbs = []string{
	"調整", "打ち合わせ", "打合せ", "ミーティング", "面談", "入れて", "設定して", "候補", "招待",
	"meeting", "meet ", "book", "invite", "set up", "arrange",
}

// calendarRead answers questions about the user's own calendar
type calendarRead struct{}

func (calendarRead) Name() string { return "calendar_read" }

func (calendarRead) Classify(in Input, ctx Context, _ *pending.State) *intent.Result {
	if in.has(schedulingVerbs...) {
		return nil
	}
	frag := in.fragments(ctx.Now)
	calWord := in.has("予定", "スケジュール", "カレンダー", "calendar", "schedule", "events", "what do i have", "what's on")
	nextWeek := in.has("来週", "next week")
	thisWeek := in.has("今週", "this week")
	weekOnly := len(frag.Dates) == 0 && (nextWeek || thisWeek)

	if in.has("空いて", "空き", "free", "available", "busy") && len(frag.Persons) == 0 {
		p := intent.CalendarParams{Range: "day"}
		switch {
		case len(frag.Dates) > 0:
			p.Date = intent.DateString(frag.Dates[0].Date)
		case weekOnly && nextWeek:
			p.Range = "week"
			p.From, p.To = weekRange(extract.NextWeekday(ctx.Now, time.Monday))
		case weekOnly:
			p.Range = "week"
			p.From, p.To = weekRange(extract.StartOfWeek(ctx.Now))
		default:
			p.Date = intent.DateString(ctx.Now)
		}
		if p.Range == "day" && len(frag.Times) > 0 {
			p.From = frag.Times[0].Start
			p.To = frag.Times[0].To
		}
		return rule(intent.CalendarFreebusy, 0.85, p)
	}
	if !calWord {
		return nil
	}

	switch {
	case weekOnly && nextWeek:
		from, to := weekRange(extract.NextWeekday(ctx.Now, time.Monday))
		return rule(intent.CalendarWeek, 0.9, intent.CalendarParams{From: from, To: to, Range: "week"})
	case weekOnly:
		from, to := weekRange(extract.StartOfWeek(ctx.Now))
		return rule(intent.CalendarWeek, 0.9, intent.CalendarParams{From: from, To: to, Range: "week"})
	case len(frag.Dates) == 1 && frag.Dates[0].Date.Equal(extract.StartOfDay(ctx.Now)) && len(frag.Persons) == 0:
		return rule(intent.CalendarToday, 0.95, intent.CalendarParams{Date: intent.DateString(ctx.Now), Range: "day"})
	case len(frag.Dates) > 0 && len(frag.Persons) == 0:
		return rule(intent.CalendarDate, 0.9, intent.CalendarParams{Date: intent.DateString(frag.Dates[0].Date), Range: "day"})
	case len(frag.Dates) == 0 && len(frag.Persons) == 0:
		// a bare "予定は?" most likely means today, but the model may know better
		return rule(intent.CalendarToday, 0.4, intent.CalendarParams{Date: intent.DateString(ctx.Now), Range: "day"})
	}
	return nil
}
