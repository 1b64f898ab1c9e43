package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday
var monday = time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)

func dates(ms []DateMatch) []string {
	var out []string
	for _, m := range ms {
		out = append(out, m.Date.Format("2006-01-02"))
	}
	return out
}

func TestDates(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2)

	tests := []struct {
		name string
		text string
		now  time.Time
		want []string
	}{
		{name: "today ja", text: "今日の予定", now: monday, want: []string{"2026-01-26"}},
		{name: "tomorrow", text: "tomorrow please", now: monday, want: []string{"2026-01-27"}},
		{name: "day after tomorrow wins over tomorrow", text: "day after tomorrow", now: monday, want: []string{"2026-01-28"}},
		{name: "明後日", text: "明後日の14時", now: monday, want: []string{"2026-01-28"}},
		{name: "next monday on a monday skips a week", text: "来週月曜", now: monday, want: []string{"2026-02-02"}},
		{name: "next friday skips the current week", text: "next friday", now: wednesday, want: []string{"2026-02-06"}},
		{name: "this friday stays in the week", text: "今週金曜日", now: monday, want: []string{"2026-01-30"}},
		{name: "this monday is today", text: "this monday", now: monday, want: []string{"2026-01-26"}},
		{name: "this monday after it passed", text: "this monday", now: wednesday, want: []string{"2026-02-02"}},
		{name: "week after next", text: "再来週の水曜", now: monday, want: []string{"2026-02-11"}},
		{name: "slash dates in order", text: "1/28, 1/29, 1/30", now: monday, want: []string{"2026-01-28", "2026-01-29", "2026-01-30"}},
		{name: "kanji date", text: "2月3日はどう", now: monday, want: []string{"2026-02-03"}},
		{name: "past date rolls to next year", text: "1/5", now: monday, want: []string{"2027-01-05"}},
		{name: "explicit year", text: "2026/3/1", now: monday, want: []string{"2026-03-01"}},
		{name: "invalid day", text: "2/30", now: monday, want: nil},
		{name: "duplicates removed", text: "明日 1/27", now: monday, want: []string{"2026-01-27"}},
		{name: "no dates", text: "hello", now: monday, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dates(Dates(tt.text, tt.now)))
		})
	}
}

func TestNextWeekday_AlwaysFollowingWeek(t *testing.T) {
	for i := 0; i < 7; i++ {
		now := monday.AddDate(0, 0, i)
		for w := time.Sunday; w <= time.Saturday; w++ {
			got := NextWeekday(now, w)
			assert.Equal(t, w, got.Weekday())
			assert.True(t, got.After(now), "next %s from %s", w, now.Weekday())
			assert.Equal(t, StartOfWeek(now).AddDate(0, 0, 7), StartOfWeek(got))
		}
	}
}

func TestAbsoluteDates(t *testing.T) {
	ms := Dates("明日か1/29", monday)
	require.Len(t, ms, 2)
	abs := AbsoluteDates(ms)
	require.Len(t, abs, 1)
	assert.Equal(t, "1/29", abs[0].Text)
}

func TestDates_SpansIndexOriginalText(t *testing.T) {
	// İ lower-cases to a longer byte sequence
	text := "İstanbul: Tomorrow or NEXT Friday"
	ms := Dates(text, monday)
	require.Len(t, ms, 2)

	assert.Equal(t, "Tomorrow", ms[0].Text)
	assert.Equal(t, "2026-01-27", ms[0].Date.Format("2006-01-02"))
	assert.Equal(t, "NEXT Friday", ms[1].Text)
	assert.Equal(t, "2026-02-06", ms[1].Date.Format("2006-01-02"))
	for _, m := range ms {
		assert.Equal(t, m.Text, text[m.Pos:m.End])
	}
}
