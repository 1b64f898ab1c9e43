package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimes(t *testing.T) {
	tests := []struct {
		text      string
		wantStart []string
		wantTo    string
	}{
		{text: "14:00", wantStart: []string{"14:00"}},
		{text: "14時", wantStart: []string{"14:00"}},
		{text: "14時半", wantStart: []string{"14:30"}},
		{text: "9時05分", wantStart: []string{"09:05"}},
		{text: "3pm", wantStart: []string{"15:00"}},
		{text: "at 11 am", wantStart: []string{"11:00"}},
		{text: "12am", wantStart: []string{"00:00"}},
		{text: "午後3時", wantStart: []string{"15:00"}},
		{text: "1時間", wantStart: nil},
		{text: "12時間", wantStart: nil},
		{text: "17時から1時間", wantStart: []string{"17:00"}},
		{text: "25時", wantStart: nil},
		{text: "14:00〜15:30", wantStart: []string{"14:00"}, wantTo: "15:30"},
		{text: "10:00, 14:00", wantStart: []string{"10:00", "14:00"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := Times(tt.text)
			var starts []string
			for _, m := range got {
				starts = append(starts, m.Start)
			}
			assert.Equal(t, tt.wantStart, starts)
			if tt.wantTo != "" {
				require.Len(t, got, 1)
				assert.Equal(t, tt.wantTo, got[0].To)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"1時間", 60},
		{"1時間半", 90},
		{"1時間30分", 90},
		{"30分", 30},
		{"45分間", 45},
		{"14時30分", 0},
		{"1 hour", 60},
		{"2 hours 30 minutes", 150},
		{"1.5 hours", 90},
		{"45 min", 45},
		{"half an hour", 30},
		{"17時から1時間", 60},
		{"14:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := Duration(tt.text); got != tt.want {
				t.Errorf("Duration(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestStartTimeWithDuration(t *testing.T) {
	f := All("17時から1時間", monday)

	require.Len(t, f.Times, 1)
	assert.Equal(t, "17:00", f.Times[0].Start)
	assert.Equal(t, 60, f.Minutes())
}

func TestEmails(t *testing.T) {
	es := Emails("cc Taro@Example.com and hanako@example.co.jp, taro@example.com")
	require.Len(t, es, 2)
	assert.Equal(t, "taro@example.com", es[0].Address)
	assert.Equal(t, "hanako@example.co.jp", es[1].Address)

	assert.True(t, IsEmail(" a.b+c@example.org "))
	assert.False(t, IsEmail("mail me at a@example.org"))
	assert.Equal(t, "", FirstEmail("no address here"))
}

func TestCombineSlots(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantSlots  []string
		wantPolicy SlotPolicy
	}{
		{
			name:       "n dates one time",
			text:       "1/28, 1/29, 1/30 14:00",
			wantSlots:  []string{"2026-01-28 14:00", "2026-01-29 14:00", "2026-01-30 14:00"},
			wantPolicy: PolicyDatesByOne,
		},
		{
			name:       "one date n times",
			text:       "1/28 10:00, 14:00",
			wantSlots:  []string{"2026-01-28 10:00", "2026-01-28 14:00"},
			wantPolicy: PolicyOneByTimes,
		},
		{
			name:       "positional",
			text:       "1/28 10:00, 1/29 14:00",
			wantSlots:  []string{"2026-01-28 10:00", "2026-01-29 14:00"},
			wantPolicy: PolicyPositional,
		},
		{
			name:       "mismatched counts yield nothing",
			text:       "1/28, 1/29, 1/30 10:00, 14:00",
			wantSlots:  nil,
			wantPolicy: PolicyNone,
		},
		{
			name:       "date without time",
			text:       "1/28",
			wantSlots:  nil,
			wantPolicy: PolicyNone,
		},
		{
			name:       "single pair",
			text:       "明日14時",
			wantSlots:  []string{"2026-01-27 14:00"},
			wantPolicy: PolicyDatesByOne,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, policy := CombineSlots(Dates(tt.text, monday), Times(tt.text))
			var got []string
			for _, s := range slots {
				got = append(got, s.Date.Format("2006-01-02")+" "+s.Start)
			}
			assert.Equal(t, tt.wantSlots, got)
			assert.Equal(t, tt.wantPolicy, policy)
		})
	}
}

func TestPersons(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{name: "honorific", text: "田中さんと打ち合わせ", want: []string{"田中"}},
		{name: "date masked before name", text: "明日田中さんと14時から", want: []string{"田中"}},
		{name: "two honorifics", text: "佐藤様と鈴木さん", want: []string{"佐藤", "鈴木"}},
		{name: "everyone is not a name", text: "皆さんに連絡", want: nil},
		{name: "with list", text: "meeting with Alice and Bob Smith tomorrow", want: []string{"Alice", "Bob Smith"}},
		{name: "with comma list", text: "sync with alice, bob", want: []string{"alice", "bob"}},
		{name: "with pronoun", text: "schedule with me", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, p := range All(tt.text, monday).Persons {
				got = append(got, p.Name)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	directory := []Contact{
		{ID: "c1", Name: "田中 太郎", Email: "taro@example.com"},
		{ID: "c2", Name: "田中 花子", Email: "hanako@example.com"},
		{ID: "c3", Name: "佐藤 一郎", Email: "sato@example.com"},
		{ID: "c4", Name: "Alice Johnson", Email: "alice@example.com"},
	}

	tests := []struct {
		query   string
		status  ResolveStatus
		matchID string
		count   int
	}{
		{query: "田中", status: ResolvedMany, count: 2},
		{query: "佐藤", status: ResolvedSingle, matchID: "c3", count: 1},
		{query: "田中太郎", status: ResolvedSingle, matchID: "c1", count: 1},
		{query: "alice", status: ResolvedSingle, matchID: "c4", count: 1},
		{query: "SATO@example.com", status: ResolvedSingle, matchID: "c3", count: 1},
		{query: "鈴木", status: ResolvedNone},
		{query: "", status: ResolvedNone},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res := Resolve(tt.query, directory)
			assert.Equal(t, tt.status, res.Status)
			assert.Len(t, res.Candidates, tt.count)
			if tt.matchID != "" {
				require.NotNil(t, res.Match)
				assert.Equal(t, tt.matchID, res.Match.ID)
			} else {
				assert.Nil(t, res.Match)
			}
		})
	}
}
