package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/pending"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var monday = time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)

var directory = []extract.Contact{
	{ID: "c1", Name: "田中 太郎", Email: "taro@example.com"},
	{ID: "c2", Name: "田中 花子", Email: "hanako@example.com"},
	{ID: "c3", Name: "佐藤 一郎", Email: "sato@example.com"},
	{ID: "c4", Name: "Alice Johnson", Email: "alice@example.com"},
}

type goldenWant struct {
	Intent          string         `yaml:"intent"`
	Classifier      string         `yaml:"classifier"`
	Clarify         string         `yaml:"clarify"`
	Confidence      *float64       `yaml:"confidence"`
	RequiresConfirm bool           `yaml:"requires_confirm"`
	NextPending     string         `yaml:"next_pending"`
	Consume         string         `yaml:"consume"`
	Clear           bool           `yaml:"clear"`
	PendingThread   string         `yaml:"pending_thread"`
	Params          map[string]any `yaml:"params"`
}

type goldenCase struct {
	ID      string     `yaml:"id"`
	Input   string     `yaml:"input"`
	Thread  *string    `yaml:"thread"`
	Pending string     `yaml:"pending"`
	Global  string     `yaml:"global"`
	Want    goldenWant `yaml:"want"`
}

func loadGolden(t *testing.T) []goldenCase {
	t.Helper()
	raw, err := os.ReadFile("testdata/golden.yaml")
	require.NoError(t, err)
	var cases []goldenCase
	require.NoError(t, yaml.Unmarshal(raw, &cases))
	require.GreaterOrEqual(t, len(cases), 50)
	return cases
}

func decodeState(t *testing.T, doc string) *pending.State {
	t.Helper()
	if doc == "" {
		return nil
	}
	var s pending.State
	require.NoError(t, json.Unmarshal([]byte(doc), &s))
	return &s
}

func (c goldenCase) context(t *testing.T) Context {
	thread := "t1"
	if c.Thread != nil {
		thread = *c.Thread
	}
	return Context{
		ThreadID:      thread,
		UserID:        "u1",
		ThreadPending: decodeState(t, c.Pending),
		GlobalPending: decodeState(t, c.Global),
		Now:           monday,
		Contacts:      directory,
	}
}

func encodedParams(t *testing.T, res *intent.Result) map[string]any {
	t.Helper()
	if res.Params == nil {
		return map[string]any{}
	}
	raw, err := json.Marshal(res.Params)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestChain_Golden(t *testing.T) {
	chain := NewDefault()
	seen := map[string]bool{}

	for _, tc := range loadGolden(t) {
		t.Run(tc.ID, func(t *testing.T) {
			require.False(t, seen[tc.ID], "duplicate case id")
			seen[tc.ID] = true

			res, name := chain.ClassifyTrace(tc.Input, tc.context(t))
			require.NotNil(t, res)
			want := tc.Want

			assert.Equal(t, want.Intent, string(res.Intent), "input %q", tc.Input)
			if want.Classifier != "" {
				assert.Equal(t, want.Classifier, name)
			}
			if want.Clarify == "" {
				assert.Nil(t, res.NeedsClarification)
			} else if assert.NotNil(t, res.NeedsClarification) {
				assert.Equal(t, want.Clarify, res.NeedsClarification.Field)
				assert.NotEmpty(t, res.NeedsClarification.Message)
			}
			if want.Confidence != nil {
				assert.InDelta(t, *want.Confidence, res.Confidence, 1e-9)
			}
			if want.RequiresConfirm {
				assert.True(t, res.RequiresConfirm)
			}
			if want.NextPending == "" {
				assert.Nil(t, res.NextPending)
			} else if assert.NotNil(t, res.NextPending) {
				assert.Equal(t, want.NextPending, string(res.NextPending.Kind()))
			}
			assert.Equal(t, want.Consume, res.ConsumeToken)
			assert.Equal(t, want.Clear, res.ClearPending)
			if want.PendingThread != "" {
				assert.Equal(t, want.PendingThread, res.PendingThread)
			}

			got := encodedParams(t, res)
			for k, v := range want.Params {
				assert.Equal(t, fmt.Sprint(v), fmt.Sprint(got[k]), "param %s", k)
			}
		})
	}
}

func TestChain_Idempotent(t *testing.T) {
	chain := NewDefault()
	for _, tc := range loadGolden(t) {
		t.Run(tc.ID, func(t *testing.T) {
			ctx := tc.context(t)
			first, err := chain.Classify(tc.Input, ctx).Encode()
			require.NoError(t, err)
			second, err := chain.Classify(tc.Input, ctx).Encode()
			require.NoError(t, err)
			assert.Equal(t, string(first), string(second))
		})
	}
}

func TestChain_Order(t *testing.T) {
	assert.Equal(t, []string{
		"pending_decision",
		"contact_import_pending",
		"person_selection",
		"email_request",
		"confirm_cancel",
		"thread_ops",
		"lists",
		"calendar_read",
		"contact_import",
		"pool_booking",
		"reminder",
		"relationship",
		"preferences",
		"schedule_ops",
		"one_on_one",
		"help",
	}, NewDefault().Names())
}

func TestChain_EmptyInput(t *testing.T) {
	res := NewDefault().Classify("   ", Context{ThreadID: "t1", Now: monday})
	assert.Equal(t, intent.Unknown, res.Intent)
	assert.Nil(t, res.NextPending)
}

func confirmationStates() []*pending.State {
	return []*pending.State{
		{ThreadID: "t1", Token: "k", Payload: pending.RemindConfirm{TargetThreadID: "1"}},
		{ThreadID: "t1", Token: "k", Payload: pending.InviteConfirm{Recipients: []string{"a@example.com"}}},
		{ThreadID: "t1", Token: "k", Payload: pending.FinalizeConfirm{SlotIndex: 1}},
		{ThreadID: "t1", Token: "k", Payload: pending.RescheduleConfirm{Slots: []pending.Slot{{Date: "2026-01-29", Start: "10:00"}}}},
		{ThreadID: "t1", Token: "k", Payload: pending.PreferenceChange{Key: "timezone", Value: "UTC"}},
		{ThreadID: "t1", Token: "k", Payload: pending.PoolBookingConfirm{PoolName: "相談枠"}},
		{ThreadID: "t1", Token: "k", Payload: pending.RelationshipConfirm{Email: "a@example.com", Relation: "family"}},
		{ThreadID: "t1", Token: "k", Payload: pending.ThreadCloseConfirm{TargetThreadID: "t1"}},
	}
}

func TestChain_ConfirmationKindsNeverFallThrough(t *testing.T) {
	chain := NewDefault()
	inputs := []string{
		"明日の予定",
		"連絡先一覧",
		"佐藤さんと1/28 14:00で打ち合わせ",
		"help",
		"連絡先を登録: 山田一郎 ichiro@example.com",
		"スレッド3を選択",
		"はいはい、でも明日にして",
	}
	for _, state := range confirmationStates() {
		require.True(t, state.Kind().IsConfirmation())
		for _, in := range inputs {
			t.Run(string(state.Kind())+"/"+in, func(t *testing.T) {
				res, name := chain.ClassifyTrace(in, Context{ThreadID: "t1", UserID: "u1", ThreadPending: state, Now: monday, Contacts: directory})
				assert.Equal(t, "pending_decision", name)
				assert.Equal(t, intent.PendingReprompt, res.Intent)
				assert.Empty(t, res.ConsumeToken)
				assert.False(t, res.ClearPending)
				assert.Nil(t, res.NextPending)
			})
		}
	}
}

func TestChain_ConfirmationAccepts(t *testing.T) {
	chain := NewDefault()
	for _, state := range confirmationStates() {
		t.Run(string(state.Kind()), func(t *testing.T) {
			ctx := Context{ThreadID: "t1", UserID: "u1", ThreadPending: state, Now: monday}

			yes := chain.Classify("はい", ctx)
			if state.Kind() == pending.KindRemindConfirm {
				yes = chain.Classify("送信", ctx)
			}
			assert.Equal(t, "k", yes.ConsumeToken)
			assert.False(t, yes.ClearPending)

			no := chain.Classify("キャンセル", ctx)
			assert.True(t, no.ClearPending)
			assert.Empty(t, no.ConsumeToken)
		})
	}
}

func TestConfirmCancel_Priority(t *testing.T) {
	chain := NewDefault()
	split := &pending.State{ThreadID: "global:u1", Token: "v", Payload: pending.SplitVoteProposal{Votes: 2}}
	notice := &pending.State{ThreadID: "t1", Token: "n", Payload: pending.ConfirmedNotification{}}
	follow := &pending.State{ThreadID: "t1", Token: "f", Payload: pending.ReminderFollowup{Unanswered: 1}}

	tests := []struct {
		name   string
		thread *pending.State
		global *pending.State
		input  string
		want   intent.Name
	}{
		{"split beats notice", notice, split, "はい", intent.VoteSplitAccept},
		{"notice beats followup", follow, &pending.State{ThreadID: "global:u1", Token: "n2", Payload: pending.ConfirmedNotification{}}, "yes", intent.NotifyConfirmedAccept},
		{"followup alone", follow, nil, "いいえ", intent.RemindFollowupDecline},
		{"wording does not matter", notice, split, "ok", intent.VoteSplitAccept},
		{"global only", nil, split, "no", intent.VoteSplitDecline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := chain.Classify(tt.input, Context{ThreadID: "t1", UserID: "u1", ThreadPending: tt.thread, GlobalPending: tt.global, Now: monday})
			assert.Equal(t, tt.want, res.Intent)
		})
	}
}

func TestPersonSelection_ResolvesRemainingQueries(t *testing.T) {
	state := &pending.State{ThreadID: "t1", Token: "s", Payload: pending.PersonSelection{
		Queries:      []string{"田中", "佐藤", "鈴木"},
		Candidates:   []pending.ContactRef{{ID: "c1", Name: "田中 太郎", Email: "taro@example.com"}, {ID: "c2", Name: "田中 花子", Email: "hanako@example.com"}},
		ResumeIntent: string(intent.OneOnOneCreate),
	}}
	res := NewDefault().Classify("花子", Context{ThreadID: "t1", UserID: "u1", ThreadPending: state, Now: monday, Contacts: directory})

	assert.Equal(t, intent.PersonSelect, res.Intent)
	require.NotNil(t, res.NextPending)
	req, ok := res.NextPending.Payload.(pending.EmailRequest)
	require.True(t, ok, "鈴木 is not in the directory")
	assert.Equal(t, "鈴木", req.Name)
	assert.False(t, res.ClearPending)
}

func TestPersonSelection_OutOfRangeReprompts(t *testing.T) {
	state := &pending.State{ThreadID: "t1", Token: "s", Payload: pending.PersonSelection{
		Queries:    []string{"田中"},
		Candidates: []pending.ContactRef{{ID: "c1", Name: "田中 太郎"}, {ID: "c2", Name: "田中 花子"}},
	}}
	res := NewDefault().Classify("5", Context{ThreadID: "t1", ThreadPending: state, Now: monday})
	assert.Equal(t, intent.PendingReprompt, res.Intent)
}

func TestClassifiers_NeverMutateContext(t *testing.T) {
	state := &pending.State{ThreadID: "t1", Token: "c", Payload: pending.ContactImportPreview{Entries: []pending.ImportEntry{
		{Name: "田中 太郎", Email: "taro.tanaka@example.com", Bucket: pending.BucketAmbiguous,
			Candidates: []pending.ContactRef{{ID: "c1", Name: "田中 太郎"}}},
	}}}
	before, err := json.Marshal(state)
	require.NoError(t, err)

	chain := NewDefault()
	for _, in := range []string{"はい", "1", "新規", "スキップ", "キャンセル"} {
		chain.Classify(in, Context{ThreadID: "t1", ThreadPending: state, Now: monday, Contacts: directory})
	}
	after, err := json.Marshal(state)
	require.NoError(t, err)
	assert.JSONEq(t, string(before), string(after))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		norm string
	}{
		{"１４：００に  会議", "14:00に 会議"},
		{"  Meeting With ALICE ", "meeting with alice"},
		{"ＯＫ", "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.norm, Normalize(tt.raw).Norm)
		})
	}
}
