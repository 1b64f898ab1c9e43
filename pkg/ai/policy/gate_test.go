package policy

import (
	"testing"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/pending"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate_Rules(t *testing.T) {
	active := &pending.State{ThreadID: "t1", Summary: "スレッド1を閉じますか?", Payload: pending.EmailRequest{Name: "鈴木"}}

	tests := []struct {
		name        string
		intent      intent.Name
		active      *pending.State
		model       bool
		allowed     bool
		confirm     bool
		blockReason string
	}{
		{"confirm step", intent.FinalizeConfirm, nil, false, false, false, ReasonConfirmStep},
		{"confirm step checked before pending", intent.ThreadCloseConfirm, active, false, false, false, ReasonConfirmStep},
		{"external send", intent.InviteSend, nil, true, false, false, ReasonExternalEffect},
		{"external while pending", intent.VoteSplitAccept, active, false, false, false, ReasonExternalEffect},
		{"pending blocks topic intents", intent.OneOnOneCreate, active, false, false, false, ReasonPendingActive},
		{"pending allows calendar reads", intent.CalendarWeek, active, false, true, false, ""},
		{"pending allows reprompt", intent.PendingReprompt, active, false, true, false, ""},
		{"invite draft forced confirm", intent.InviteDraft, nil, false, true, true, ""},
		{"reschedule forced confirm", intent.ScheduleReschedule, nil, false, true, true, ""},
		{"model confirm kept", intent.PreferenceSet, nil, true, true, true, ""},
		{"plain read", intent.ContactList, nil, false, true, false, ""},
		{"name outside the catalog", intent.Name("calendar.delete_all"), nil, false, false, false, ReasonExternalEffect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(tt.intent, tt.active, tt.model)
			assert.Equal(t, tt.allowed, d.Allowed)
			assert.Equal(t, tt.confirm, d.RequiresConfirm)
			assert.Equal(t, tt.blockReason, d.BlockReason)
			if !d.Allowed {
				assert.NotEmpty(t, d.FallbackQuestion)
			}
		})
	}
}

func TestEvaluate_NoConfirmOrExternalIntentPasses(t *testing.T) {
	for _, e := range intent.Catalog() {
		if !e.Name.IsConfirmStep() && e.Effect != intent.EffectExternal {
			continue
		}
		t.Run(string(e.Name), func(t *testing.T) {
			assert.False(t, Evaluate(e.Name, nil, true).Allowed)
			assert.False(t, e.AIAllowed, "catalog must not offer %s to the model", e.Name)
		})
	}
}

func TestEvaluate_PendingMessageCarriesSummary(t *testing.T) {
	active := &pending.State{ThreadID: "t1", Summary: "候補2で確定しますか?", Payload: pending.SplitVoteProposal{}}
	d := Evaluate(intent.PoolCreate, active, false)
	assert.Contains(t, d.FallbackQuestion, "候補2で確定しますか?")
}

func TestContained(t *testing.T) {
	tests := []struct {
		name intent.Name
		want bool
	}{
		{intent.InviteSendConfirm, true},
		{intent.InviteSend, true},
		{intent.RemindFollowupAccept, true},
		{intent.ThreadCloseConfirm, true},
		{intent.PersonSelect, false},
		{intent.CalendarToday, false},
		{intent.Name("no.such.intent"), true},
	}
	for _, tt := range tests {
		t.Run(string(tt.name), func(t *testing.T) {
			assert.Equal(t, tt.want, Contained(tt.name))
		})
	}
}
