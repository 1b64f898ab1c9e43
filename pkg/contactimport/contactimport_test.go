package contactimport

import (
	"context"
	"testing"

	"ai-scheduler-be/internal/pkg/logger"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/pending"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingWriter struct {
	calls   int
	batches [][]Write
}

func (w *countingWriter) WriteContacts(_ context.Context, batch []Write) error {
	w.calls++
	w.batches = append(w.batches, batch)
	return nil
}

var directory = []extract.Contact{
	{ID: "c1", Name: "田中 太郎", Email: "taro@example.com"},
	{ID: "c2", Name: "佐藤 花子", Email: "hanako@example.com"},
}

const batchText = "連絡先を登録: 山田一郎 ichiro@example.com, 田中 太郎 taro.tanaka@example.com, 鈴木"

// stamp plays the role of the service writing the pending record
func stamp(s *pending.State, token string) *pending.State {
	s.Token = token
	return s
}

func TestParse(t *testing.T) {
	got := Parse("import contacts: Alice <ALICE@example.com>; Bob bob@example.com\n鈴木")
	assert.Equal(t, []Candidate{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "鈴木"},
	}, got)

	got = Parse("連絡先を追加 carol@example.com")
	assert.Equal(t, []Candidate{{Name: "carol", Email: "carol@example.com"}}, got)
}

func TestPreview_Buckets(t *testing.T) {
	p := Preview(Parse(batchText), directory)
	require.Len(t, p.Entries, 3)

	assert.Equal(t, pending.BucketClean, p.Entries[0].Bucket)
	assert.Equal(t, pending.BucketAmbiguous, p.Entries[1].Bucket)
	require.Len(t, p.Entries[1].Candidates, 1)
	assert.Equal(t, "c1", p.Entries[1].Candidates[0].ID)
	assert.Equal(t, pending.BucketMissingEmail, p.Entries[2].Bucket)
	assert.Empty(t, p.Entries[2].Email, "missing emails are never invented")
}

func TestFlow_ZeroWritesUntilConfirm(t *testing.T) {
	w := &countingWriter{}
	committer := NewCommitter(w, logger.NewNopLogger())

	res := NewPreview(batchText, directory, "t1")
	require.NotNil(t, res.NextPending)
	assert.True(t, res.RequiresConfirm)
	state := stamp(res.NextPending, "tok-1")
	assert.Equal(t, 0, w.calls)

	// plain yes with an unresolved entry re-prompts into selection
	res = Decide("はい", state)
	require.NotNil(t, res.NeedsClarification)
	assert.Empty(t, res.ConsumeToken)
	require.NotNil(t, res.NextPending)
	assert.Equal(t, pending.KindContactImportSelection, res.NextPending.Kind())
	state = stamp(res.NextPending, "tok-2")
	assert.Equal(t, 0, w.calls)

	// pick candidate 1: update the existing contact
	res = Decide("1", state)
	assert.Equal(t, intent.ContactImportSelect, res.Intent)
	require.NotNil(t, res.NextPending)
	assert.Equal(t, pending.KindContactImportPreview, res.NextPending.Kind())
	state = stamp(res.NextPending, "tok-3")
	assert.Equal(t, 0, w.calls)

	res = Decide("はい", state)
	assert.Equal(t, intent.ContactImportConfirm, res.Intent)
	assert.Equal(t, "tok-3", res.ConsumeToken)
	assert.Equal(t, 0, w.calls)

	batch, err := committer.Commit(context.Background(), state, false)
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	assert.Equal(t, []Write{
		{Action: ActionCreate, Name: "山田一郎", Email: "ichiro@example.com"},
		{Action: ActionUpdate, ContactID: "c1", Name: "田中 太郎", Email: "taro.tanaka@example.com"},
	}, batch)
}

func TestFlow_CancelNeverWrites(t *testing.T) {
	w := &countingWriter{}
	state := stamp(NewPreview(batchText, directory, "t1").NextPending, "tok")

	res := Decide("キャンセル", state)
	assert.Equal(t, intent.ContactImportCancel, res.Intent)
	assert.True(t, res.ClearPending)
	assert.Equal(t, 0, w.calls)
}

func TestFlow_SkipAmbiguousCreatesThem(t *testing.T) {
	w := &countingWriter{}
	committer := NewCommitter(w, logger.NewNopLogger())
	state := stamp(NewPreview(batchText, directory, "t1").NextPending, "tok")

	res := Decide("あいまいをスキップして続行", state)
	assert.Equal(t, intent.ContactImportSkipAmbiguous, res.Intent)
	assert.Equal(t, "tok", res.ConsumeToken)

	batch, err := committer.Commit(context.Background(), state, true)
	require.NoError(t, err)
	assert.Equal(t, 1, w.calls)
	require.Len(t, batch, 2)
	assert.Equal(t, ActionCreate, batch[1].Action)
	assert.Empty(t, batch[1].ContactID)
}

func TestFlow_SelectionChoices(t *testing.T) {
	sel := stamp(Decide("はい", stamp(NewPreview(batchText, directory, "t1").NextPending, "a")).NextPending, "b")

	tests := []struct {
		name       string
		reply      string
		wantIntent intent.Name
		wantRes    string
	}{
		{name: "new", reply: "新規", wantIntent: intent.ContactImportSelect, wantRes: pending.ResolutionCreate},
		{name: "zero", reply: "0", wantIntent: intent.ContactImportSelect, wantRes: pending.ResolutionCreate},
		{name: "skip", reply: "スキップ", wantIntent: intent.ContactImportSelect, wantRes: pending.ResolutionSkip},
		{name: "out of range", reply: "5", wantIntent: intent.PendingReprompt},
		{name: "unrelated", reply: "明日の予定は?", wantIntent: intent.PendingReprompt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decide(tt.reply, sel)
			assert.Equal(t, tt.wantIntent, res.Intent)
			if tt.wantRes == "" {
				assert.Nil(t, res.NextPending)
				return
			}
			require.NotNil(t, res.NextPending)
			preview, ok := res.NextPending.Payload.(pending.ContactImportPreview)
			require.True(t, ok)
			assert.Equal(t, tt.wantRes, preview.Entries[1].Resolution)
		})
	}
}

func TestCommit_RefusesUnresolved(t *testing.T) {
	w := &countingWriter{}
	committer := NewCommitter(w, logger.NewNopLogger())
	state := stamp(NewPreview(batchText, directory, "t1").NextPending, "tok")

	_, err := committer.Commit(context.Background(), state, false)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.Equal(t, 0, w.calls)
}

func TestNewPreview_NothingImportable(t *testing.T) {
	res := NewPreview("連絡先を登録: 鈴木, 高橋", directory, "t1")
	require.NotNil(t, res.NeedsClarification)
	assert.Nil(t, res.NextPending)
	assert.Equal(t, 2, res.Params.(intent.ContactImportParams).MissingEmail)
}

func TestFlow_ConfirmWithNothingLeftClearsRecord(t *testing.T) {
	w := &countingWriter{}
	state := stamp(NewPreview("連絡先を登録: 田中 太郎 taro.tanaka@example.com", directory, "t1").NextPending, "a")

	state = stamp(Decide("はい", state).NextPending, "b")
	require.Equal(t, pending.KindContactImportSelection, state.Kind())

	res := Decide("スキップ", state)
	require.NotNil(t, res.NextPending)
	assert.True(t, res.RequiresConfirm)
	state = stamp(res.NextPending, "c")

	for _, reply := range []string{"はい", "あいまいをスキップして続行"} {
		t.Run(reply, func(t *testing.T) {
			res := Decide(reply, state)
			assert.Equal(t, intent.ContactImportCancel, res.Intent)
			assert.True(t, res.ClearPending)
			assert.Empty(t, res.ConsumeToken)
			assert.Equal(t, "nothing_to_import", res.Params.(intent.DecisionParams).Decision)
		})
	}
	assert.Equal(t, 0, w.calls)
}
