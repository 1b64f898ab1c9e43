package lexicon

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestYesNo(t *testing.T) {
	tests := []struct {
		in      string
		wantYes bool
		wantNo  bool
	}{
		{"はい", true, false},
		{"はい、お願いします", true, false},
		{"ok!", true, false},
		{"yes", true, false},
		{"いいえ", false, true},
		{"no thanks", false, true},
		{"キャンセル", false, true},
		{"明日の予定は?", false, false},
		{"yes but move it to friday and also invite everyone", false, false},
		{"nothing", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.wantYes, IsYes(tt.in))
			assert.Equal(t, tt.wantNo, IsNo(tt.in))
		})
	}
}

func TestIndex(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2", 2, true},
		{"2番", 2, true},
		{"#3", 3, true},
		{"候補1", 1, true},
		{"option 4", 4, true},
		{"1番目でお願いします", 1, true},
		{"0", 0, true},
		{"14:00", 0, false},
		{"two", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Index(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDifferentThread(t *testing.T) {
	assert.True(t, DifferentThread.Exact("別のスレッド"))
	assert.True(t, SkipAmbiguous.Contains("あいまいをスキップして続行"))
	assert.False(t, Send.Exact("sending"))
}
