// Package lexicon holds the fixed decision vocabularies shared by the
// pending-gated classifiers. Every function expects normalized
// (NFKC, lower-cased, single-spaced) input.
package lexicon

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Words is a closed set of accepted phrases
type Words []string

var (
	Yes = Words{
		"はい", "うん", "ええ", "いいよ", "いいです", "いいね", "お願いします", "おねがいします", "お願い",
		"それで", "それでお願いします", "了解", "りょうかい", "大丈夫", "よろしく", "ok", "okay", "yes",
		"y", "yeah", "yep", "sure", "go ahead", "confirm", "確定", "実行",
	}
	No = Words{
		"いいえ", "いや", "no", "n", "nope", "キャンセル", "cancel", "やめる", "やめて", "やめます",
		"中止", "取り消し", "取消", "しない", "不要", "いらない", "結構です", "stop", "don't", "dont",
	}
	Send            = Words{"送信", "送って", "送る", "送信して", "send", "send it"}
	DifferentThread = Words{"別のスレッド", "他のスレッド", "スレッド変更", "スレッドを変更", "different thread", "another thread", "other thread", "change thread"}
	SkipAmbiguous   = Words{"あいまいをスキップ", "曖昧をスキップ", "あいまいはスキップ", "曖昧はスキップ", "skip ambiguous", "skip the ambiguous", "skip ambiguous and continue"}
	NewEntry        = Words{"0", "new", "新規", "新規作成", "新しく作成", "create new"}
	Skip            = Words{"skip", "スキップ", "飛ばす", "除外"}
)

const punctuation = " 。、．.,!！?？~〜"

// Trim strips surrounding punctuation and whitespace
func Trim(s string) string {
	return strings.Trim(s, punctuation)
}

// Exact reports whether the whole input is one of w
func (w Words) Exact(s string) bool {
	s = Trim(s)
	for _, word := range w {
		if s == word {
			return true
		}
	}
	return false
}

// Leading reports whether a short input starts with one of w as a whole token,
// as in "はい、お願いします" or "no thanks"
func (w Words) Leading(s string) bool {
	s = Trim(s)
	if utf8.RuneCountInString(s) > 20 {
		return false
	}
	first := s
	if i := strings.IndexAny(s, " 、,。"); i >= 0 {
		first = s[:i]
	}
	for _, word := range w {
		if first == word {
			return true
		}
	}
	return false
}

// Contains reports whether any of w occurs in s
func (w Words) Contains(s string) bool {
	for _, word := range w {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

func (w Words) matches(s string) bool {
	return w.Exact(s) || w.Leading(s)
}

// IsYes reports an affirmative reply. Inputs that also lead with a negative are not.
func IsYes(s string) bool {
	return Yes.matches(s) && !No.Leading(s)
}

// IsNo reports a negative reply
func IsNo(s string) bool {
	return No.matches(s)
}

// IsSend reports "send" or a plain yes
func IsSend(s string) bool {
	return Send.matches(s) || IsYes(s)
}

var reIndex = regexp.MustCompile(`^(?:#|no\.\s*|候補|option\s*|番号)?\s*([0-9]{1,2})\s*(?:番目|つ目|件目|番)?(?:で|にする|を選択|でお願いします|please)?$`)

// Index parses a 1-based choice such as "2", "2番", "#2", "候補2" or "option 2".
// "0" parses as 0.
func Index(s string) (int, bool) {
	m := reIndex.FindStringSubmatch(Trim(s))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
