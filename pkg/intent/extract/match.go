package extract

import "github.com/dlclark/regexp2"

// Span is a byte range of the input
type Span struct {
	Pos int
	End int
}

// regexp2 reports positions in runes; callers work in bytes.
func byteSpan(runes []rune, m *regexp2.Match) Span {
	start := len(string(runes[:m.Index]))
	return Span{Pos: start, End: start + len(string(runes[m.Index:m.Index+m.Length]))}
}

func group(m *regexp2.Match, name string) (string, bool) {
	g := m.GroupByName(name)
	if g == nil || len(g.Captures) == 0 {
		return "", false
	}
	return g.String(), true
}

// eachMatch walks every non-overlapping match of re in text
func eachMatch(re *regexp2.Regexp, text string, fn func(m *regexp2.Match, span Span)) {
	runes := []rune(text)
	m, err := re.FindRunesMatch(runes)
	for err == nil && m != nil {
		fn(m, byteSpan(runes, m))
		m, err = re.FindNextMatch(m)
	}
}

// Mask blanks the given spans so later extractors skip them. Byte length is preserved.
func Mask(text string, spans ...Span) string {
	b := []byte(text)
	for _, s := range spans {
		for i := s.Pos; i < s.End && i < len(b); i++ {
			b[i] = ' '
		}
	}
	return string(b)
}
