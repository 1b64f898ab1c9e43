package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
)

// TimeMatch is one clock time, optionally the start of a range
type TimeMatch struct {
	Start string // HH:MM
	To    string // HH:MM when written as a range, else ""
	Text  string
	Span
}

// An hour followed by 間 is a duration (1時間), never a clock time.
var reClock = regexp2.MustCompile(
	`(?<![0-9])(?:(?<ampm>午前|午後)\s*)?(?<h>[0-9]{1,2})`+
		`(?::(?<m>[0-5][0-9])(?:\s*(?<suffix1>am|pm)\b)?`+
		`|時(?!間)(?:(?<half>半)|(?<m2>[0-5]?[0-9])分)?`+
		`|\s*(?<suffix>am|pm)\b)`,
	regexp2.IgnoreCase)

var rangeSeparators = []string{"〜", "~", "-", "から", "to", "ー", "–", "より"}

// Times finds clock times in order of appearance. Two adjacent times joined
// by a range separator collapse into one match with To set.
func Times(text string) []TimeMatch {
	var found []TimeMatch
	eachMatch(reClock, text, func(m *regexp2.Match, span Span) {
		if tm, ok := parseClock(m); ok {
			tm.Text = text[span.Pos:span.End]
			tm.Span = span
			found = append(found, tm)
		}
	})

	var out []TimeMatch
	for i := 0; i < len(found); i++ {
		cur := found[i]
		if i+1 < len(found) && isRangeSeparator(text[cur.Span.End:found[i+1].Pos]) {
			next := found[i+1]
			cur.To = next.Start
			cur.Text = text[cur.Pos:next.Span.End]
			cur.Span = Span{Pos: cur.Pos, End: next.Span.End}
			i++
		}
		out = append(out, cur)
	}
	return out
}

func isRangeSeparator(between string) bool {
	between = strings.TrimSpace(strings.ToLower(between))
	for _, sep := range rangeSeparators {
		if between == sep {
			return true
		}
	}
	return false
}

func parseClock(m *regexp2.Match) (TimeMatch, bool) {
	hs, _ := group(m, "h")
	h, err := strconv.Atoi(hs)
	if err != nil {
		return TimeMatch{}, false
	}
	minute := 0
	if s, ok := group(m, "m"); ok {
		minute, _ = strconv.Atoi(s)
	} else if s, ok := group(m, "m2"); ok {
		minute, _ = strconv.Atoi(s)
	} else if _, ok := group(m, "half"); ok {
		minute = 30
	}

	suffix, _ := group(m, "suffix")
	if suffix == "" {
		suffix, _ = group(m, "suffix1")
	}
	ampm, _ := group(m, "ampm")
	switch {
	case ampm == "午後" || strings.EqualFold(suffix, "pm"):
		if h > 12 {
			return TimeMatch{}, false
		}
		if h < 12 {
			h += 12
		}
	case ampm == "午前" || strings.EqualFold(suffix, "am"):
		if h > 12 {
			return TimeMatch{}, false
		}
		if h == 12 {
			h = 0
		}
	}
	if h > 23 || minute > 59 {
		return TimeMatch{}, false
	}
	return TimeMatch{Start: FormatClock(h, minute)}, true
}

// FormatClock renders an hour and minute as HH:MM
func FormatClock(h, m int) string {
	return fmt.Sprintf("%02d:%02d", h, m)
}
