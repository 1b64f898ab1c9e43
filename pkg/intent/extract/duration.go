package extract

import (
	"math"
	"strconv"

	"github.com/dlclark/regexp2"
)

// DurationMatch is one length-of-time expression
type DurationMatch struct {
	Minutes int
	Text    string
	Span
}

// Minutes directly after 時 belong to a clock time (14時30分), not a duration.
var reDuration = regexp2.MustCompile(
	`(?<![0-9.])(?:`+
		`(?<h>[0-9]{1,2})時間(?<half>半)?(?:(?<hm>[0-9]{1,2})分)?`+
		`|(?<!時)(?<m>[0-9]{1,3})分(?:間)?`+
		`|(?<eh>[0-9]{1,2}(?:\.[0-9])?)\s*(?:hours?|hrs?)\b(?:\s*(?:and\s+)?(?<ehm>[0-9]{1,2})\s*(?:minutes?|mins?)\b)?`+
		`|(?<em>[0-9]{1,3})\s*(?:minutes?|mins?)\b`+
		`)|(?<halfhour>half an hour)`,
	regexp2.IgnoreCase)

// Durations finds every duration expression in order of appearance
func Durations(text string) []DurationMatch {
	var out []DurationMatch
	eachMatch(reDuration, text, func(m *regexp2.Match, span Span) {
		if mins := durationMinutes(m); mins > 0 {
			out = append(out, DurationMatch{Minutes: mins, Text: text[span.Pos:span.End], Span: span})
		}
	})
	return out
}

// Duration returns the first duration in text, or 0
func Duration(text string) int {
	if ds := Durations(text); len(ds) > 0 {
		return ds[0].Minutes
	}
	return 0
}

func durationMinutes(m *regexp2.Match) int {
	if _, ok := group(m, "halfhour"); ok {
		return 30
	}
	if s, ok := group(m, "h"); ok {
		h, _ := strconv.Atoi(s)
		total := h * 60
		if _, ok := group(m, "half"); ok {
			total += 30
		}
		if s, ok := group(m, "hm"); ok {
			mm, _ := strconv.Atoi(s)
			total += mm
		}
		return total
	}
	if s, ok := group(m, "m"); ok {
		mm, _ := strconv.Atoi(s)
		return mm
	}
	if s, ok := group(m, "eh"); ok {
		h, _ := strconv.ParseFloat(s, 64)
		total := int(math.Round(h * 60))
		if s, ok := group(m, "ehm"); ok {
			mm, _ := strconv.Atoi(s)
			total += mm
		}
		return total
	}
	if s, ok := group(m, "em"); ok {
		mm, _ := strconv.Atoi(s)
		return mm
	}
	return 0
}
