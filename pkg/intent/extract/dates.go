package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DateMatch is one date expression found in text
type DateMatch struct {
	Date     time.Time
	Text     string
	Pos      int // byte offset
	End      int
	Absolute bool
}

var (
	reSlashDate = regexp.MustCompile(`(?:(\d{4})/)?(\d{1,2})/(\d{1,2})`)
	reKanjiDate = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)

	reJaWeekday = regexp.MustCompile(`(?:(来週|今週|再来週)の?)?([月火水木金土日])曜日?`)
	reEnWeekday = regexp.MustCompile(`(?i)\b(?:(next|this)\s+)?(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
)

// Longer phrases first: "day after tomorrow" must win over "tomorrow".
var relativeWords = []struct {
	word   string
	offset int
}{
	{"day after tomorrow", 2},
	{"明後日", 2},
	{"あさって", 2},
	{"明日", 1},
	{"あした", 1},
	{"tomorrow", 1},
	{"今日", 0},
	{"きょう", 0},
	{"today", 0},
}

var (
	reRelative      = relativePattern()
	relativeOffsets = make(map[string]int, len(relativeWords))
)

func init() {
	for _, rw := range relativeWords {
		relativeOffsets[rw.word] = rw.offset
	}
}

// relativePattern matches every relative word case-insensitively on the
// original text, so match offsets stay valid spans of that text
func relativePattern() *regexp.Regexp {
	alts := make([]string, len(relativeWords))
	for i, rw := range relativeWords {
		alts[i] = regexp.QuoteMeta(rw.word)
	}
	return regexp.MustCompile(`(?i)` + strings.Join(alts, "|"))
}

var jaWeekdays = map[string]time.Weekday{
	"日": time.Sunday, "月": time.Monday, "火": time.Tuesday, "水": time.Wednesday,
	"木": time.Thursday, "金": time.Friday, "土": time.Saturday,
}

var enWeekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
	"thursday": time.Thursday, "friday": time.Friday, "saturday": time.Saturday,
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns the Monday of the week containing t
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func weekdayOffset(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// NextWeekday resolves "next X": X in the following calendar week, even when
// today is X or X is still ahead in the current week.
func NextWeekday(now time.Time, w time.Weekday) time.Time {
	return StartOfWeek(now).AddDate(0, 0, 7+weekdayOffset(w))
}

// ThisWeekday resolves "this X": X in the current week when it is today or
// still ahead; once it has passed, the nearest future X.
func ThisWeekday(now time.Time, w time.Weekday) time.Time {
	d := StartOfWeek(now).AddDate(0, 0, weekdayOffset(w))
	if d.Before(StartOfDay(now)) {
		d = d.AddDate(0, 0, 7)
	}
	return d
}

// AbsoluteDate resolves M/D to the nearest occurrence not before today
func AbsoluteDate(now time.Time, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	today := StartOfDay(now)
	d := time.Date(today.Year(), time.Month(month), day, 0, 0, 0, 0, now.Location())
	if d.Day() != day {
		return time.Time{}, false // e.g. 2/30
	}
	if d.Before(today) {
		d = time.Date(today.Year()+1, time.Month(month), day, 0, 0, 0, 0, now.Location())
		if d.Day() != day {
			return time.Time{}, false
		}
	}
	return d, true
}

// Dates finds every date expression in text, in order of appearance, with
// repeated dates removed
func Dates(text string, now time.Time) []DateMatch {
	var found []DateMatch

	for _, m := range reSlashDate.FindAllStringSubmatchIndex(text, -1) {
		if !isDateBoundary(text, m[0], m[1]) {
			continue
		}
		mo, _ := strconv.Atoi(text[m[4]:m[5]])
		dd, _ := strconv.Atoi(text[m[6]:m[7]])
		d, ok := AbsoluteDate(now, mo, dd)
		if ok && m[2] >= 0 {
			y, _ := strconv.Atoi(text[m[2]:m[3]])
			d = time.Date(y, time.Month(mo), dd, 0, 0, 0, 0, now.Location())
			ok = d.Day() == dd
		}
		if ok {
			found = append(found, DateMatch{Date: d, Text: text[m[0]:m[1]], Pos: m[0], End: m[1], Absolute: true})
		}
	}
	for _, m := range reKanjiDate.FindAllStringSubmatchIndex(text, -1) {
		mo, _ := strconv.Atoi(text[m[2]:m[3]])
		dd, _ := strconv.Atoi(text[m[4]:m[5]])
		if d, ok := AbsoluteDate(now, mo, dd); ok {
			found = append(found, DateMatch{Date: d, Text: text[m[0]:m[1]], Pos: m[0], End: m[1], Absolute: true})
		}
	}

	for _, m := range reJaWeekday.FindAllStringSubmatchIndex(text, -1) {
		prefix := ""
		if m[2] >= 0 {
			prefix = text[m[2]:m[3]]
		}
		w := jaWeekdays[text[m[4]:m[5]]]
		var d time.Time
		switch prefix {
		case "来週":
			d = NextWeekday(now, w)
		case "再来週":
			d = NextWeekday(now, w).AddDate(0, 0, 7)
		default:
			d = ThisWeekday(now, w)
		}
		found = append(found, DateMatch{Date: d, Text: text[m[0]:m[1]], Pos: m[0], End: m[1]})
	}
	for _, m := range reEnWeekday.FindAllStringSubmatchIndex(text, -1) {
		prefix := ""
		if m[2] >= 0 {
			prefix = strings.ToLower(text[m[2]:m[3]])
		}
		w, ok := enWeekdays[strings.ToLower(text[m[4]:m[5]])]
		if !ok {
			continue
		}
		d := ThisWeekday(now, w)
		if prefix == "next" {
			d = NextWeekday(now, w)
		}
		found = append(found, DateMatch{Date: d, Text: text[m[0]:m[1]], Pos: m[0], End: m[1]})
	}

	for _, m := range reRelative.FindAllStringIndex(text, -1) {
		offset, ok := relativeOffsets[strings.ToLower(text[m[0]:m[1]])]
		if !ok {
			continue
		}
		found = append(found, DateMatch{
			Date: StartOfDay(now).AddDate(0, 0, offset),
			Text: text[m[0]:m[1]],
			Pos:  m[0],
			End:  m[1],
		})
	}

	sort.SliceStable(found, func(i, j int) bool { return found[i].Pos < found[j].Pos })

	seen := make(map[string]bool)
	out := found[:0]
	for _, f := range found {
		key := f.Date.Format("2006-01-02")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}

// isDateBoundary rejects matches glued to more digits or slashes, such as
// fractions inside longer numbers
func isDateBoundary(text string, start, end int) bool {
	if start > 0 {
		if c := text[start-1]; (c >= '0' && c <= '9') || c == '/' {
			return false
		}
	}
	if end < len(text) {
		if c := text[end]; (c >= '0' && c <= '9') || c == '/' {
			return false
		}
	}
	return true
}

// AbsoluteDates keeps only M/D style matches
func AbsoluteDates(matches []DateMatch) []DateMatch {
	var out []DateMatch
	for _, m := range matches {
		if m.Absolute {
			out = append(out, m)
		}
	}
	return out
}
