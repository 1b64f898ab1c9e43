package extract

import "time"

// Slot pairs a date with a start time
type Slot struct {
	Date  time.Time
	Start string
	To    string
}

// SlotPolicy names the pairing rule that produced a slot list
type SlotPolicy string

const (
	PolicyNone       SlotPolicy = ""
	PolicyDatesByOne SlotPolicy = "n_dates_x_1_time"
	PolicyOneByTimes SlotPolicy = "1_date_x_n_times"
	PolicyPositional SlotPolicy = "positional"
)

// CombineSlots pairs dates with times:
//  1. N dates and 1 time: the time on every date
//  2. 1 date and N times: every time on the date
//  3. N dates and N times: date[i] with time[i]
//
// Anything else yields no slots; the caller has to ask, not guess.
func CombineSlots(dates []DateMatch, times []TimeMatch) ([]Slot, SlotPolicy) {
	nd, nt := len(dates), len(times)
	if nd == 0 || nt == 0 {
		return nil, PolicyNone
	}
	var out []Slot
	switch {
	case nt == 1:
		for _, d := range dates {
			out = append(out, Slot{Date: d.Date, Start: times[0].Start, To: times[0].To})
		}
		return out, PolicyDatesByOne
	case nd == 1:
		for _, t := range times {
			out = append(out, Slot{Date: dates[0].Date, Start: t.Start, To: t.To})
		}
		return out, PolicyOneByTimes
	case nd == nt:
		for i := range dates {
			out = append(out, Slot{Date: dates[i].Date, Start: times[i].Start, To: times[i].To})
		}
		return out, PolicyPositional
	}
	return nil, PolicyNone
}

// Fragments is everything the extractors found in one message
type Fragments struct {
	Dates     []DateMatch
	Times     []TimeMatch
	Durations []DurationMatch
	Emails    []EmailMatch
	Persons   []PersonRef
	Slots     []Slot
	Policy    SlotPolicy
}

// All runs every extractor. Person references are read from text with
// dates, times, durations and emails masked out.
func All(text string, now time.Time) Fragments {
	f := Fragments{
		Dates:     Dates(text, now),
		Times:     Times(text),
		Durations: Durations(text),
		Emails:    Emails(text),
	}
	var spans []Span
	for _, d := range f.Dates {
		spans = append(spans, Span{Pos: d.Pos, End: d.End})
	}
	for _, t := range f.Times {
		spans = append(spans, t.Span)
	}
	for _, d := range f.Durations {
		spans = append(spans, d.Span)
	}
	for _, e := range f.Emails {
		spans = append(spans, e.Span)
	}
	f.Persons = Persons(Mask(text, spans...))
	f.Slots, f.Policy = CombineSlots(f.Dates, f.Times)
	return f
}

// Minutes returns the first duration, or 0
func (f Fragments) Minutes() int {
	if len(f.Durations) == 0 {
		return 0
	}
	return f.Durations[0].Minutes
}
