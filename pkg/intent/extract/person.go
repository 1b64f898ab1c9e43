package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Contact is one directory entry as seen by the resolver
type Contact struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email"`
}

// PersonRef is a name the user referred to, not yet resolved
type PersonRef struct {
	Name string
	Span
}

var (
	reHonorific = regexp.MustCompile(`([\p{Han}\p{Katakana}ー々A-Za-z]{1,12})(?:さん|様|さま|氏|くん|ちゃん|先生)`)
	reWith      = regexp.MustCompile(`(?i)\bwith\s+`)
	reToken     = regexp.MustCompile(`\S+`)
	reNameWord  = regexp.MustCompile(`^[A-Za-z][A-Za-z'\-]*$`)
)

var jaNotNames = map[string]bool{
	"皆": true, "客": true, "各位": true, "担当": true, "担当者": true, "先方": true,
}

var enStopWords = map[string]bool{
	"me": true, "us": true, "him": true, "her": true, "them": true, "you": true,
	"everyone": true, "everybody": true, "the": true, "a": true, "an": true,
	"my": true, "our": true, "at": true, "on": true, "for": true, "from": true,
	"to": true, "in": true, "about": true, "please": true, "today": true,
	"tomorrow": true, "next": true, "this": true, "it": true, "that": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Persons finds person references with a Japanese honorific (田中さん, 佐藤様)
// or after "with" (meeting with Alice and Bob Smith). Callers should mask
// dates and times first so 明日 or 来週 never glue onto a name.
func Persons(text string) []PersonRef {
	var out []PersonRef
	seen := make(map[string]bool)
	add := func(name string, span Span) {
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, PersonRef{Name: name, Span: span})
	}

	for _, m := range reHonorific.FindAllStringSubmatchIndex(text, -1) {
		name := text[m[2]:m[3]]
		if jaNotNames[name] {
			continue
		}
		add(name, Span{Pos: m[0], End: m[1]})
	}

	for _, loc := range reWith.FindAllStringIndex(text, -1) {
		for _, ref := range namesAfterWith(text, loc[1]) {
			add(ref.Name, ref.Span)
		}
	}
	return out
}

// namesAfterWith reads "Alice, Bob Smith and carol" until a word that
// cannot be part of a name
func namesAfterWith(text string, from int) []PersonRef {
	var out []PersonRef
	var cur []string
	var curSpan Span
	flush := func() {
		if len(cur) > 0 {
			out = append(out, PersonRef{Name: strings.Join(cur, " "), Span: curSpan})
			cur = nil
		}
	}

	tail := text[from:]
	for _, loc := range reToken.FindAllStringIndex(tail, -1) {
		raw := tail[loc[0]:loc[1]]
		word := strings.TrimRight(raw, ",.!?;:")
		lower := strings.ToLower(word)
		switch {
		case lower == "and" || lower == "&":
			flush()
			continue
		case word == "" || enStopWords[lower] || !reNameWord.MatchString(word):
			flush()
			return out
		}
		startsUpper := word[0] >= 'A' && word[0] <= 'Z'
		if len(cur) > 0 && !startsUpper {
			flush()
			return out
		}
		if len(cur) == 0 {
			curSpan.Pos = from + loc[0]
		}
		cur = append(cur, word)
		curSpan.End = from + loc[0] + len(word)
		if word != raw {
			flush()
		}
	}
	flush()
	return out
}

// ResolveStatus is the outcome of matching a name against the directory
type ResolveStatus string

const (
	ResolvedSingle ResolveStatus = "single"
	ResolvedNone   ResolveStatus = "none"
	ResolvedMany   ResolveStatus = "ambiguous"
)

// Resolution carries the match, or every candidate when there is more than
// one. The resolver never picks among several candidates.
type Resolution struct {
	Query      string
	Status     ResolveStatus
	Match      *Contact
	Candidates []Contact
}

// Resolve matches query against directory by email, full name or name part
func Resolve(query string, directory []Contact) Resolution {
	res := Resolution{Query: query, Status: ResolvedNone}
	q := foldName(query)
	if q == "" {
		return res
	}
	email := IsEmail(query)
	for _, c := range directory {
		if email {
			if strings.EqualFold(strings.TrimSpace(query), c.Email) {
				res.Candidates = append(res.Candidates, c)
			}
			continue
		}
		if nameMatches(q, c) {
			res.Candidates = append(res.Candidates, c)
		}
	}
	switch len(res.Candidates) {
	case 0:
		res.Candidates = nil
	case 1:
		match := res.Candidates[0]
		res.Status = ResolvedSingle
		res.Match = &match
	default:
		res.Status = ResolvedMany
	}
	return res
}

func foldName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func nameMatches(q string, c Contact) bool {
	name := foldName(c.Name)
	if name == "" {
		return false
	}
	if name == q {
		return true
	}
	for _, part := range strings.Fields(strings.ToLower(c.Name)) {
		if part == q {
			return true
		}
	}
	// single characters only match as a prefix
	if utf8.RuneCountInString(q) < 2 {
		return strings.HasPrefix(name, q)
	}
	if strings.Contains(name, q) {
		return true
	}
	local, _, _ := strings.Cut(strings.ToLower(c.Email), "@")
	return local != "" && local == q
}
