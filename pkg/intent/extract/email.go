package extract

import (
	"regexp"
	"strings"
)

var reEmail = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// EmailMatch is one address, lower-cased
type EmailMatch struct {
	Address string
	Span
}

func Emails(text string) []EmailMatch {
	var out []EmailMatch
	seen := make(map[string]bool)
	for _, loc := range reEmail.FindAllStringIndex(text, -1) {
		addr := strings.ToLower(text[loc[0]:loc[1]])
		if seen[addr] {
			continue
		}
		seen[addr] = true
		out = append(out, EmailMatch{Address: addr, Span: Span{Pos: loc[0], End: loc[1]}})
	}
	return out
}

// FirstEmail returns the first address in text, or ""
func FirstEmail(text string) string {
	if es := Emails(text); len(es) > 0 {
		return es[0].Address
	}
	return ""
}

// IsEmail reports whether s is exactly one address
func IsEmail(s string) bool {
	s = strings.TrimSpace(s)
	loc := reEmail.FindStringIndex(s)
	return loc != nil && loc[0] == 0 && loc[1] == len(s)
}
