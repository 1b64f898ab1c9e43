// Package contactimport implements the contact import flow:
// preview, per-entry resolution of ambiguous matches, then a single write on
// confirm. Preview and every decision are pure; only Committer writes.
package contactimport

import (
	"fmt"
	"regexp"
	"strings"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/extract"
	"ai-scheduler-be/pkg/pending"
)

// Candidate is one parsed line of an import batch
type Candidate struct {
	Name  string
	Email string
}

var (
	reEntrySep   = regexp.MustCompile(`[\n;、,]+`)
	reNameTrim   = regexp.MustCompile(`[<>()\[\]「」"']`)
	reListHeader = regexp.MustCompile(`^[^:\n]*:`)
	reCommand    = regexp.MustCompile(`(?i)連絡先を?(?:インポート|登録|追加|取り込み)(?:して|する|したい)?|(?:import|add)\s+(?:these\s+|my\s+)?contacts?`)
)

// IsCommand reports whether text asks to import contacts
func IsCommand(text string) bool {
	return reCommand.MatchString(text)
}

// Parse reads entries such as "田中太郎 taro@example.com, 佐藤 <sato@example.com>".
// Anything before the first colon is treated as the command.
func Parse(text string) []Candidate {
	body := strings.TrimSpace(text)
	if reListHeader.MatchString(body) && !strings.Contains(reListHeader.FindString(body), "@") {
		body = reListHeader.ReplaceAllString(body, "")
	} else {
		body = reCommand.ReplaceAllString(body, "")
	}
	var out []Candidate
	for _, chunk := range reEntrySep.Split(body, -1) {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		email := extract.FirstEmail(chunk)
		name := chunk
		if email != "" {
			if i := strings.Index(strings.ToLower(name), email); i >= 0 {
				name = name[:i] + name[i+len(email):]
			}
		}
		name = strings.Join(strings.Fields(reNameTrim.ReplaceAllString(name, " ")), " ")
		if name == "" && email != "" {
			name, _, _ = strings.Cut(email, "@")
		}
		if name == "" {
			continue
		}
		out = append(out, Candidate{Name: name, Email: email})
	}
	return out
}

// Preview buckets candidates against the directory. An entry without an email
// is never importable; an entry whose email or full name already exists is
// ambiguous until the user resolves it.
func Preview(candidates []Candidate, directory []extract.Contact) pending.ContactImportPreview {
	var p pending.ContactImportPreview
	seen := make(map[string]bool)
	for _, c := range candidates {
		entry := pending.ImportEntry{Name: c.Name, Email: c.Email}
		switch {
		case c.Email == "":
			entry.Bucket = pending.BucketMissingEmail
		case seen[c.Email]:
			continue
		default:
			seen[c.Email] = true
			entry.Candidates = collisions(c, directory)
			entry.Bucket = pending.BucketClean
			if len(entry.Candidates) > 0 {
				entry.Bucket = pending.BucketAmbiguous
			}
		}
		p.Entries = append(p.Entries, entry)
	}
	return p
}

func collisions(c Candidate, directory []extract.Contact) []pending.ContactRef {
	var refs []pending.ContactRef
	name := fold(c.Name)
	for _, d := range directory {
		if strings.EqualFold(d.Email, c.Email) || (name != "" && fold(d.Name) == name) {
			refs = append(refs, pending.ContactRef{ID: d.ID, Name: d.Name, Email: d.Email})
		}
	}
	return refs
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

// Counts returns the number of clean, missing-email and ambiguous entries
func Counts(entries []pending.ImportEntry) (clean, missing, ambiguous int) {
	for _, e := range entries {
		switch e.Bucket {
		case pending.BucketClean:
			clean++
		case pending.BucketMissingEmail:
			missing++
		case pending.BucketAmbiguous:
			ambiguous++
		}
	}
	return clean, missing, ambiguous
}

// Params summarises entries for executors and the UI
func Params(entries []pending.ImportEntry, skipAmbiguous bool) intent.ContactImportParams {
	clean, missing, ambiguous := Counts(entries)
	p := intent.ContactImportParams{Clean: clean, MissingEmail: missing, Ambiguous: ambiguous}
	for _, w := range plan(entries, skipAmbiguous) {
		p.Entries = append(p.Entries, intent.ContactEntry{Name: w.Name, Email: w.Email, Action: string(w.Action), ContactID: w.ContactID})
	}
	return p
}

// Summary is the one-line description shown with the confirmation prompt
func Summary(entries []pending.ImportEntry) string {
	clean, missing, ambiguous := Counts(entries)
	return fmt.Sprintf("連絡先インポート: 登録 %d件 / メール不明でスキップ %d件 / 要確認 %d件", clean, missing, ambiguous)
}

// NewPreview builds the preview result for an import command. The pending
// record is written by the caller; nothing is imported here.
func NewPreview(text string, directory []extract.Contact, pendingThread string) *intent.Result {
	preview := Preview(Parse(text), directory)
	clean, _, ambiguous := Counts(preview.Entries)
	if clean+ambiguous == 0 {
		return intent.NewClarify(intent.ContactImportPreview, 0.9, Params(preview.Entries, false),
			"entries", "登録する連絡先を「名前 メールアドレス」の形で、カンマか改行で区切って送ってください。")
	}

	res := &intent.Result{
		Intent:          intent.ContactImportPreview,
		Confidence:      0.95,
		Params:          Params(preview.Entries, false),
		RequiresConfirm: true,
		Source:          intent.SourceRule,
		NextPending: &pending.State{
			ThreadID: pendingThread,
			Summary:  Summary(preview.Entries),
			Payload:  preview,
		},
	}
	return res
}
