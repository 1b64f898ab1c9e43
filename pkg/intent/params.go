package intent

import (
	"encoding/json"
	"time"
)

// Params is the typed payload of a Result. Each intent family owns one variant.
type Params interface {
	Family() string
}

// Slot is one concrete candidate start time
type Slot struct {
	Date  string `json:"date"`  // YYYY-MM-DD
	Start string `json:"start"` // HH:MM
	End   string `json:"end,omitempty"`
}

// Person is a resolved or unresolved participant reference
type Person struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Contact string `json:"contact_id,omitempty"`
}

type ScheduleParams struct {
	Person          *Person  `json:"person,omitempty"`
	Recipients      []string `json:"recipients,omitempty"`
	Slots           []Slot   `json:"slots,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
	SlotIndex       int      `json:"slot_index,omitempty"` // 1-based, finalize only
	ThreadID        string   `json:"thread_id,omitempty"`
	Title           string   `json:"title,omitempty"`
	ResumeIntent    Name     `json:"resume_intent,omitempty"` // flow to continue once the person is known
}

func (ScheduleParams) Family() string { return "schedule" }

type CalendarParams struct {
	Date  string `json:"date,omitempty"`
	From  string `json:"from,omitempty"`
	To    string `json:"to,omitempty"`
	Range string `json:"range,omitempty"` // day | week
}

func (CalendarParams) Family() string { return "calendar" }

// DecisionParams carries a decision on the active pending record
type DecisionParams struct {
	PendingKind string `json:"pending_kind"`
	Decision    string `json:"decision"`
	Token       string `json:"token,omitempty"`
	ThreadID    string `json:"thread_id,omitempty"`
	Summary     string `json:"summary,omitempty"`
}

func (DecisionParams) Family() string { return "decision" }

type ContactEntry struct {
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Action    string `json:"action"` // create | update | skip
	ContactID string `json:"contact_id,omitempty"`
}

type ContactImportParams struct {
	Token        string         `json:"token,omitempty"`
	Entries      []ContactEntry `json:"entries,omitempty"`
	Clean        int            `json:"clean"`
	MissingEmail int            `json:"missing_email"`
	Ambiguous    int            `json:"ambiguous"`
	EntryIndex   int            `json:"entry_index,omitempty"`
	Choice       string         `json:"choice,omitempty"`
}

func (ContactImportParams) Family() string { return "contact_import" }

type PersonSelectParams struct {
	Query      string          `json:"query"`
	Candidates []Person        `json:"candidates,omitempty"`
	Selected   *Person         `json:"selected,omitempty"`
	Index      int             `json:"index,omitempty"`
	Resume     *ScheduleParams `json:"resume,omitempty"`
}

func (PersonSelectParams) Family() string { return "person_select" }

type ReminderParams struct {
	ThreadID string `json:"thread_id,omitempty"`
	Target   string `json:"target,omitempty"` // unanswered | all
	Message  string `json:"message,omitempty"`
}

func (ReminderParams) Family() string { return "reminder" }

type PoolParams struct {
	PoolName        string `json:"pool_name,omitempty"`
	Slots           []Slot `json:"slots,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

func (PoolParams) Family() string { return "pool" }

type RelationParams struct {
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
	Relation string `json:"relation,omitempty"` // colleague | family | partner
}

func (RelationParams) Family() string { return "relation" }

type PreferenceParams struct {
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
}

func (PreferenceParams) Family() string { return "preference" }

type ThreadParams struct {
	ThreadID string `json:"thread_id,omitempty"`
	Query    string `json:"query,omitempty"`
}

func (ThreadParams) Family() string { return "thread" }

type UnknownParams struct {
	Input string `json:"input"`
}

func (UnknownParams) Family() string { return "unknown" }

// MarshalJSON adds the params family so executors can decode the variant.
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	family := ""
	if r.Params != nil {
		family = r.Params.Family()
	}
	return json.Marshal(struct {
		plain
		ParamsFamily string `json:"params_family,omitempty"`
	}{plain: plain(r), ParamsFamily: family})
}

// DateString formats t as the YYYY-MM-DD form used in params
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
