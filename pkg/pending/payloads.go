package pending

import "fmt"

// Slot is a date/start pair carried inside pending records
type Slot struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end,omitempty"`
}

// ContactRef points at an existing directory entry
type ContactRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type RemindConfirm struct {
	TargetThreadID string   `json:"target_thread_id"`
	Recipients     []string `json:"recipients,omitempty"`
	Message        string   `json:"message,omitempty"`
}

func (RemindConfirm) Kind() Kind { return KindRemindConfirm }

type InviteConfirm struct {
	Recipients []string `json:"recipients"`
	Slots      []Slot   `json:"slots,omitempty"`
}

func (InviteConfirm) Kind() Kind { return KindInviteConfirm }

type FinalizeConfirm struct {
	SlotIndex int  `json:"slot_index"`
	Slot      Slot `json:"slot"`
}

func (FinalizeConfirm) Kind() Kind { return KindFinalizeConfirm }

type RescheduleConfirm struct {
	Slots []Slot `json:"slots"`
}

func (RescheduleConfirm) Kind() Kind { return KindRescheduleConfirm }

type PreferenceChange struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Previous string `json:"previous,omitempty"`
}

func (PreferenceChange) Kind() Kind { return KindPreferenceChange }

type PoolBookingConfirm struct {
	PoolName string `json:"pool_name"`
	Slot     Slot   `json:"slot"`
}

func (PoolBookingConfirm) Kind() Kind { return KindPoolBookingConfirm }

type RelationshipConfirm struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Relation string `json:"relation"`
}

func (RelationshipConfirm) Kind() Kind { return KindRelationshipConfirm }

type ThreadCloseConfirm struct {
	TargetThreadID string `json:"target_thread_id"`
}

func (ThreadCloseConfirm) Kind() Kind { return KindThreadCloseConfirm }

// Import buckets
const (
	BucketClean        = "clean"
	BucketMissingEmail = "missing_email"
	BucketAmbiguous    = "ambiguous"
)

// Import resolutions for ambiguous entries
const (
	ResolutionUnresolved = ""
	ResolutionUpdate     = "update"
	ResolutionCreate     = "create"
	ResolutionSkip       = "skip"
)

// ImportEntry is one candidate contact of an import batch
type ImportEntry struct {
	Name       string       `json:"name"`
	Email      string       `json:"email,omitempty"`
	Bucket     string       `json:"bucket"`
	Candidates []ContactRef `json:"candidates,omitempty"`
	Resolution string       `json:"resolution,omitempty"`
	ResolvedID string       `json:"resolved_id,omitempty"`
}

type ContactImportPreview struct {
	Entries []ImportEntry `json:"entries"`
}

func (ContactImportPreview) Kind() Kind { return KindContactImportPreview }

// Unresolved returns the indexes of ambiguous entries without a resolution
func (p ContactImportPreview) Unresolved() []int {
	var idx []int
	for i, e := range p.Entries {
		if e.Bucket == BucketAmbiguous && e.Resolution == ResolutionUnresolved {
			idx = append(idx, i)
		}
	}
	return idx
}

// ContactImportSelection pauses the batch on one ambiguous entry
type ContactImportSelection struct {
	Entries    []ImportEntry `json:"entries"`
	EntryIndex int           `json:"entry_index"`
}

func (ContactImportSelection) Kind() Kind { return KindContactImportSelection }

// PersonSelection asks the user to pick among several directory matches.
// Queries holds every name still to resolve; Index is the one being asked.
type PersonSelection struct {
	Queries         []string     `json:"queries"`
	Index           int          `json:"index"`
	Candidates      []ContactRef `json:"candidates"`
	Resolved        []ContactRef `json:"resolved,omitempty"`
	ResumeIntent    string       `json:"resume_intent"`
	Slots           []Slot       `json:"slots,omitempty"`
	DurationMinutes int          `json:"duration_minutes,omitempty"`
}

func (PersonSelection) Kind() Kind { return KindPersonSelection }

// EmailRequest waits for an address for a person missing from the directory
type EmailRequest struct {
	Name            string `json:"name"`
	ResumeIntent    string `json:"resume_intent"`
	Slots           []Slot `json:"slots,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

func (EmailRequest) Kind() Kind { return KindEmailRequest }

type SplitVoteProposal struct {
	Slot  Slot `json:"slot"`
	Votes int  `json:"votes"`
}

func (SplitVoteProposal) Kind() Kind { return KindSplitVoteProposal }

type ConfirmedNotification struct {
	Slot       Slot     `json:"slot"`
	Recipients []string `json:"recipients,omitempty"`
}

func (ConfirmedNotification) Kind() Kind { return KindConfirmedNotification }

type ReminderFollowup struct {
	Unanswered int `json:"unanswered"`
}

func (ReminderFollowup) Kind() Kind { return KindReminderFollowup }

func newPayload(k Kind) (Payload, error) {
	switch k {
	case KindRemindConfirm:
		return &RemindConfirm{}, nil
	case KindInviteConfirm:
		return &InviteConfirm{}, nil
	case KindFinalizeConfirm:
		return &FinalizeConfirm{}, nil
	case KindRescheduleConfirm:
		return &RescheduleConfirm{}, nil
	case KindPreferenceChange:
		return &PreferenceChange{}, nil
	case KindPoolBookingConfirm:
		return &PoolBookingConfirm{}, nil
	case KindRelationshipConfirm:
		return &RelationshipConfirm{}, nil
	case KindThreadCloseConfirm:
		return &ThreadCloseConfirm{}, nil
	case KindContactImportPreview:
		return &ContactImportPreview{}, nil
	case KindContactImportSelection:
		return &ContactImportSelection{}, nil
	case KindPersonSelection:
		return &PersonSelection{}, nil
	case KindEmailRequest:
		return &EmailRequest{}, nil
	case KindSplitVoteProposal:
		return &SplitVoteProposal{}, nil
	case KindConfirmedNotification:
		return &ConfirmedNotification{}, nil
	case KindReminderFollowup:
		return &ReminderFollowup{}, nil
	}
	return nil, fmt.Errorf("pending: unknown kind %q", k)
}

// derefPayload stores payloads by value so type switches see a single form
func derefPayload(p Payload) Payload {
	switch v := p.(type) {
	case *RemindConfirm:
		return *v
	case *InviteConfirm:
		return *v
	case *FinalizeConfirm:
		return *v
	case *RescheduleConfirm:
		return *v
	case *PreferenceChange:
		return *v
	case *PoolBookingConfirm:
		return *v
	case *RelationshipConfirm:
		return *v
	case *ThreadCloseConfirm:
		return *v
	case *ContactImportPreview:
		return *v
	case *ContactImportSelection:
		return *v
	case *PersonSelection:
		return *v
	case *EmailRequest:
		return *v
	case *SplitVoteProposal:
		return *v
	case *ConfirmedNotification:
		return *v
	case *ReminderFollowup:
		return *v
	}
	return p
}
