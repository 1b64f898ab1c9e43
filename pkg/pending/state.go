package pending

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Kind discriminates the pending payload variants
type Kind string

const (
	KindRemindConfirm          Kind = "remind_confirm"
	KindInviteConfirm          Kind = "invite_confirm"
	KindFinalizeConfirm        Kind = "finalize_confirm"
	KindRescheduleConfirm      Kind = "reschedule_confirm"
	KindPreferenceChange       Kind = "preference_change"
	KindPoolBookingConfirm     Kind = "pool_booking_confirm"
	KindRelationshipConfirm    Kind = "relationship_confirm"
	KindThreadCloseConfirm     Kind = "thread_close_confirm"
	KindContactImportPreview   Kind = "contact_import_preview"
	KindContactImportSelection Kind = "contact_import_selection"
	KindPersonSelection        Kind = "person_selection"
	KindEmailRequest           Kind = "email_request"
	KindSplitVoteProposal      Kind = "split_vote_proposal"
	KindConfirmedNotification  Kind = "confirmed_notification"
	KindReminderFollowup       Kind = "reminder_followup"
)

// IsConfirmation reports whether k gates all other input until decided
func (k Kind) IsConfirmation() bool {
	switch k {
	case KindRemindConfirm, KindInviteConfirm, KindFinalizeConfirm, KindRescheduleConfirm,
		KindPreferenceChange, KindPoolBookingConfirm, KindRelationshipConfirm, KindThreadCloseConfirm:
		return true
	}
	return false
}

var (
	ErrMissingThread = errors.New("pending: thread id is required")
	ErrMissingKind   = errors.New("pending: payload is required")
	ErrNotFound      = errors.New("pending: no active record")
	ErrTokenMismatch = errors.New("pending: token does not match the active record")
	ErrExpired       = errors.New("pending: record expired")
)

// Payload is implemented by every kind-specific record
type Payload interface {
	Kind() Kind
}

// State is the single outstanding decision of a thread
type State struct {
	ThreadID  string    `json:"thread_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"token,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Payload   Payload   `json:"-"`
}

// Kind returns the payload discriminant, or "" for an empty state
func (s *State) Kind() Kind {
	if s == nil || s.Payload == nil {
		return ""
	}
	return s.Payload.Kind()
}

// Expired reports whether s is no longer valid at now. A zero ExpiresAt never expires.
func (s *State) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Validate checks the structural invariants every stored record must satisfy
func (s *State) Validate() error {
	if s.ThreadID == "" {
		return ErrMissingThread
	}
	if s.Payload == nil {
		return ErrMissingKind
	}
	return nil
}

// GlobalThreadID is the key of the thread-independent slot for a user
func GlobalThreadID(userID string) string {
	return "global:" + userID
}

type envelope struct {
	Kind      Kind            `json:"kind"`
	ThreadID  string          `json:"thread_id"`
	CreatedAt time.Time       `json:"created_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Token     string          `json:"token,omitempty"`
	Summary   string          `json:"summary,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

func (s State) MarshalJSON() ([]byte, error) {
	var raw json.RawMessage = []byte("null")
	if s.Payload != nil {
		b, err := json.Marshal(s.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", s.Payload.Kind(), err)
		}
		raw = b
	}
	return json.Marshal(envelope{
		Kind:      s.Kind(),
		ThreadID:  s.ThreadID,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
		Token:     s.Token,
		Summary:   s.Summary,
		Payload:   raw,
	})
}

func (s *State) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	s.ThreadID = env.ThreadID
	s.CreatedAt = env.CreatedAt
	s.ExpiresAt = env.ExpiresAt
	s.Token = env.Token
	s.Summary = env.Summary
	s.Payload = nil
	if env.Kind == "" {
		return nil
	}
	payload, err := newPayload(env.Kind)
	if err != nil {
		return err
	}
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, payload); err != nil {
			return fmt.Errorf("unmarshal %s payload: %w", env.Kind, err)
		}
	}
	s.Payload = derefPayload(payload)
	return nil
}

// Clone returns a deep copy through the JSON envelope
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		c := *s
		return &c
	}
	var c State
	if err := json.Unmarshal(b, &c); err != nil {
		c = *s
	}
	return &c
}

// Effective merges the thread record with the global fallback slot.
// The thread record wins; the global one applies only when the thread has
// none; expired records count as absent.
func Effective(thread, global *State, now time.Time) *State {
	if thread != nil && thread.Payload != nil && !thread.Expired(now) {
		return thread
	}
	if global != nil && global.Payload != nil && !global.Expired(now) {
		return global
	}
	return nil
}
