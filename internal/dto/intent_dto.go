package dto

import (
	"time"

	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/pending"
)

type ResolveIntentRequest struct {
	ThreadId string        `json:"thread_id" validate:"omitempty,max=128"`
	Text     string        `json:"text" validate:"required,max=4000"`
	History  []ChatTurnDTO `json:"history,omitempty" validate:"max=20,dive"`
}

type ChatTurnDTO struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required,max=4000"`
}

type ResolveIntentResponse struct {
	Turn             uint64         `json:"turn"`
	Result           *intent.Result `json:"result"`
	Pending          *PendingDTO    `json:"pending,omitempty"`
	ImportedContacts int            `json:"imported_contacts,omitempty"`
	Dispatched       bool           `json:"dispatched"`
}

// PendingDTO is the client view of a pending record. The token is left out:
// only the server compares it.
type PendingDTO struct {
	Kind      pending.Kind `json:"kind"`
	ThreadId  string       `json:"thread_id"`
	Summary   string       `json:"summary,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type VocabularyResponse struct {
	Version string         `json:"version"`
	Intents []intent.Entry `json:"intents"`
}
