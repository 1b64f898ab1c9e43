package mapper

import (
	"ai-scheduler-be/internal/dto"
	"ai-scheduler-be/internal/service"
	"ai-scheduler-be/pkg/intent"
	"ai-scheduler-be/pkg/intent/classifier"
	"ai-scheduler-be/pkg/pending"
)

type IntentMapper struct{}

func NewIntentMapper() *IntentMapper {
	return &IntentMapper{}
}

func (m *IntentMapper) ResolveRequestFromDTO(userId string, req *dto.ResolveIntentRequest) service.ResolveRequest {
	history := make([]classifier.Turn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, classifier.Turn{Role: t.Role, Content: t.Content})
	}
	return service.ResolveRequest{
		UserID:   userId,
		ThreadID: req.ThreadId,
		Text:     req.Text,
		History:  history,
	}
}

func (m *IntentMapper) ResolveResponseToDTO(resp *service.ResolveResponse) *dto.ResolveIntentResponse {
	if resp == nil {
		return nil
	}
	var result *intent.Result
	if resp.Result != nil {
		// the stamped record travels as Pending, without its token
		scrubbed := *resp.Result
		scrubbed.NextPending = nil
		scrubbed.ConsumeToken = ""
		result = &scrubbed
	}
	return &dto.ResolveIntentResponse{
		Turn:             resp.Turn,
		Result:           result,
		Pending:          m.PendingToDTO(resp.Pending),
		ImportedContacts: resp.ImportedContacts,
		Dispatched:       resp.Dispatched,
	}
}

func (m *IntentMapper) PendingToDTO(s *pending.State) *dto.PendingDTO {
	if s == nil || s.Payload == nil {
		return nil
	}
	return &dto.PendingDTO{
		Kind:      s.Kind(),
		ThreadId:  s.ThreadID,
		Summary:   s.Summary,
		CreatedAt: s.CreatedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
