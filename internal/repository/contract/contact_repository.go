package contract

import (
	"context"

	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/intent/extract"
)

// ContactRepository is the user's contact directory. ApplyBatch writes one
// confirmed import batch atomically.
type ContactRepository interface {
	FindAllByUser(ctx context.Context, userId string) ([]extract.Contact, error)
	ApplyBatch(ctx context.Context, userId string, batch []contactimport.Write) error
}
