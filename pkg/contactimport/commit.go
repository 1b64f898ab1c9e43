package contactimport

import (
	"context"
	"errors"
	"fmt"

	"ai-scheduler-be/internal/pkg/logger"
	"ai-scheduler-be/pkg/pending"
)

var (
	ErrUnresolved = errors.New("contactimport: ambiguous entries are unresolved")
	ErrNotImport  = errors.New("contactimport: pending record is not a contact import")
	ErrEmptyBatch = errors.New("contactimport: nothing to write")
	ErrNoWriter   = errors.New("contactimport: no writer configured")
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// Write is one row of the single batch handed to the Writer
type Write struct {
	Action    Action `json:"action"`
	ContactID string `json:"contact_id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// Writer persists a confirmed batch. It is called at most once per batch.
type Writer interface {
	WriteContacts(ctx context.Context, batch []Write) error
}

// plan maps entries to writes. Missing-email entries never produce a write.
// Unresolved ambiguous entries become creates only with skipAmbiguous.
func plan(entries []pending.ImportEntry, skipAmbiguous bool) []Write {
	var out []Write
	for _, e := range entries {
		switch e.Bucket {
		case pending.BucketClean:
			out = append(out, Write{Action: ActionCreate, Name: e.Name, Email: e.Email})
		case pending.BucketAmbiguous:
			switch e.Resolution {
			case pending.ResolutionUpdate:
				out = append(out, Write{Action: ActionUpdate, ContactID: e.ResolvedID, Name: e.Name, Email: e.Email})
			case pending.ResolutionCreate:
				out = append(out, Write{Action: ActionCreate, Name: e.Name, Email: e.Email})
			case pending.ResolutionUnresolved:
				if skipAmbiguous {
					out = append(out, Write{Action: ActionCreate, Name: e.Name, Email: e.Email})
				}
			}
		}
	}
	return out
}

// Plan returns the batch a confirm would write
func Plan(entries []pending.ImportEntry, skipAmbiguous bool) ([]Write, error) {
	if !skipAmbiguous && len(pending.ContactImportPreview{Entries: entries}.Unresolved()) > 0 {
		return nil, ErrUnresolved
	}
	batch := plan(entries, skipAmbiguous)
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}
	return batch, nil
}

func entriesOf(state *pending.State) ([]pending.ImportEntry, error) {
	switch p := state.Payload.(type) {
	case pending.ContactImportPreview:
		return p.Entries, nil
	case pending.ContactImportSelection:
		return p.Entries, nil
	}
	return nil, ErrNotImport
}

// Committer turns a consumed import record into exactly one Writer call
type Committer struct {
	writer Writer
	log    logger.ILogger
}

func NewCommitter(writer Writer, log logger.ILogger) *Committer {
	return &Committer{writer: writer, log: log}
}

// Commit writes the batch held by state, which the caller has already
// consumed from the pending store.
func (c *Committer) Commit(ctx context.Context, state *pending.State, skipAmbiguous bool) ([]Write, error) {
	if c.writer == nil {
		return nil, ErrNoWriter
	}
	entries, err := entriesOf(state)
	if err != nil {
		return nil, err
	}
	batch, err := Plan(entries, skipAmbiguous)
	if err != nil {
		return nil, err
	}
	if err := c.writer.WriteContacts(ctx, batch); err != nil {
		c.log.Error("CONTACT_IMPORT", "Batch write failed", map[string]interface{}{
			"thread_id": state.ThreadID,
			"size":      len(batch),
			"error":     err.Error(),
		})
		return nil, fmt.Errorf("write contacts: %w", err)
	}
	c.log.Info("CONTACT_IMPORT", "Batch written", map[string]interface{}{
		"thread_id": state.ThreadID,
		"size":      len(batch),
	})
	return batch, nil
}
