package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/intent/extract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var ErrContactNotFound = errors.New("contact not found")

// ContactRepository keeps each user's directory in process memory
type ContactRepository struct {
	cache *cache.Cache
	mu    sync.Mutex
}

func NewContactRepository() *ContactRepository {
	return &ContactRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *ContactRepository) list(userId string) []extract.Contact {
	if x, found := r.cache.Get(userId); found {
		return x.([]extract.Contact)
	}
	return nil
}

// Seed replaces the user's directory
func (r *ContactRepository) Seed(userId string, contacts []extract.Contact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Set(userId, append([]extract.Contact(nil), contacts...), cache.NoExpiration)
}

func (r *ContactRepository) FindAllByUser(_ context.Context, userId string) ([]extract.Contact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]extract.Contact(nil), r.list(userId)...), nil
}

// ApplyBatch applies every write or none
func (r *ContactRepository) ApplyBatch(_ context.Context, userId string, batch []contactimport.Write) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := append([]extract.Contact(nil), r.list(userId)...)
	for _, w := range batch {
		switch w.Action {
		case contactimport.ActionCreate:
			next = append(next, extract.Contact{ID: uuid.NewString(), Name: w.Name, Email: w.Email})
		case contactimport.ActionUpdate:
			found := false
			for i := range next {
				if next[i].ID == w.ContactID {
					next[i].Name, next[i].Email = w.Name, w.Email
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("%w: %s", ErrContactNotFound, w.ContactID)
			}
		}
	}
	r.cache.Set(userId, next, cache.NoExpiration)
	return nil
}
