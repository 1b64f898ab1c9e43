package pending

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store persists at most one record per thread.
// Put supersedes any existing record; Consume verifies the token and clears
// the record in one step so a flow can be resolved exactly once.
type Store interface {
	Get(ctx context.Context, threadID string) (*State, bool, error)
	Put(ctx context.Context, state *State) error
	Clear(ctx context.Context, threadID string) error
	Consume(ctx context.Context, threadID, token string) (*State, error)
}

// MemoryStore keeps records in process memory with per-record expiry
type MemoryStore struct {
	cache *cache.Cache
	mu    sync.Mutex
	now   func() time.Time
}

// NewMemoryStore creates a store whose records default to ttl and are
// purged every cleanup interval
func NewMemoryStore(ttl, cleanup time.Duration) *MemoryStore {
	return &MemoryStore{
		cache: cache.New(ttl, cleanup),
		now:   time.Now,
	}
}

// WithClock sets the time source used for expiry checks
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Get(_ context.Context, threadID string) (*State, bool, error) {
	x, found := m.cache.Get(threadID)
	if !found {
		return nil, false, nil
	}
	state := x.(*State)
	if state.Expired(m.now()) {
		// the cache entry shares the record's deadline and is purged with it
		return nil, false, nil
	}
	return state.Clone(), true, nil
}

func (m *MemoryStore) Put(_ context.Context, state *State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Set(state.ThreadID, state.Clone(), m.ttlFor(state))
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, threadID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Delete(threadID)
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, threadID, token string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, found := m.cache.Get(threadID)
	if !found {
		return nil, ErrNotFound
	}
	state := x.(*State)
	if state.Expired(m.now()) {
		m.cache.Delete(threadID)
		return nil, ErrExpired
	}
	if state.Token == "" || state.Token != token {
		return nil, ErrTokenMismatch
	}
	m.cache.Delete(threadID)
	return state.Clone(), nil
}

// Len reports how many records are held, expired ones included until purge
func (m *MemoryStore) Len() int {
	return m.cache.ItemCount()
}

func (m *MemoryStore) ttlFor(state *State) time.Duration {
	if state.ExpiresAt.IsZero() {
		return cache.DefaultExpiration
	}
	ttl := state.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		// already expired: keep it just long enough to be read as absent
		return time.Millisecond
	}
	return ttl
}
