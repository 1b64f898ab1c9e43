package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ai-scheduler-be/pkg/pending"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pending:"

// consumeScript deletes the record only when the stored token matches.
// Returns the record, or an error reply naming the failure.
var consumeScript = redis.NewScript(`
local raw = redis.call("GET", KEYS[1])
if not raw then
  return redis.error_reply("not_found")
end
local rec = cjson.decode(raw)
if rec["token"] == nil or rec["token"] ~= ARGV[1] then
  return redis.error_reply("token_mismatch")
end
redis.call("DEL", KEYS[1])
return raw
`)

// Store keeps pending records in redis so several API instances share them
type Store struct {
	rdb        *redis.Client
	defaultTTL time.Duration
}

var _ pending.Store = (*Store)(nil)

func New(rdb *redis.Client, defaultTTL time.Duration) *Store {
	return &Store{rdb: rdb, defaultTTL: defaultTTL}
}

func key(threadID string) string {
	return keyPrefix + threadID
}

func (s *Store) Get(ctx context.Context, threadID string) (*pending.State, bool, error) {
	raw, err := s.rdb.Get(ctx, key(threadID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get pending: %w", err)
	}
	var state pending.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, false, fmt.Errorf("decode pending: %w", err)
	}
	if state.Expired(time.Now()) {
		return nil, false, nil
	}
	return &state, true, nil
}

func (s *Store) Put(ctx context.Context, state *pending.State) error {
	if err := state.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode pending: %w", err)
	}
	ttl := s.defaultTTL
	if !state.ExpiresAt.IsZero() {
		ttl = time.Until(state.ExpiresAt)
		if ttl <= 0 {
			ttl = time.Millisecond
		}
	}
	// SET overwrites, which is what makes a new record supersede the old one
	if err := s.rdb.Set(ctx, key(state.ThreadID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set pending: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, threadID string) error {
	if err := s.rdb.Del(ctx, key(threadID)).Err(); err != nil {
		return fmt.Errorf("redis del pending: %w", err)
	}
	return nil
}

func (s *Store) Consume(ctx context.Context, threadID, token string) (*pending.State, error) {
	raw, err := consumeScript.Run(ctx, s.rdb, []string{key(threadID)}, token).Text()
	if err != nil {
		switch {
		case err.Error() == "not_found":
			return nil, pending.ErrNotFound
		case err.Error() == "token_mismatch":
			return nil, pending.ErrTokenMismatch
		}
		return nil, fmt.Errorf("redis consume pending: %w", err)
	}
	var state pending.State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, fmt.Errorf("decode pending: %w", err)
	}
	if state.Expired(time.Now()) {
		return nil, pending.ErrExpired
	}
	return &state, nil
}
