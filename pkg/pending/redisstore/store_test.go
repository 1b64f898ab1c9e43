package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"ai-scheduler-be/pkg/pending"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set, skipping redis integration test")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	t.Cleanup(func() { rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	return New(rdb, time.Minute)
}

func TestRedisStore_ConsumeLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	thread := "test-" + uuid.NewString()

	require.NoError(t, s.Put(ctx, &pending.State{
		ThreadID: thread,
		Token:    "tok",
		Payload:  pending.InviteConfirm{Recipients: []string{"a@example.com"}},
	}))

	_, err := s.Consume(ctx, thread, "wrong")
	assert.ErrorIs(t, err, pending.ErrTokenMismatch)

	got, err := s.Consume(ctx, thread, "tok")
	require.NoError(t, err)
	assert.Equal(t, pending.KindInviteConfirm, got.Kind())

	_, err = s.Consume(ctx, thread, "tok")
	assert.ErrorIs(t, err, pending.ErrNotFound)
}

func TestRedisStore_PutSupersedes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	thread := "test-" + uuid.NewString()
	t.Cleanup(func() { s.Clear(ctx, thread) })

	require.NoError(t, s.Put(ctx, &pending.State{ThreadID: thread, Payload: pending.ReminderFollowup{Unanswered: 1}}))
	require.NoError(t, s.Put(ctx, &pending.State{ThreadID: thread, Payload: pending.SplitVoteProposal{Votes: 2}}))

	got, ok, err := s.Get(ctx, thread)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pending.KindSplitVoteProposal, got.Kind())
}
