package memory

import (
	"context"
	"testing"

	"ai-scheduler-be/pkg/contactimport"
	"ai-scheduler-be/pkg/intent/extract"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRepository_ApplyBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewContactRepository()
	repo.Seed("u1", []extract.Contact{{ID: "c1", Name: "田中 太郎", Email: "old@example.com"}})

	require.NoError(t, repo.ApplyBatch(ctx, "u1", []contactimport.Write{
		{Action: contactimport.ActionUpdate, ContactID: "c1", Name: "田中 太郎", Email: "taro@example.com"},
		{Action: contactimport.ActionCreate, Name: "佐藤 一郎", Email: "sato@example.com"},
	}))

	got, err := repo.FindAllByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "taro@example.com", got[0].Email)
	assert.Equal(t, "佐藤 一郎", got[1].Name)
	assert.NotEmpty(t, got[1].ID)

	other, err := repo.FindAllByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestContactRepository_ApplyBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewContactRepository()
	repo.Seed("u1", []extract.Contact{{ID: "c1", Name: "A", Email: "a@example.com"}})

	err := repo.ApplyBatch(ctx, "u1", []contactimport.Write{
		{Action: contactimport.ActionCreate, Name: "B", Email: "b@example.com"},
		{Action: contactimport.ActionUpdate, ContactID: "missing", Name: "C", Email: "c@example.com"},
	})
	assert.ErrorIs(t, err, ErrContactNotFound)

	got, _ := repo.FindAllByUser(ctx, "u1")
	assert.Len(t, got, 1)
}
