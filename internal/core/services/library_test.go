package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
)

func TestLibrary_ListAndDelete(t *testing.T) {
	store := memory.NewStore()
	seedChunk(t, store, "d1", "c1", "one", []float32{1, 0})
	seedChunk(t, store, "d2", "c2", "two", []float32{0, 1})

	svc := NewLibraryService(store)
	ctx := context.Background()

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := svc.List(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "d1", scoped[0].ID)

	require.NoError(t, svc.Delete(ctx, "d1"))
	assert.ErrorIs(t, svc.Delete(ctx, "d1"), domain.ErrNotFound)

	chunks, err := store.Chunks(ctx, driven.ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "d2", chunks[0].DocumentID)
}

func TestLibrary_DeleteRequiresID(t *testing.T) {
	svc := NewLibraryService(memory.NewStore())
	assert.ErrorIs(t, svc.Delete(context.Background(), ""), domain.ErrInvalidInput)
}

func TestLibrary_ClearScope(t *testing.T) {
	store := memory.NewStore()
	seedChunk(t, store, "d1", "c1", "one", []float32{1, 0})
	seedChunk(t, store, "d2", "c2", "two", []float32{0, 1})

	svc := NewLibraryService(store)
	ctx := context.Background()

	require.NoError(t, svc.ClearScope(ctx, "c1"))
	assert.ErrorIs(t, svc.ClearScope(ctx, ""), domain.ErrInvalidInput)

	remaining, err := svc.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "d2", remaining[0].ID)

	// Clearing an already-empty scope succeeds.
	assert.NoError(t, svc.ClearScope(ctx, "c1"))
}

func TestLibrary_ClearAll(t *testing.T) {
	store := memory.NewStore()
	seedChunk(t, store, "d1", "c1", "one", []float32{1, 0})

	svc := NewLibraryService(store)
	require.NoError(t, svc.ClearAll(context.Background()))

	remaining, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
