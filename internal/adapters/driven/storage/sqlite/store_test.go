package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, dir
}

func doc(id, scope string) domain.Document {
	return domain.Document{
		ID:         id,
		ScopeID:    scope,
		Name:       id + ".pdf",
		Type:       domain.DocumentTypePDF,
		ByteSize:   1024,
		PageCount:  2,
		ChunkCount: 1,
		UploadedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func chunk(docID, scope string, seq int, emb []float32) domain.Chunk {
	return domain.Chunk{
		ID:          domain.ChunkID(docID, seq),
		DocumentID:  docID,
		ScopeID:     scope,
		Text:        "chunk text",
		Embedding:   emb,
		HeadingPath: domain.RootHeadingPath,
		SectionType: domain.SectionTypeText,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	page := 2
	rich := chunk("d1", "c1", 0, []float32{0.5, -0.25, 1})
	rich.HeadingPath = []string{"Intro", "Background"}
	rich.SectionType = domain.SectionTypeSubheading
	rich.PageNumber = &page
	rich.Authors = []string{"Ada Lovelace"}

	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.AppendChunks(ctx, []domain.Chunk{rich}))

	docs, err := s.ListDocuments(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d1", docs[0].ID)
	assert.Equal(t, domain.DocumentTypePDF, docs[0].Type)
	assert.True(t, docs[0].UploadedAt.Equal(doc("d1", "c1").UploadedAt))

	chunks, err := s.Chunks(ctx, driven.ChunkFilter{ScopeID: "c1"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, rich.Embedding, chunks[0].Embedding)
	assert.Equal(t, rich.HeadingPath, chunks[0].HeadingPath)
	assert.Equal(t, domain.SectionTypeSubheading, chunks[0].SectionType)
	require.NotNil(t, chunks[0].PageNumber)
	assert.Equal(t, 2, *chunks[0].PageNumber)
	assert.Equal(t, []string{"Ada Lovelace"}, chunks[0].Authors)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.AppendChunks(ctx, []domain.Chunk{chunk("d1", "c1", 0, []float32{1, 0})}))
	require.NoError(t, s.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	docs, err := reopened.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	chunks, err := reopened.Chunks(ctx, driven.ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, []float32{1, 0}, chunks[0].Embedding)
}

func TestInsertDocument_IdempotentByID(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))

	docs, err := s.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestAppendChunks_DimensionMismatch(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.AppendChunks(ctx, []domain.Chunk{chunk("d1", "c1", 0, []float32{1, 0})}))

	require.NoError(t, s.InsertDocument(ctx, doc("d2", "c1")))
	err := s.AppendChunks(ctx, []domain.Chunk{chunk("d2", "c1", 0, []float32{1, 0, 0})})
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

	// Nothing from the rejected batch landed.
	chunks, err := s.Chunks(ctx, driven.ChunkFilter{})
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
}

func TestChunks_Filters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.InsertDocument(ctx, doc("d2", "c2")))

	table := chunk("d1", "c1", 1, []float32{1, 1})
	table.SectionType = domain.SectionTypeTable
	require.NoError(t, s.AppendChunks(ctx, []domain.Chunk{
		chunk("d1", "c1", 0, []float32{1, 0}),
		table,
		chunk("d2", "c2", 0, []float32{0, 1}),
	}))

	scoped, err := s.Chunks(ctx, driven.ChunkFilter{ScopeID: "c1"})
	require.NoError(t, err)
	assert.Len(t, scoped, 2)

	// Unknown scope: empty result, not an error.
	none, err := s.Chunks(ctx, driven.ChunkFilter{ScopeID: "nonexistent"})
	require.NoError(t, err)
	assert.Empty(t, none)

	byFile, err := s.Chunks(ctx, driven.ChunkFilter{FileIDs: []string{"d2"}})
	require.NoError(t, err)
	require.Len(t, byFile, 1)
	assert.Equal(t, "d2", byFile[0].DocumentID)

	byType, err := s.Chunks(ctx, driven.ChunkFilter{
		ScopeID:      "c1",
		SectionTypes: []domain.SectionType{domain.SectionTypeTable},
	})
	require.NoError(t, err)
	require.Len(t, byType, 1)
	assert.Equal(t, domain.SectionTypeTable, byType[0].SectionType)
}

func TestDeleteDocument_CascadesToChunks(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.AppendChunks(ctx, []domain.Chunk{
		chunk("d1", "c1", 0, []float32{1, 0}),
		chunk("d1", "c1", 1, []float32{0, 1}),
	}))

	require.NoError(t, s.DeleteDocument(ctx, "d1"))

	chunks, err := s.Chunks(ctx, driven.ChunkFilter{})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	assert.ErrorIs(t, s.DeleteDocument(ctx, "d1"), domain.ErrNotFound)
}

func TestClearScope(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.InsertDocument(ctx, doc("d2", "c2")))
	require.NoError(t, s.AppendChunks(ctx, []domain.Chunk{
		chunk("d1", "c1", 0, []float32{1, 0}),
		chunk("d2", "c2", 0, []float32{0, 1}),
	}))

	require.NoError(t, s.ClearScope(ctx, "c1"))

	docs, err := s.ListDocuments(ctx, "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d2", docs[0].ID)

	remaining, err := s.Chunks(ctx, driven.ChunkFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "c2", remaining[0].ScopeID)

	// Clearing an absent scope is a no-op.
	assert.NoError(t, s.ClearScope(ctx, "ghost"))
}

func TestClearAll(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertDocument(ctx, doc("d1", "c1")))
	require.NoError(t, s.AppendChunks(ctx, []domain.Chunk{chunk("d1", "c1", 0, []float32{1, 0})}))
	require.NoError(t, s.ClearAll(ctx))

	docs, err := s.ListDocuments(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, docs)

	// A new dimensionality is acceptable after a full reset.
	require.NoError(t, s.InsertDocument(ctx, doc("d2", "c1")))
	assert.NoError(t, s.AppendChunks(ctx, []domain.Chunk{chunk("d2", "c1", 0, []float32{1, 0, 0})}))
}

func TestFloat32BlobCodec(t *testing.T) {
	in := []float32{0, 1, -1, 0.5, 3.1415927}
	out := bytesToFloat32Slice(float32SliceToBytes(in))
	assert.Equal(t, in, out)

	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
