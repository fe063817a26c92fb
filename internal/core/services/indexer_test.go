package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/core/ports/driving"
)

func TestIndex_HappyPath(t *testing.T) {
	store := memory.NewStore()
	embedder := &mockEmbedder{vector: []float32{1, 0}}
	svc := NewIndexerService(store, embedder, nil, textExtractor())

	doc, err := svc.Index(context.Background(), driving.IndexRequest{
		ScopeID: "c1",
		Name:    "notes.txt",
		Content: []byte("some content"),
	})
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "c1", doc.ScopeID)
	assert.Equal(t, domain.DocumentTypeTXT, doc.Type)
	assert.Equal(t, int64(len("some content")), doc.ByteSize)
	assert.Equal(t, 1, doc.ChunkCount)

	chunks, err := store.Chunks(context.Background(), driven.ChunkFilter{ScopeID: "c1"})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, doc.ID, chunks[0].DocumentID)
	assert.Equal(t, []float32{1, 0}, chunks[0].Embedding)
}

func TestIndex_RequiresName(t *testing.T) {
	svc := NewIndexerService(memory.NewStore(), &mockEmbedder{vector: []float32{1}}, nil, textExtractor())

	_, err := svc.Index(context.Background(), driving.IndexRequest{Content: []byte("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIndex_UnsupportedType(t *testing.T) {
	svc := NewIndexerService(memory.NewStore(), &mockEmbedder{vector: []float32{1}}, nil, textExtractor())

	_, err := svc.Index(context.Background(), driving.IndexRequest{
		Name:    "report.pdf",
		Content: []byte("%PDF"),
	})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestIndex_ExtractionFailureLeavesStoreEmpty(t *testing.T) {
	store := memory.NewStore()
	broken := &mockExtractor{
		types: []domain.DocumentType{domain.DocumentTypeTXT},
		err:   domain.ErrExtractionFailed,
	}
	svc := NewIndexerService(store, &mockEmbedder{vector: []float32{1}}, nil, broken)

	_, err := svc.Index(context.Background(), driving.IndexRequest{
		Name:    "notes.txt",
		Content: []byte("x"),
	})
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)

	docs, listErr := store.ListDocuments(context.Background(), "")
	require.NoError(t, listErr)
	assert.Empty(t, docs)
}

func TestIndex_EmbeddingFailureLeavesStoreEmpty(t *testing.T) {
	store := memory.NewStore()
	embedder := &mockEmbedder{err: domain.ErrEmbeddingUnavailable}
	svc := NewIndexerService(store, embedder, nil, textExtractor())

	_, err := svc.Index(context.Background(), driving.IndexRequest{
		Name:    "notes.txt",
		Content: []byte("some content"),
	})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	docs, listErr := store.ListDocuments(context.Background(), "")
	require.NoError(t, listErr)
	assert.Empty(t, docs)

	chunks, chunksErr := store.Chunks(context.Background(), driven.ChunkFilter{})
	require.NoError(t, chunksErr)
	assert.Empty(t, chunks)
}

func TestIndex_AppendFailureRollsBackDocument(t *testing.T) {
	store := &flakyStore{Store: memory.NewStore(), failAppend: true}
	svc := NewIndexerService(store, &mockEmbedder{vector: []float32{1, 0}}, nil, textExtractor())

	_, err := svc.Index(context.Background(), driving.IndexRequest{
		Name:    "notes.txt",
		Content: []byte("some content"),
	})
	require.ErrorIs(t, err, errAppendBoom)
	require.Len(t, store.deleted, 1)

	docs, listErr := store.ListDocuments(context.Background(), "")
	require.NoError(t, listErr)
	assert.Empty(t, docs)
}

func TestIndex_LargeFileProducesMultipleChunks(t *testing.T) {
	store := memory.NewStore()
	embedder := &mockEmbedder{vector: []float32{1, 0}}
	svc := NewIndexerService(store, embedder, nil, textExtractor())

	content := strings.Repeat("lorem ipsum dolor sit amet ", 200)
	doc, err := svc.Index(context.Background(), driving.IndexRequest{
		Name:    "big.txt",
		Content: []byte(content),
	})
	require.NoError(t, err)
	assert.Greater(t, doc.ChunkCount, 1)
	assert.Equal(t, doc.ChunkCount, embedder.embedded)
}
