package cli

import (
	"context"
	"testing"

	"github.com/quarrylabs/hearth/internal/adapters/driven/extraction/plaintext"
	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/core/services"
)

// fakeEmbedder returns a fixed vector for every text so retrieval
// ordering in tests is controlled by the stored chunk embeddings.
type fakeEmbedder struct {
	vector []float32
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vector, nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.vector) }

func (f *fakeEmbedder) ModelName() string { return "fake" }

func (f *fakeEmbedder) Ping(context.Context) error { return nil }

func (f *fakeEmbedder) Close() error { return nil }

// setupTestServices wires the commands against an in-memory store and
// returns the store plus a cleanup restoring the previous services.
func setupTestServices() (*memory.Store, func()) {
	prevIndexer := indexerService
	prevRetriever := retrieverService
	prevLibrary := libraryService

	store := memory.NewStore()
	embedder := &fakeEmbedder{vector: []float32{1, 0}}

	indexerService = services.NewIndexerService(store, embedder, nil, plaintext.New())
	retrieverService = services.NewRetrieverService(store, embedder)
	libraryService = services.NewLibraryService(store)

	return store, func() {
		indexerService = prevIndexer
		retrieverService = prevRetriever
		libraryService = prevLibrary
	}
}

// seedChunk stores one document with one embedded chunk.
func seedChunk(t *testing.T, store *memory.Store, docID, scope string, embedding []float32) {
	t.Helper()
	ctx := context.Background()
	if err := store.InsertDocument(ctx, domain.Document{
		ID:      docID,
		ScopeID: scope,
		Name:    docID + ".txt",
		Type:    domain.DocumentTypeTXT,
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendChunks(ctx, []domain.Chunk{{
		ID:          domain.ChunkID(docID, 0),
		DocumentID:  docID,
		ScopeID:     scope,
		Text:        "content of " + docID,
		Embedding:   embedding,
		HeadingPath: domain.RootHeadingPath,
		SectionType: domain.SectionTypeText,
	}}); err != nil {
		t.Fatal(err)
	}
}
