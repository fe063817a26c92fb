package services

import (
	"context"
	"errors"

	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
)

// mockEmbedder returns canned vectors, or fails on demand.
type mockEmbedder struct {
	vector   []float32
	queryVec []float32
	err      error
	embedded int
}

var _ driven.EmbeddingService = (*mockEmbedder)(nil)

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.queryVec != nil {
		return m.queryVec, nil
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.embedded += len(texts)
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int { return len(m.vector) }

func (m *mockEmbedder) ModelName() string { return "mock" }

func (m *mockEmbedder) Ping(context.Context) error { return nil }

func (m *mockEmbedder) Close() error { return nil }

// mockExtractor returns a fixed extraction for a set of types.
type mockExtractor struct {
	types      []domain.DocumentType
	extraction *domain.Extraction
	err        error
}

var _ driven.Extractor = (*mockExtractor)(nil)

func (m *mockExtractor) SupportedTypes() []domain.DocumentType { return m.types }

func (m *mockExtractor) Extract(_ context.Context, _ string, content []byte) (*domain.Extraction, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.extraction != nil {
		return m.extraction, nil
	}
	return &domain.Extraction{Text: string(content)}, nil
}

func textExtractor() *mockExtractor {
	return &mockExtractor{types: []domain.DocumentType{domain.DocumentTypeTXT, domain.DocumentTypeMD}}
}

// flakyStore wraps the memory store and fails AppendChunks on demand,
// recording rollback deletes.
type flakyStore struct {
	*memory.Store
	failAppend bool
	deleted    []string
}

var _ driven.VectorStore = (*flakyStore)(nil)

var errAppendBoom = errors.New("append blew up")

func (f *flakyStore) AppendChunks(ctx context.Context, chunks []domain.Chunk) error {
	if f.failAppend {
		return errAppendBoom
	}
	return f.Store.AppendChunks(ctx, chunks)
}

func (f *flakyStore) DeleteDocument(ctx context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	return f.Store.DeleteDocument(ctx, id)
}
