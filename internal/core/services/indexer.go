package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quarrylabs/hearth/internal/chunker"
	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/core/ports/driving"
	"github.com/quarrylabs/hearth/internal/logger"
)

// Ensure IndexerService implements the interface.
var _ driving.Indexer = (*IndexerService)(nil)

// IndexerService ingests uploaded files: extract, chunk, embed, persist.
// Indexing is all-or-nothing per document; a failure part-way leaves the
// store untouched.
type IndexerService struct {
	store      driven.VectorStore
	embedder   driven.EmbeddingService
	chunker    *chunker.Chunker
	extractors []driven.Extractor
}

// NewIndexerService creates a new indexer. Extractors are consulted in
// order; the first one supporting the upload's document type wins.
func NewIndexerService(
	store driven.VectorStore,
	embedder driven.EmbeddingService,
	c *chunker.Chunker,
	extractors ...driven.Extractor,
) *IndexerService {
	if c == nil {
		c = chunker.New()
	}
	return &IndexerService{
		store:      store,
		embedder:   embedder,
		chunker:    c,
		extractors: extractors,
	}
}

// Index extracts, chunks, embeds and persists one file.
func (s *IndexerService) Index(ctx context.Context, req driving.IndexRequest) (*domain.Document, error) {
	logger.Section("Indexing")
	logger.Debug("File: %q (%d bytes, scope %q)", req.Name, len(req.Content), req.ScopeID)

	if req.Name == "" {
		return nil, fmt.Errorf("%w: file name is required", domain.ErrInvalidInput)
	}

	docType := domain.DocumentTypeFromName(req.Name)
	extractor := s.extractorFor(docType)
	if extractor == nil {
		return nil, fmt.Errorf("%w: no extractor for %q", domain.ErrUnsupportedType, docType)
	}

	extraction, err := extractor.Extract(ctx, req.Name, req.Content)
	if err != nil {
		logger.Warn("Extraction failed for %q: %v", req.Name, err)
		return nil, fmt.Errorf("extract %q: %w", req.Name, err)
	}

	doc := domain.Document{
		ID:         uuid.New().String(),
		ScopeID:    req.ScopeID,
		Name:       req.Name,
		Type:       docType,
		ByteSize:   int64(len(req.Content)),
		PageCount:  extraction.PageCount,
		Authors:    extraction.Authors,
		UploadedAt: time.Now().UTC(),
	}

	chunks := s.chunker.Chunk(doc, extraction)
	logger.Info("Chunked %q into %d chunks", req.Name, len(chunks))

	// Embed before touching the store: an embedding failure must leave
	// no trace of the document.
	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, err
	}
	doc.ChunkCount = len(chunks)

	if err := s.store.InsertDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	if err := s.store.AppendChunks(ctx, chunks); err != nil {
		// Roll back so the upload is not visible half-indexed.
		if delErr := s.store.DeleteDocument(ctx, doc.ID); delErr != nil {
			logger.Warn("Rollback of %q failed: %v", doc.ID, delErr)
		}
		return nil, fmt.Errorf("append chunks: %w", err)
	}

	logger.Info("Indexed %q as %s", req.Name, doc.ID)
	return &doc, nil
}

// embedChunks fills in embeddings for every chunk, batched.
func (s *IndexerService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(chunks))
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
	return nil
}

// extractorFor returns the first extractor supporting the type, or nil.
func (s *IndexerService) extractorFor(t domain.DocumentType) driven.Extractor {
	for _, ex := range s.extractors {
		for _, supported := range ex.SupportedTypes() {
			if supported == t {
				return ex
			}
		}
	}
	return nil
}
