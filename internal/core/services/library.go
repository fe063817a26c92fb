package services

import (
	"context"
	"fmt"

	"github.com/quarrylabs/hearth/internal/core/domain"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/core/ports/driving"
	"github.com/quarrylabs/hearth/internal/logger"
)

// Ensure LibraryService implements the interface.
var _ driving.Library = (*LibraryService)(nil)

// LibraryService manages the lifecycle of indexed documents.
type LibraryService struct {
	store driven.VectorStore
}

// NewLibraryService creates a new library service.
func NewLibraryService(store driven.VectorStore) *LibraryService {
	return &LibraryService{store: store}
}

// List returns documents, filtered by scope when scopeID is non-empty.
func (s *LibraryService) List(ctx context.Context, scopeID string) ([]domain.Document, error) {
	return s.store.ListDocuments(ctx, scopeID)
}

// Delete removes a document and its chunks by ID.
func (s *LibraryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrInvalidInput)
	}
	if err := s.store.DeleteDocument(ctx, id); err != nil {
		return err
	}
	logger.Info("Deleted document %s", id)
	return nil
}

// ClearScope removes every document in the scope. No-op when empty.
func (s *LibraryService) ClearScope(ctx context.Context, scopeID string) error {
	if scopeID == "" {
		return fmt.Errorf("%w: scope id is required", domain.ErrInvalidInput)
	}
	if err := s.store.ClearScope(ctx, scopeID); err != nil {
		return err
	}
	logger.Info("Cleared scope %s", scopeID)
	return nil
}

// ClearAll empties the store.
func (s *LibraryService) ClearAll(ctx context.Context) error {
	if err := s.store.ClearAll(ctx); err != nil {
		return err
	}
	logger.Info("Cleared all documents")
	return nil
}
