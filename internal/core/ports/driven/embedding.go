package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// The dimensionality is fixed by the model for the lifetime of a store;
// the VectorStore rejects mixed dimensionalities.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI-compatible inference servers (text-embedding-3-small, etc.)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	// Transport and parsing failures wrap domain.ErrEmbeddingUnavailable.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	// Any single failure fails the whole batch: a partially embedded
	// document is worse than a clearly failed one.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the provider is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
