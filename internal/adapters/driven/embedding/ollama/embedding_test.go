package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/hearth/internal/core/domain"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *EmbeddingService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewEmbeddingService(Config{
		BaseURL:           server.URL,
		Model:             "test-model",
		RequestsPerSecond: -1,
	})
}

func TestEmbed(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, "hello", req.Prompt)

		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{0.1, 0.2, 0.3}})
	})

	vec, err := s.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestEmbed_ServerErrorIsUnavailable(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	})

	_, err := s.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_UnreachableIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	s := NewEmbeddingService(Config{BaseURL: url, RequestsPerSecond: -1})
	_, err := s.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbed_EmptyEmbeddingIsUnavailable(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embedResponse{})
	})

	_, err := s.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestEmbedBatch_StopsOnFirstFailure(t *testing.T) {
	calls := 0
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 2 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{1}})
	})

	_, err := s.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Equal(t, 2, calls)
}

func TestEmbedBatch_PreservesOrder(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// Distinguishable embedding per prompt.
		val := float64(len(req.Prompt))
		json.NewEncoder(w).Encode(embedResponse{Embedding: []float64{val}})
	})

	vecs, err := s.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, []float32{1}, vecs[0])
	assert.Equal(t, []float32{2}, vecs[1])
	assert.Equal(t, []float32{3}, vecs[2])
}

func TestPing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	assert.NoError(t, s.Ping(context.Background()))
}

func TestDefaults(t *testing.T) {
	s := NewEmbeddingService(Config{})
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultDimensions, s.Dimensions())
}
