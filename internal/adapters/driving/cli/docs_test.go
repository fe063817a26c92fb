package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetDocsFlags() {
	docsScope = ""
	docsClearAll = false
}

func TestDocsCmd_HasSubcommands(t *testing.T) {
	commands := docsCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "list")
	assert.Contains(t, names, "delete")
	assert.Contains(t, names, "clear")
}

func TestDocsListCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer resetDocsFlags()

	out, err := execute(t, "docs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed.")
}

func TestDocsListCmd_ScopeFilter(t *testing.T) {
	store, cleanup := setupTestServices()
	defer cleanup()
	defer resetDocsFlags()

	seedChunk(t, store, "d1", "c1", []float32{1, 0})
	seedChunk(t, store, "d2", "c2", []float32{0, 1})

	out, err := execute(t, "docs", "list", "--scope", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "d1")
	assert.NotContains(t, out, "d2")
	assert.Contains(t, out, "Total: 1 documents")
}

func TestDocsDeleteCmd(t *testing.T) {
	store, cleanup := setupTestServices()
	defer cleanup()
	defer resetDocsFlags()

	seedChunk(t, store, "d1", "c1", []float32{1, 0})

	out, err := execute(t, "docs", "delete", "d1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	docs, err := store.ListDocuments(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, docs)

	_, err = execute(t, "docs", "delete", "d1")
	require.Error(t, err)
}

func TestDocsClearCmd_RequiresScopeOrAll(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer resetDocsFlags()

	_, err := execute(t, "docs", "clear")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either --scope or --all is required")
}

func TestDocsClearCmd_Scope(t *testing.T) {
	store, cleanup := setupTestServices()
	defer cleanup()
	defer resetDocsFlags()

	seedChunk(t, store, "d1", "c1", []float32{1, 0})
	seedChunk(t, store, "d2", "c2", []float32{0, 1})

	_, err := execute(t, "docs", "clear", "--scope", "c1")
	require.NoError(t, err)

	docs, err := store.ListDocuments(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "d2", docs[0].ID)
}

func TestDocsClearCmd_All(t *testing.T) {
	store, cleanup := setupTestServices()
	defer cleanup()
	defer resetDocsFlags()

	seedChunk(t, store, "d1", "c1", []float32{1, 0})

	out, err := execute(t, "docs", "clear", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "cleared all documents")

	docs, err := store.ListDocuments(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "hearth version")
}
