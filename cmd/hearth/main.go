// Command hearth is a local document retrieval CLI: it indexes files
// into an embedded vector store and answers queries with relevant,
// diverse excerpts.
package main

import (
	"context"
	"fmt"
	"os"

	configfile "github.com/quarrylabs/hearth/internal/adapters/driven/config/file"
	"github.com/quarrylabs/hearth/internal/adapters/driven/embedding/ollama"
	"github.com/quarrylabs/hearth/internal/adapters/driven/embedding/openai"
	"github.com/quarrylabs/hearth/internal/adapters/driven/extraction/execextract"
	"github.com/quarrylabs/hearth/internal/adapters/driven/extraction/plaintext"
	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/jsonfile"
	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/memory"
	"github.com/quarrylabs/hearth/internal/adapters/driven/storage/sqlite"
	"github.com/quarrylabs/hearth/internal/adapters/driving/cli"
	"github.com/quarrylabs/hearth/internal/core/ports/driven"
	"github.com/quarrylabs/hearth/internal/core/services"
	"github.com/quarrylabs/hearth/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, cfgPath, err := configfile.Load(os.Getenv("HEARTH_CONFIG_DIR"))
	if err != nil {
		return err
	}
	logger.SetVerbose(cfg.Verbose)

	store, err := newStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return err
	}
	defer embedder.Close()

	if err := embedder.Ping(context.Background()); err != nil {
		logger.Warn("Embedding provider unreachable, indexing and querying will fail: %v", err)
	}

	extractors, err := newExtractors(cfg.Extractor)
	if err != nil {
		return err
	}

	indexer := services.NewIndexerService(store, embedder, nil, extractors...)
	retriever := services.NewRetrieverService(store, embedder)
	library := services.NewLibraryService(store)

	retriever.SetTunables(tunables(cfg.Retrieval))

	// Reapply retrieval tunables whenever the config file changes.
	watcher, err := configfile.Watch(cfgPath, func(updated configfile.Config) {
		retriever.SetTunables(tunables(updated.Retrieval))
	})
	if err != nil {
		logger.Warn("Config watching disabled: %v", err)
	} else {
		defer watcher.Close()
	}

	cli.Configure(indexer, retriever, library)
	return cli.Execute()
}

func newStore(cfg configfile.StoreConfig) (driven.VectorStore, error) {
	switch cfg.Backend {
	case configfile.BackendJSON, "":
		return jsonfile.NewStore(cfg.DataDir)
	case configfile.BackendSQLite:
		return sqlite.NewStore(cfg.DataDir)
	case configfile.BackendMemory:
		return memory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func newEmbedder(cfg configfile.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case configfile.ProviderOllama, "":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
		}), nil
	case configfile.ProviderOpenAI:
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

func newExtractors(cfg configfile.ExtractorConfig) ([]driven.Extractor, error) {
	extractors := []driven.Extractor{plaintext.New()}
	if cfg.Command != "" {
		binary, err := execextract.New(execextract.Config{
			Command: cfg.Command,
			Args:    cfg.Args,
		})
		if err != nil {
			return nil, err
		}
		extractors = append(extractors, binary)
	}
	return extractors, nil
}

func tunables(cfg configfile.RetrievalConfig) services.Tunables {
	t := services.DefaultTunables()
	if cfg.Lambda > 0 && cfg.Lambda <= 1 {
		t.Lambda = cfg.Lambda
	}
	if cfg.CandidatePool > 0 {
		t.CandidatePool = cfg.CandidatePool
	}
	if weights := cfg.SectionWeights(); weights != nil {
		t.Weights = weights
	}
	return t
}
